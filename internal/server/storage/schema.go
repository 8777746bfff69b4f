package storage

import "time"

// UserRecord represents a user account in the database
type UserRecord struct {
	UserID       string     `db:"user_id"`
	Username     string     `db:"username"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
}

// SessionRecord represents the single active login of a user
type SessionRecord struct {
	SessionID string    `db:"session_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID       string    `db:"game_id"`
	UserID       string    `db:"user_id"` // Empty for anonymous players
	HumanColor   string    `db:"human_color"`
	InitialFEN   string    `db:"initial_fen"`
	ThinkTime    int       `db:"think_time"`
	StartTimeUTC time.Time `db:"start_time_utc"`
}

// ResultRecord is the outcome of one round of a game. A round ends at
// checkmate or stalemate; rounds abandoned by a reset are not recorded.
type ResultRecord struct {
	GameID     string    `db:"game_id"`
	Round      int       `db:"round"`
	Result     string    `db:"result"`
	FinalFEN   string    `db:"final_fen"`
	EndTimeUTC time.Time `db:"end_time_utc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id TEXT PRIMARY KEY,
	username TEXT UNIQUE NOT NULL COLLATE NOCASE,
	email TEXT COLLATE NOCASE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_unique ON users(email) WHERE email IS NOT NULL AND email != '';

CREATE TABLE IF NOT EXISTS sessions (
	session_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);

CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	human_color TEXT NOT NULL CHECK(human_color IN ('w', 'b')),
	initial_fen TEXT NOT NULL,
	think_time INTEGER NOT NULL DEFAULT 0,
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_games_user_id ON games(user_id);

CREATE TABLE IF NOT EXISTS results (
	game_id TEXT NOT NULL,
	round INTEGER NOT NULL,
	result TEXT NOT NULL,
	final_fen TEXT NOT NULL,
	end_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (game_id, round),
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE
);
`
