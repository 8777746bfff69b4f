package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoSession is returned when a session is unknown, expired or revoked
var ErrNoSession = errors.New("no active session")

// CreateSession records a login. Each user holds at most one session, so a
// new login signs out any other client of the same account.
func (s *Store) CreateSession(record SessionRecord) error {
	if !record.ExpiresAt.After(record.CreatedAt) {
		return fmt.Errorf("session %s expires before it starts", record.SessionID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = ?`, record.UserID); err != nil {
		return fmt.Errorf("failed to replace session of %s: %w", record.UserID, err)
	}
	if _, err := tx.Exec(
		`INSERT INTO sessions (session_id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		record.SessionID, record.UserID, record.CreatedAt, record.ExpiresAt,
	); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return tx.Commit()
}

// SessionOwner returns the user of an active session
func (s *Store) SessionOwner(sessionID string) (string, error) {
	var userID string
	err := s.db.QueryRow(
		`SELECT user_id FROM sessions WHERE session_id = ? AND expires_at > ?`,
		sessionID, time.Now().UTC(),
	).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// RevokeSession ends the user's session and reports whether one was active
func (s *Store) RevokeSession(userID string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// DeleteExpiredSessions removes expired sessions
func (s *Store) DeleteExpiredSessions() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
