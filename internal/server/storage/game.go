package storage

import (
	"database/sql"
	"fmt"
)

// RecordNewGame asynchronously records a new game
func (s *Store) RecordNewGame(record GameRecord) {
	s.enqueue("game record", func(tx *sql.Tx) error {
		query := `INSERT INTO games (
			game_id, user_id, human_color, initial_fen, think_time, start_time_utc
		) VALUES (?, ?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.UserID, record.HumanColor,
			record.InitialFEN, record.ThinkTime, record.StartTimeUTC,
		)
		return err
	})
}

// RecordResult asynchronously records the outcome of a finished round
func (s *Store) RecordResult(record ResultRecord) {
	s.enqueue("result record", func(tx *sql.Tx) error {
		query := `INSERT OR REPLACE INTO results (
			game_id, round, result, final_fen, end_time_utc
		) VALUES (?, ?, ?, ?, ?)`

		_, err := tx.Exec(query,
			record.GameID, record.Round, record.Result,
			record.FinalFEN, record.EndTimeUTC,
		)
		return err
	})
}

// QueryGames retrieves games with optional filtering; "*" or empty matches all
func (s *Store) QueryGames(gameID, userID string) ([]GameRecord, error) {
	query := `SELECT game_id, user_id, human_color, initial_fen, think_time, start_time_utc
	FROM games WHERE 1=1`

	var args []any

	if gameID != "" && gameID != "*" {
		query += " AND game_id = ?"
		args = append(args, gameID)
	}

	if userID != "" && userID != "*" {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY start_time_utc DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var games []GameRecord
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(
			&g.GameID, &g.UserID, &g.HumanColor,
			&g.InitialFEN, &g.ThinkTime, &g.StartTimeUTC,
		); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return games, nil
}

// QueryResults returns the recorded rounds of a game in round order
func (s *Store) QueryResults(gameID string) ([]ResultRecord, error) {
	rows, err := s.db.Query(`SELECT game_id, round, result, final_fen, end_time_utc
	FROM results WHERE game_id = ? ORDER BY round`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []ResultRecord
	for rows.Next() {
		var r ResultRecord
		if err := rows.Scan(&r.GameID, &r.Round, &r.Result, &r.FinalFEN, &r.EndTimeUTC); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}
