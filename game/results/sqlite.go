package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wricardo/mcp-training/landmines/game/engine"
)

const tableName = "match_results"

// SQLiteStore keeps match results in a SQLite database file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.createTable(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// createTable creates the match_results table if it does not exist.
func (s *SQLiteStore) createTable() error {
	const createTableSQL = `
	CREATE TABLE IF NOT EXISTS ` + tableName + ` (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		config_name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		winner_id INTEGER NOT NULL,
		winner_name TEXT NOT NULL,
		turns INTEGER NOT NULL,
		players TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);`

	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to execute CREATE TABLE: %w", err)
	}
	log.Debug("match results table ensured")
	return nil
}

// Record inserts a result, assigning an id and finish time when missing
func (s *SQLiteStore) Record(ctx context.Context, result *MatchResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now().UTC()
	}
	players, err := json.Marshal(result.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}

	const insertSQL = `
	INSERT INTO ` + tableName + ` (id, session_id, config_name, seed, winner_id, winner_name, turns, players, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	_, err = s.db.ExecContext(ctx, insertSQL,
		result.ID, result.SessionID, result.ConfigName, int64(result.Seed), int(result.WinnerID),
		result.WinnerName, result.Turns, string(players), result.FinishedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert result for session %s: %w", result.SessionID, err)
	}
	return nil
}

// List returns results newest first
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]MatchResult, error) {
	const selectSQL = `
	SELECT id, session_id, config_name, seed, winner_id, winner_name, turns, players, finished_at
	FROM ` + tableName + `
	ORDER BY finished_at DESC
	LIMIT ? OFFSET ?;`

	rows, err := s.db.QueryContext(ctx, selectSQL, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []MatchResult
	for rows.Next() {
		var (
			r          MatchResult
			seed       int64
			winnerID   int
			players    string
			finishedAt string
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ConfigName, &seed, &winnerID,
			&r.WinnerName, &r.Turns, &players, &finishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Seed = uint64(seed)
		r.WinnerID = engine.PlayerID(winnerID)
		if err := json.Unmarshal([]byte(players), &r.Players); err != nil {
			return nil, fmt.Errorf("failed to decode players of %s: %w", r.ID, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, finishedAt); err == nil {
			r.FinishedAt = t
		} else {
			log.Warn("time parsing error", "id", r.ID, "raw", finishedAt, "err", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return out, nil
}

// Count returns the number of recorded results
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+tableName+`;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

// Leaderboard returns winners ordered by number of wins. Draws are excluded.
func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	const selectSQL = `
	SELECT winner_name, COUNT(*) AS wins
	FROM ` + tableName + `
	WHERE winner_id >= 0
	GROUP BY winner_name
	ORDER BY wins DESC, winner_name ASC
	LIMIT ?;`

	rows, err := s.db.QueryContext(ctx, selectSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Wins); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
