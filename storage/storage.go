package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Click is one journaled feedback click.
type Click struct {
	UserID    string
	ArticleID string
	ClickedAt int64 // Unix timestamp
}

// Store provides SQLite-backed persistence for feedback clicks. The
// journal is replayed over the behaviors snapshot at startup so clicks
// accepted in earlier runs survive a restart; belief parameters are
// never persisted.
type Store struct {
	db *sql.DB
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS clicks (
	user_id TEXT NOT NULL,
	article_id TEXT NOT NULL,
	clicked_at INTEGER,
	PRIMARY KEY (user_id, article_id)
);
`

// New opens the SQLite database at dbPath, creates tables if they don't exist, and returns a Store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: set WAL mode: %w", err)
	}

	if _, err := db.Exec(createTablesSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendClick journals a click with the current timestamp.
// Uses INSERT OR IGNORE so repeated clicks on the same article are idempotent.
func (s *Store) AppendClick(userID, articleID string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO clicks (user_id, article_id, clicked_at) VALUES (?, ?, ?)`,
		userID, articleID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("storage: append click %s/%s: %w", userID, articleID, err)
	}
	return nil
}

// Clicks returns all journaled clicks ordered by click time.
func (s *Store) Clicks() ([]Click, error) {
	rows, err := s.db.Query(
		`SELECT user_id, article_id, clicked_at FROM clicks ORDER BY clicked_at, user_id, article_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: get clicks: %w", err)
	}
	defer rows.Close()

	var clicks []Click
	for rows.Next() {
		var c Click
		if err := rows.Scan(&c.UserID, &c.ArticleID, &c.ClickedAt); err != nil {
			return nil, fmt.Errorf("storage: scan click: %w", err)
		}
		clicks = append(clicks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: iterate clicks: %w", err)
	}
	return clicks, nil
}

// ClickCount returns the total number of journaled clicks.
func (s *Store) ClickCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM clicks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("storage: click count: %w", err)
	}
	return count, nil
}
