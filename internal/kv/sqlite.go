package kv

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"pkt.systems/pslog"
)

// SQLite keeps keys in a single table.
type SQLite struct {
	db   *sql.DB
	path string
	log  pslog.Logger
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string, logger pslog.Logger) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_db", path)
	}
	return &SQLite{db: db, path: path, log: logger}, nil
}

func migrateSQLite(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("state store migration failed: %w", err)
		}
	}
	return nil
}

// Get returns the value for key.
func (s *SQLite) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		if s.log != nil {
			s.log.Warn("state load failed", "key", key, "err", err)
		}
		return "", false, err
	}
	return value, true, nil
}

// Apply writes the batch in one transaction.
func (s *SQLite) Apply(batch Batch) error {
	if batch.Empty() {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for key, value := range batch.Set {
		if _, err := tx.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value); err != nil {
			_ = tx.Rollback()
			if s.log != nil {
				s.log.Warn("state save failed", "key", key, "err", err)
			}
			return err
		}
	}
	for _, key := range batch.Delete {
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
			_ = tx.Rollback()
			if s.log != nil {
				s.log.Warn("state save failed", "key", key, "err", err)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		if s.log != nil {
			s.log.Warn("state save failed", "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("state save ok", "set", len(batch.Set), "deleted", len(batch.Delete))
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
