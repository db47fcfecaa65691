package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// Connect opens the database and creates the schema if needed
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(dsn); !isMemory(dsn) && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file:")
}

// initializeSchema creates necessary tables if they don't exist. The DDL is
// the common subset of SQLite and PostgreSQL.
func initializeSchema(db *sqlx.DB) error {
	statements := []struct {
		name  string
		query string
	}{
		{"quiz_results", `
			CREATE TABLE IF NOT EXISTS quiz_results (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				subject TEXT NOT NULL,
				subject_id TEXT NOT NULL,
				score INTEGER NOT NULL,
				correct_answers INTEGER NOT NULL,
				total_questions INTEGER NOT NULL,
				difficulty TEXT NOT NULL,
				time_spent_seconds INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL
			)`},
		{"quiz_results index", `
			CREATE INDEX IF NOT EXISTS idx_quiz_results_user_subject
			ON quiz_results (user_id, subject_id, created_at)`},
		{"question_results", `
			CREATE TABLE IF NOT EXISTS question_results (
				quiz_result_id TEXT NOT NULL REFERENCES quiz_results(id) ON DELETE CASCADE,
				position INTEGER NOT NULL,
				question_id TEXT NOT NULL,
				correct BOOLEAN NOT NULL,
				user_answer_index INTEGER NOT NULL,
				correct_answer_index INTEGER NOT NULL,
				PRIMARY KEY (quiz_result_id, position)
			)`},
		{"subject_progress", `
			CREATE TABLE IF NOT EXISTS subject_progress (
				user_id TEXT NOT NULL,
				subject_id TEXT NOT NULL,
				last_quiz_score INTEGER NOT NULL,
				total_quizzes_taken INTEGER NOT NULL,
				last_activity TIMESTAMP NOT NULL,
				average_score DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (user_id, subject_id)
			)`},
		{"session_snapshots", `
			CREATE TABLE IF NOT EXISTS session_snapshots (
				snapshot_key TEXT PRIMARY KEY,
				payload TEXT NOT NULL,
				saved_at TIMESTAMP NOT NULL
			)`},
	}

	for _, s := range statements {
		if _, err := db.Exec(s.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.name, err)
		}
	}
	return nil
}
