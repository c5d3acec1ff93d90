// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere
// Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// dateLayout is how sleep_date is stored. A plain YYYY-MM-DD string sorts
// and compares correctly in SQL, which the BETWEEN window query relies on.
const dateLayout = "2006-01-02"

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/sleep.db" → file-based database (persistent)
//   - ":memory:"      → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces an immediate connection so a bad path or permissions
	// issue surfaces here rather than on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening.
	// Default SQLite locks the entire database during writes, which is a
	// problem for a web server handling parallel requests.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. Entries reference users,
	// so we want referential integrity enforced.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS is idempotent, so
// this is safe to run on every startup.
//
// The UNIQUE(user_id, sleep_date) constraint is the real one-log-per-day
// guarantee: two concurrent inserts for the same user and day cannot both
// succeed, no matter what the application layer observed beforehand.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS app_users (
			id         TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating app_users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sleep_entries (
			id                        TEXT PRIMARY KEY,
			user_id                   TEXT NOT NULL REFERENCES app_users(id),
			sleep_date                TEXT NOT NULL,
			time_in_bed_start         DATETIME NOT NULL,
			time_in_bed_end           DATETIME NOT NULL,
			total_time_in_bed_minutes INTEGER NOT NULL,
			morning_feeling           TEXT NOT NULL,
			created_at                DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at                DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, sleep_date)
		);
		CREATE INDEX IF NOT EXISTS idx_sleep_entries_user_date
			ON sleep_entries(user_id, sleep_date);
	`)
	if err != nil {
		return fmt.Errorf("creating sleep_entries table: %w", err)
	}

	return nil
}
