package sqlite

import (
	"testing"
)

// newTestDB returns a *DB backed by an in-memory SQLite database.
//
// database/sql is a connection pool, and every pooled connection to
// ":memory:" gets its OWN empty database. Limiting the pool to a single
// connection keeps all test queries on the one database that was migrated.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	db.conn.SetMaxOpenConns(1)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return db
}
