package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexandruivv/sleep-app/internal/apperror"
	"github.com/alexandruivv/sleep-app/internal/model"
	"github.com/alexandruivv/sleep-app/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Upsert creates the user if it has never been seen before, then reads the
// row back.
//
// ON CONFLICT DO NOTHING makes this a single atomic statement: if two
// requests race on the same new id, the database lets exactly one insert
// win and the other becomes a no-op, and both re-reads see the same row.
// "Already exists" is success here, not an error — the user's claimed
// identity is simply being anchored on first sight.
func (db *DB) Upsert(ctx context.Context, id uuid.UUID) (*model.AppUser, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO app_users (id, created_at) VALUES (?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		id.String(), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: upserting user %s: %w", id, err)
	}

	return db.GetByID(ctx, id)
}

// GetByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (db *DB) GetByID(ctx context.Context, id uuid.UUID) (*model.AppUser, error) {
	var (
		rawID     string
		createdAt time.Time
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, created_at FROM app_users WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(fmt.Sprintf("user not found with id %s", id))
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}

	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: corrupt user id %q: %w", rawID, err)
	}

	return &model.AppUser{ID: parsed, CreatedAt: createdAt}, nil
}
