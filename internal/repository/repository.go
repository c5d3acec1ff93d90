package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alexandruivv/sleep-app/internal/model"
)

// DateRange is an inclusive range of calendar dates. From and To are
// expected to be midnight UTC values, the same normal form the service
// layer uses for SleepEntry.SleepDate.
type DateRange struct {
	From time.Time
	To   time.Time
}

// UserRepository is the storage surface for AppUser.
//
// Upsert is the idempotent get-or-create the creation flow relies on:
// insert the id if it is new, otherwise leave the existing row untouched,
// and return the row either way. Two concurrent calls for the same new id
// must both succeed with the same user — the implementation pushes this
// down to the database rather than doing read-then-write in Go.
type UserRepository interface {
	Upsert(ctx context.Context, id uuid.UUID) (*model.AppUser, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.AppUser, error)
}

// SleepEntryRepository is the storage surface for sleep entries.
//
// Insert assigns the entry ID and audit timestamps, and returns
// apperror.ErrConflict (wrapped) when an entry already exists for the same
// (user, sleep date). The uniqueness guarantee lives in the database
// schema, not in application-level checks.
type SleepEntryRepository interface {
	Insert(ctx context.Context, entry *model.SleepEntry) error
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*model.SleepEntry, error)
	ListByUserInRange(ctx context.Context, userID uuid.UUID, r DateRange) ([]model.SleepEntry, error)
}
