package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"

	"github.com/alexandruivv/sleep-app/internal/apperror"
	"github.com/alexandruivv/sleep-app/internal/model"
	"github.com/alexandruivv/sleep-app/internal/repository"
)

// compile-time check that *DB implements repository.SleepEntryRepository
var _ repository.SleepEntryRepository = (*DB)(nil)

// Insert stores a new sleep entry, assigning its ID and audit timestamps.
//
// The UNIQUE(user_id, sleep_date) constraint is what actually guarantees
// one entry per user per day. If the insert trips it — including the race
// where two concurrent requests both passed the service's existence check —
// the violation is translated to apperror.ErrConflict so callers see the
// same outcome as the pre-check path.
func (db *DB) Insert(ctx context.Context, entry *model.SleepEntry) error {
	now := time.Now().UTC()
	entry.ID = xid.New().String()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO sleep_entries
			(id, user_id, sleep_date, time_in_bed_start, time_in_bed_end,
			 total_time_in_bed_minutes, morning_feeling, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID.String(),
		entry.SleepDate.Format(dateLayout),
		entry.TimeInBedStart.UTC(),
		entry.TimeInBedEnd.UTC(),
		entry.TotalTimeInBedMinutes,
		string(entry.MorningFeeling),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf(
				"sleep log already exists for user %s on %s",
				entry.UserID, entry.SleepDate.Format(dateLayout)))
		}
		return fmt.Errorf("sqlite: inserting sleep entry for user %s: %w", entry.UserID, err)
	}

	return nil
}

// GetByUserAndDate retrieves the entry for (userID, date).
// Returns apperror.ErrNotFound if no entry exists for that day.
func (db *DB) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*model.SleepEntry, error) {
	row := db.conn.QueryRowContext(ctx,
		selectEntryColumns+` WHERE user_id = ? AND sleep_date = ?`,
		userID.String(), date.Format(dateLayout),
	)

	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound(fmt.Sprintf(
				"sleep log not found for user %s on %s", userID, date.Format(dateLayout)))
		}
		return nil, fmt.Errorf("sqlite: getting sleep entry for user %s: %w", userID, err)
	}

	return entry, nil
}

// ListByUserInRange retrieves all entries for the user with sleep_date in
// the inclusive range. An empty result is not an error here — the service
// decides what an empty window means.
func (db *DB) ListByUserInRange(ctx context.Context, userID uuid.UUID, r repository.DateRange) ([]model.SleepEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		selectEntryColumns+` WHERE user_id = ? AND sleep_date BETWEEN ? AND ?
		 ORDER BY sleep_date`,
		userID.String(), r.From.Format(dateLayout), r.To.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing sleep entries for user %s: %w", userID, err)
	}
	defer rows.Close()

	var entries []model.SleepEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning sleep entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating sleep entries: %w", err)
	}

	return entries, nil
}

const selectEntryColumns = `
	SELECT id, user_id, sleep_date, time_in_bed_start, time_in_bed_end,
	       total_time_in_bed_minutes, morning_feeling, created_at, updated_at
	FROM sleep_entries`

// scanner is satisfied by both *sql.Row and *sql.Rows, so scanEntry serves
// single-row and multi-row queries alike.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*model.SleepEntry, error) {
	var (
		e       model.SleepEntry
		rawUser string
		rawDate string
		feeling string
	)

	err := s.Scan(
		&e.ID,
		&rawUser,
		&rawDate,
		&e.TimeInBedStart,
		&e.TimeInBedEnd,
		&e.TotalTimeInBedMinutes,
		&feeling,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", rawUser, err)
	}
	sleepDate, err := time.ParseInLocation(dateLayout, rawDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("corrupt sleep date %q: %w", rawDate, err)
	}

	e.UserID = userID
	e.SleepDate = sleepDate
	e.MorningFeeling = model.MorningFeeling(feeling)
	return &e, nil
}

// isUniqueViolation detects a UNIQUE constraint failure from the sqlite
// driver. modernc.org/sqlite does not export a typed error for this, so the
// message text is the contract (it names the constrained columns).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
