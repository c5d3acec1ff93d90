// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-layer shape:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes the database
//
// The service receives repository INTERFACES, not the concrete sqlite
// types, so tests can inject in-memory mocks (see sleep_test.go) and the
// storage engine can change without touching business rules.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alexandruivv/sleep-app/internal/apperror"
	"github.com/alexandruivv/sleep-app/internal/model"
	"github.com/alexandruivv/sleep-app/internal/repository"
	"github.com/alexandruivv/sleep-app/internal/validate"
)

// averagesWindowDays is how far back the averages report looks. The window
// is inclusive on both ends, so it covers 31 calendar dates.
const averagesWindowDays = 30

// CreateSleepLogInput is what a caller must supply to record last night's
// sleep. The sleep date is deliberately NOT part of the input — it is
// always derived from the server clock at creation time.
type CreateSleepLogInput struct {
	TimeInBedStart time.Time
	TimeInBedEnd   time.Time
	MorningFeeling model.MorningFeeling
}

// SleepLogAverages is the 30-day report: the window it covers, the averaged
// durations and clock times, and how often each morning feeling occurred.
type SleepLogAverages struct {
	RangeStart                  time.Time
	RangeEnd                    time.Time
	AverageTimeInBedMinutes     int
	AverageTimeUserGetsInBed    ClockTime
	AverageTimeUserGetsOutOfBed ClockTime
	MorningFeelingFrequencies   map[model.MorningFeeling]FeelingFrequency
}

// SleepLogService orchestrates sleep log creation and retrieval.
//
// The clock is a struct field so tests can pin "now"; everything that
// depends on the current date or time goes through it.
type SleepLogService struct {
	users   repository.UserRepository
	entries repository.SleepEntryRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewSleepLogService creates a new SleepLogService.
func NewSleepLogService(users repository.UserRepository, entries repository.SleepEntryRepository, logger *slog.Logger) *SleepLogService {
	return &SleepLogService{
		users:   users,
		entries: entries,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateLastNightLog records one sleep session for the user, dated to the
// current UTC day.
//
// The flow is: validate the interval → anchor the user (get-or-create) →
// check for an existing entry today → persist. The existence check gives a
// clean conflict error on the common path; the database UNIQUE constraint
// covers the race where two requests pass the check simultaneously, and
// the repository reports that as the same ErrConflict.
func (s *SleepLogService) CreateLastNightLog(ctx context.Context, userID uuid.UUID, input CreateSleepLogInput) (*model.SleepEntry, error) {
	if !input.TimeInBedEnd.After(input.TimeInBedStart) {
		return nil, apperror.ValidationFailed("timeInBedEnd",
			"timeInBedEnd must be after timeInBedStart")
	}

	now := s.now().UTC()
	if !validate.Interval(&input.TimeInBedStart, validate.SessionStart, now) {
		return nil, apperror.ValidationFailed("timeInBedStart",
			"timeInBedStart must not be before the start of yesterday (UTC)")
	}
	if !validate.Interval(&input.TimeInBedEnd, validate.SessionEnd, now) {
		return nil, apperror.ValidationFailed("timeInBedEnd",
			"timeInBedEnd must not be in the future")
	}
	if !input.MorningFeeling.Valid() {
		return nil, apperror.ValidationFailed("morningFeeling",
			fmt.Sprintf("morningFeeling must be one of %s, %s, %s",
				model.FeelingGood, model.FeelingOK, model.FeelingBad))
	}

	totalMinutes := int(input.TimeInBedEnd.Sub(input.TimeInBedStart) / time.Minute)
	sleepDate := dateOf(now)

	// First sight of this user id anchors it; "already exists" is success.
	user, err := s.users.Upsert(ctx, userID)
	if err != nil {
		s.logger.Error("failed to resolve user",
			slog.String("userId", userID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	_, err = s.entries.GetByUserAndDate(ctx, user.ID, sleepDate)
	if err == nil {
		return nil, apperror.Conflict("sleep log already exists for today")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing sleep log: %w", err)
	}

	entry := &model.SleepEntry{
		UserID:                user.ID,
		SleepDate:             sleepDate,
		TimeInBedStart:        input.TimeInBedStart.UTC(),
		TimeInBedEnd:          input.TimeInBedEnd.UTC(),
		TotalTimeInBedMinutes: totalMinutes,
		MorningFeeling:        input.MorningFeeling,
	}
	if err := s.entries.Insert(ctx, entry); err != nil {
		// ErrConflict from the UNIQUE constraint means we lost the race to
		// a concurrent request — same outcome as the pre-check above.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to insert sleep log",
			slog.String("userId", userID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("inserting sleep log: %w", err)
	}

	s.logger.Info("sleep log created",
		slog.String("id", entry.ID),
		slog.String("userId", userID.String()),
		slog.String("sleepDate", sleepDate.Format(time.DateOnly)),
		slog.Int("totalTimeInBedMinutes", totalMinutes),
	)

	return entry, nil
}

// GetLastNightLog fetches the entry for the current UTC day.
// Returns apperror.ErrNotFound if the user has not logged today.
func (s *SleepLogService) GetLastNightLog(ctx context.Context, userID uuid.UUID) (*model.SleepEntry, error) {
	return s.entries.GetByUserAndDate(ctx, userID, dateOf(s.now().UTC()))
}

// GetLast30DayAverages reduces the user's entries from the last 30 days
// (inclusive of today and of the day 30 days ago) into the averages report.
// Returns apperror.ErrNotFound when the window holds no entries at all —
// an all-zero report would be indistinguishable from real data.
func (s *SleepLogService) GetLast30DayAverages(ctx context.Context, userID uuid.UUID) (*SleepLogAverages, error) {
	today := dateOf(s.now().UTC())
	rangeStart := today.AddDate(0, 0, -averagesWindowDays)

	entries, err := s.entries.ListByUserInRange(ctx, userID, repository.DateRange{
		From: rangeStart,
		To:   today,
	})
	if err != nil {
		s.logger.Error("failed to list sleep logs",
			slog.String("userId", userID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing sleep logs: %w", err)
	}
	if len(entries) == 0 {
		return nil, apperror.NotFound("no sleep logs found for user in the last 30 days")
	}

	return &SleepLogAverages{
		RangeStart:                  rangeStart,
		RangeEnd:                    today,
		AverageTimeInBedMinutes:     AverageTimeInBedMinutes(entries),
		AverageTimeUserGetsInBed:    AverageTimeUserGetsInBed(entries),
		AverageTimeUserGetsOutOfBed: AverageTimeUserGetsOutOfBed(entries),
		MorningFeelingFrequencies:   FeelingFrequencies(entries),
	}, nil
}

// dateOf truncates an instant to its UTC calendar date (midnight UTC).
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
