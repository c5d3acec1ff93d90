// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import (
	"time"

	"github.com/google/uuid"
)

// MorningFeeling is the closed set of subjective morning states a user can
// report. It is stored as its string value, so the constants double as the
// wire format and the database representation.
type MorningFeeling string

const (
	FeelingGood MorningFeeling = "GOOD"
	FeelingOK   MorningFeeling = "OK"
	FeelingBad  MorningFeeling = "BAD"
)

// Valid reports whether f is one of the known feelings.
// JSON decoding accepts any string, so membership is checked explicitly.
func (f MorningFeeling) Valid() bool {
	switch f {
	case FeelingGood, FeelingOK, FeelingBad:
		return true
	}
	return false
}

// SleepEntry is one persisted record of a single night's sleep session.
// There is at most one entry per (UserID, SleepDate) pair — the database
// enforces this with a UNIQUE constraint.
//
// WHY SleepDate AS time.Time?
// The entry represents a calendar date, not an instant. We keep it as a
// time.Time pinned to midnight UTC so date arithmetic (window queries,
// "today" comparisons) uses the standard library directly; the repository
// serialises it as a plain YYYY-MM-DD string.
//
// Entries are immutable after creation. UpdatedAt exists for audit parity
// with CreatedAt, but no update operation is exposed.
type SleepEntry struct {
	ID                    string         `json:"id"`
	UserID                uuid.UUID      `json:"userId"`
	SleepDate             time.Time      `json:"sleepDate"`
	TimeInBedStart        time.Time      `json:"timeInBedStart"`
	TimeInBedEnd          time.Time      `json:"timeInBedEnd"`
	TotalTimeInBedMinutes int            `json:"totalTimeInBedMinutes"`
	MorningFeeling        MorningFeeling `json:"morningFeeling"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}
