// Package validate holds the pure validation rules for sleep session
// timestamps. These are policy checks, not parsing — the HTTP layer has
// already ensured the fields are present and well-formed by the time they
// get here.
package validate

import "time"

// IntervalRole identifies which boundary of a sleep session a timestamp
// represents. Each role has its own validity policy.
type IntervalRole int

const (
	// SessionStart is the moment the user got into bed.
	SessionStart IntervalRole = iota
	// SessionEnd is the moment the user got out of bed.
	SessionEnd
)

// Interval reports whether ts satisfies the validity policy for its role,
// evaluated against the given wall-clock time.
//
// Rules:
//   - A nil timestamp is always valid. Required-ness is enforced upstream;
//     this function only judges values that exist.
//   - SessionEnd: valid iff ts <= now. A session cannot end in the future.
//   - SessionStart: valid iff ts >= midnight UTC of yesterday. Anything
//     older than that boundary is not "last night".
//
// "now" is a parameter rather than a call to time.Now so tests can pin the
// clock (see interval_test.go).
func Interval(ts *time.Time, role IntervalRole, now time.Time) bool {
	if ts == nil {
		return true
	}

	switch role {
	case SessionEnd:
		return !ts.After(now)
	case SessionStart:
		return !ts.Before(startOfYesterdayUTC(now))
	}

	return true
}

// startOfYesterdayUTC returns midnight UTC one calendar day before now's
// UTC date.
func startOfYesterdayUTC(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}
