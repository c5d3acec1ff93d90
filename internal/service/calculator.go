package service

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/alexandruivv/sleep-app/internal/model"
)

// ClockTime is a time of day (UTC), with the date discarded.
// It marshals as "HH:MM:SS". The zero value is midnight, 00:00:00.
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// FeelingFrequency is how often one morning feeling was reported within a
// window: an absolute count and a percentage of the window's entries,
// rounded half-up to two decimal places.
type FeelingFrequency struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// AverageTimeInBedMinutes returns the arithmetic mean of the entries'
// time-in-bed durations, in whole minutes truncated toward zero.
// An empty slice yields 0 — not an error, and no division by zero.
func AverageTimeInBedMinutes(entries []model.SleepEntry) int {
	if len(entries) == 0 {
		return 0
	}

	var total int64
	for _, e := range entries {
		total += int64(e.TimeInBedEnd.Sub(e.TimeInBedStart) / time.Minute)
	}
	return int(float64(total) / float64(len(entries)))
}

// AverageTimeUserGetsInBed averages the session-start timestamps and
// projects the result onto a UTC time of day.
func AverageTimeUserGetsInBed(entries []model.SleepEntry) ClockTime {
	return averageClockTime(entries, func(e model.SleepEntry) time.Time {
		return e.TimeInBedStart
	})
}

// AverageTimeUserGetsOutOfBed averages the session-end timestamps and
// projects the result onto a UTC time of day.
func AverageTimeUserGetsOutOfBed(entries []model.SleepEntry) ClockTime {
	return averageClockTime(entries, func(e model.SleepEntry) time.Time {
		return e.TimeInBedEnd
	})
}

// averageClockTime takes the mean of the chosen timestamps as epoch seconds
// (rounded to the nearest second, ties away from zero), reinterprets that
// as an instant, and keeps only the UTC clock reading.
//
// KNOWN LIMITATION: this is a linear mean, not a circular one. It is only
// meaningful when the sampled clock times cluster away from the UTC
// midnight boundary — 23:50 and 00:10 on consecutive dates average to
// midday, not to midnight. That is the established observable behaviour of
// this report and is kept as-is.
func averageClockTime(entries []model.SleepEntry, pick func(model.SleepEntry) time.Time) ClockTime {
	if len(entries) == 0 {
		return ClockTime{}
	}

	var total int64
	for _, e := range entries {
		total += pick(e).Unix()
	}
	avg := int64(math.Round(float64(total) / float64(len(entries))))

	t := time.Unix(avg, 0).UTC()
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// FeelingFrequencies counts how often each morning feeling occurs and
// expresses it as a share of all entries.
//
// Feelings that never occur are absent from the map, not zero-filled.
// Each percentage is rounded independently, so the values are NOT
// guaranteed to sum to exactly 100.00 — that is accepted rounding
// behaviour, and consumers must not rely on the total.
func FeelingFrequencies(entries []model.SleepEntry) map[model.MorningFeeling]FeelingFrequency {
	frequencies := make(map[model.MorningFeeling]FeelingFrequency)
	if len(entries) == 0 {
		return frequencies
	}

	counts := make(map[model.MorningFeeling]int)
	for _, e := range entries {
		counts[e.MorningFeeling]++
	}

	total := float64(len(entries))
	for feeling, count := range counts {
		frequencies[feeling] = FeelingFrequency{
			Count:      count,
			Percentage: roundHalfUp2(float64(count) / total * 100),
		}
	}
	return frequencies
}

// roundHalfUp2 rounds to two decimal places, halves going up.
func roundHalfUp2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
