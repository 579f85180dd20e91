// Package schedule computes alarm occurrences. All functions are pure: they
// take the reference instant explicitly and touch no shared state, so the
// foreground scheduler and the background notifier share one implementation
// of the date math.
package schedule

import (
	"fmt"
	"time"

	"dreamclock/pkg/models"
)

// NextOccurrence returns the earliest instant strictly after now at which the
// alarm should fire: the alarm's hour/minute with zero seconds, on the next
// calendar day whose weekday is in the alarm's day set. The day-matching walk
// is bounded; an empty or unmatchable day set fails with ErrInvalidSchedule
// instead of looping.
func NextOccurrence(a models.Alarm, now time.Time) (time.Time, error) {
	if len(a.Days) == 0 {
		return time.Time{}, models.ErrInvalidSchedule
	}
	hour, minute, err := a.Clock()
	if err != nil {
		return time.Time{}, err
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}

	for i := 0; i < 7; i++ {
		if a.HasDay(candidate.Weekday().String()) {
			return candidate, nil
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	return time.Time{}, models.ErrInvalidSchedule
}

// IsDue reports whether the alarm matches the wall-clock minute of now. The
// caller is responsible for edge-detecting the minute boundary so an
// occurrence triggers at most once.
func IsDue(a models.Alarm, now time.Time) bool {
	return a.Enabled &&
		a.Time == models.FormatClock(now) &&
		a.HasDay(now.Weekday().String())
}

// Remaining is a human-readable breakdown of the time until an occurrence.
type Remaining struct {
	Days    int
	Hours   int
	Minutes int
}

func (r Remaining) String() string {
	switch {
	case r.Days > 0:
		return fmt.Sprintf("%dd %dh %dm", r.Days, r.Hours, r.Minutes)
	case r.Hours > 0:
		return fmt.Sprintf("%dh %dm", r.Hours, r.Minutes)
	default:
		return fmt.Sprintf("%dm", r.Minutes)
	}
}

// TimeUntil breaks down the interval from now to the alarm's next occurrence.
func TimeUntil(a models.Alarm, now time.Time) (Remaining, error) {
	next, err := NextOccurrence(a, now)
	if err != nil {
		return Remaining{}, err
	}
	diff := next.Sub(now)
	return Remaining{
		Days:    int(diff.Hours()) / 24,
		Hours:   int(diff.Hours()) % 24,
		Minutes: int(diff.Minutes()) % 60,
	}, nil
}
