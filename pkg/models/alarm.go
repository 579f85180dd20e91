package models

import (
	"fmt"
	"regexp"
	"time"
)

// Weekday names as stored in an alarm's day set.
var WeekdayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Alarm is a persisted alarm record. Time is a 24-hour wall-clock "HH:MM"
// string at minute resolution; Days holds weekday names the alarm is active
// on. Snoozed marks an alarm whose Time has been overwritten with a snooze
// target; the original schedule is not restored automatically.
type Alarm struct {
	ID      string   `json:"id" gorm:"primaryKey"`
	Time    string   `json:"time"`
	Label   string   `json:"label,omitempty"`
	Days    []string `json:"days" gorm:"serializer:json"`
	Sound   string   `json:"sound,omitempty"`
	Vibrate bool     `json:"vibrate"`
	Enabled bool     `json:"enabled"`
	Snoozed bool     `json:"snoozed"`
}

// Clock parses the alarm's HH:MM time.
func (a Alarm) Clock() (hour, minute int, err error) {
	if !timePattern.MatchString(a.Time) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, a.Time)
	}
	fmt.Sscanf(a.Time, "%d:%d", &hour, &minute)
	return hour, minute, nil
}

// HasDay reports whether the given weekday name is in the alarm's day set.
func (a Alarm) HasDay(name string) bool {
	for _, d := range a.Days {
		if d == name {
			return true
		}
	}
	return false
}

// DisplayLabel returns the label or a generic fallback for notifications.
func (a Alarm) DisplayLabel() string {
	if a.Label != "" {
		return a.Label
	}
	return "Alarm"
}

// Validate checks the invariants that must hold before an alarm is persisted.
// An empty day set is allowed only while the alarm is disabled (UI drafts);
// an enabled alarm must always have at least one active day.
func (a Alarm) Validate() error {
	if !timePattern.MatchString(a.Time) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, a.Time)
	}
	if a.Enabled && len(a.Days) == 0 {
		return ErrInvalidSchedule
	}
	seen := make(map[string]bool)
	for _, d := range a.Days {
		if !isWeekdayName(d) {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, d)
		}
		if seen[d] {
			return fmt.Errorf("%w: duplicate day %q", ErrInvalidSchedule, d)
		}
		seen[d] = true
	}
	return nil
}

func isWeekdayName(name string) bool {
	for _, d := range WeekdayNames {
		if d == name {
			return true
		}
	}
	return false
}

// FormatClock renders a time as the stored HH:MM representation.
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
