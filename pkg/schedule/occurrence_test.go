package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreamclock/pkg/models"
)

func mondayAlarm() models.Alarm {
	return models.Alarm{
		ID:      "a1",
		Time:    "07:30",
		Days:    []string{"Monday"},
		Enabled: true,
	}
}

func TestNextOccurrenceSundayBeforeMonday(t *testing.T) {
	// Sunday 2024-06-02 08:00 local
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.Local)
	require.Equal(t, time.Sunday, now.Weekday())

	next, err := NextOccurrence(mondayAlarm(), now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 3, 7, 30, 0, 0, time.Local), next)
	assert.Equal(t, time.Monday, next.Weekday())
}

func TestNextOccurrenceExactMatchAdvancesOneWeek(t *testing.T) {
	// Monday 07:30:00 exactly: the candidate equals now, is not strictly
	// after it, and the next occurrence lands exactly 7 days out. The
	// current minute itself is the scheduler's to fire.
	now := time.Date(2024, 6, 3, 7, 30, 0, 0, time.Local)
	require.Equal(t, time.Monday, now.Weekday())

	alarm := mondayAlarm()
	assert.True(t, IsDue(alarm, now))

	next, err := NextOccurrence(alarm, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 7), next)
}

func TestNextOccurrenceSameDayLater(t *testing.T) {
	now := time.Date(2024, 6, 3, 6, 0, 0, 0, time.Local) // Monday 06:00
	next, err := NextOccurrence(mondayAlarm(), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 7, 30, 0, 0, time.Local), next)
}

func TestNextOccurrenceCrossesMonthBoundary(t *testing.T) {
	alarm := models.Alarm{Time: "00:05", Days: []string{"Saturday"}, Enabled: true}
	// Friday 2024-08-30 23:00; next Saturday is 2024-08-31, and once that
	// has passed the following one is in September.
	now := time.Date(2024, 8, 31, 1, 0, 0, 0, time.Local)
	require.Equal(t, time.Saturday, now.Weekday())

	next, err := NextOccurrence(alarm, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 7, 0, 5, 0, 0, time.Local), next)
}

func TestNextOccurrenceCrossesYearBoundary(t *testing.T) {
	alarm := models.Alarm{Time: "09:00", Days: []string{"Wednesday"}, Enabled: true}
	now := time.Date(2024, 12, 31, 10, 0, 0, 0, time.Local) // Tuesday
	next, err := NextOccurrence(alarm, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local), next)
}

func TestNextOccurrenceEmptyDaysFails(t *testing.T) {
	alarm := models.Alarm{Time: "07:30", Days: nil, Enabled: true}
	_, err := NextOccurrence(alarm, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidSchedule)
}

func TestNextOccurrenceUnknownDayNameFails(t *testing.T) {
	alarm := models.Alarm{Time: "07:30", Days: []string{"Caturday"}, Enabled: true}
	_, err := NextOccurrence(alarm, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidSchedule)
}

func TestNextOccurrenceBadTimeFails(t *testing.T) {
	alarm := models.Alarm{Time: "25:99", Days: []string{"Monday"}, Enabled: true}
	_, err := NextOccurrence(alarm, time.Now())
	assert.ErrorIs(t, err, models.ErrInvalidTime)
}

func TestNextOccurrenceIsPure(t *testing.T) {
	alarm := models.Alarm{
		Time:    "12:00",
		Days:    []string{"Monday", "Wednesday", "Friday"},
		Enabled: true,
	}
	now := time.Date(2024, 6, 4, 13, 0, 0, 0, time.Local)

	first, err := NextOccurrence(alarm, now)
	require.NoError(t, err)
	second, err := NextOccurrence(alarm, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNextOccurrenceProperties(t *testing.T) {
	alarm := models.Alarm{
		Time:    "06:45",
		Days:    []string{"Tuesday", "Saturday"},
		Enabled: true,
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)

	for i := 0; i < 21; i++ {
		next, err := NextOccurrence(alarm, now)
		require.NoError(t, err)

		assert.True(t, next.After(now), "occurrence must be after the reference instant")
		assert.True(t, alarm.HasDay(next.Weekday().String()))
		assert.Equal(t, "06:45", models.FormatClock(next))
		assert.Zero(t, next.Second())

		// Earliest such instant: no earlier candidate in (now, next) can
		// match, since stepping is day-by-day from the first candidate.
		assert.LessOrEqual(t, next.Sub(now), 7*24*time.Hour)

		now = next
	}
}

func TestIsDue(t *testing.T) {
	alarm := mondayAlarm()
	monday := time.Date(2024, 6, 3, 7, 30, 42, 0, time.Local)

	assert.True(t, IsDue(alarm, monday), "IsDue matches the whole minute; edge detection is the caller's job")
	assert.False(t, IsDue(alarm, monday.Add(time.Minute)))
	assert.False(t, IsDue(alarm, monday.AddDate(0, 0, 1)))

	alarm.Enabled = false
	assert.False(t, IsDue(alarm, monday))
}

func TestTimeUntil(t *testing.T) {
	alarm := mondayAlarm()
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.Local) // Sunday 08:00

	remaining, err := TimeUntil(alarm, now)
	require.NoError(t, err)
	assert.Equal(t, Remaining{Days: 0, Hours: 23, Minutes: 30}, remaining)
	assert.Equal(t, "23h 30m", remaining.String())
}

func TestTimeUntilMultipleDays(t *testing.T) {
	alarm := mondayAlarm()
	now := time.Date(2024, 6, 4, 8, 0, 0, 0, time.Local) // Tuesday 08:00

	remaining, err := TimeUntil(alarm, now)
	require.NoError(t, err)
	assert.Equal(t, Remaining{Days: 5, Hours: 23, Minutes: 30}, remaining)
	assert.Equal(t, "5d 23h 30m", remaining.String())
}
