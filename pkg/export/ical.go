// Package export renders the alarm schedule as an iCalendar document, one
// VEVENT per enabled alarm at its next occurrence.
package export

import (
	"io"
	"time"

	"github.com/emersion/go-ical"

	"dreamclock/pkg/models"
	"dreamclock/pkg/schedule"
)

const productID = "-//dreamclock//dreamclockd//EN"

// Calendar builds an iCal calendar of upcoming occurrences. Disabled alarms
// and alarms with no valid schedule are skipped.
func Calendar(alarms []models.Alarm, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, alarm := range alarms {
		if !alarm.Enabled {
			continue
		}
		next, err := schedule.NextOccurrence(alarm, now)
		if err != nil {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, alarm.ID)
		event.Props.SetText(ical.PropSummary, alarm.DisplayLabel())
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, next)
		event.Props.SetDateTime(ical.PropDateTimeEnd, next.Add(time.Minute))
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// WriteICS encodes the schedule calendar to w.
func WriteICS(w io.Writer, alarms []models.Alarm, now time.Time) error {
	return ical.NewEncoder(w).Encode(Calendar(alarms, now))
}
