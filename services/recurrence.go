package services

import (
	"time"

	"ContentCalendarAPI/models"
)

// NextOccurrence computes the next scheduled instant for a recurring post
// from the previous scheduled time. The second return value is false when
// the rule produces no further occurrence (type "none" or unknown).
//
// Monthly arithmetic uses time.Time.AddDate, which normalizes overflowing
// day-of-month values (Jan 31 + 1 month = Mar 2/3). Comparing the result
// against the rule's end date is the caller's responsibility.
func NextOccurrence(current time.Time, rule models.Recurrence) (time.Time, bool) {
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}

	switch rule.Type {
	case models.RecurrenceDaily:
		return current.AddDate(0, 0, interval), true
	case models.RecurrenceWeekly:
		return current.AddDate(0, 0, 7*interval), true
	case models.RecurrenceMonthly:
		return current.AddDate(0, interval, 0), true
	}

	return time.Time{}, false
}
