package events

import (
	"fmt"
	"time"
)

// MinDuration is the shortest accepted event duration.
const MinDuration = time.Minute

// Reasons an event's time range can be rejected, in evaluation order.
const (
	ReasonInvalidTimeRange   = "invalid-time-range"
	ReasonEventTooShort      = "event-too-short"
	ReasonInvalidAllDayStart = "invalid-all-day-start"
	ReasonInvalidAllDayEnd   = "invalid-all-day-end"
	ReasonAllDaySpanMismatch = "all-day-span-mismatch"
)

// ValidationError reports the first time-range rule an event payload
// violated.
type ValidationError struct {
	Reason  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// ValidateTimes checks an event's time range against the domain rules.
// Nil inputs mark fields absent from a partial update; each rule is
// skipped unless every input it compares is present. Rules apply in a
// fixed order and the first violation is reported alone:
//
//  1. end_time must be strictly after start_time
//  2. the duration must be at least MinDuration
//  3. an all-day start must be at 00:00:00
//  4. an all-day end must be at 23:59:59
//  5. an all-day event must start and end on the same calendar date
//
// Time-of-day and date checks use the wall clock of each timestamp in its
// own location, exactly as submitted.
func ValidateTimes(start, end *time.Time, allDay *bool) error {
	if start != nil && end != nil {
		if !end.After(*start) {
			return &ValidationError{
				Reason:  ReasonInvalidTimeRange,
				Message: "end_time must be after start_time",
			}
		}
		if end.Sub(*start) < MinDuration {
			return &ValidationError{
				Reason:  ReasonEventTooShort,
				Message: "event must be at least 1 minute long",
			}
		}
	}

	if allDay == nil || !*allDay {
		return nil
	}

	if start != nil && !atTimeOfDay(*start, 0, 0, 0) {
		return &ValidationError{
			Reason:  ReasonInvalidAllDayStart,
			Message: "all-day start_time must be at 00:00:00",
		}
	}
	if end != nil && !atTimeOfDay(*end, 23, 59, 59) {
		return &ValidationError{
			Reason:  ReasonInvalidAllDayEnd,
			Message: "all-day end_time must be at 23:59:59",
		}
	}
	if start != nil && end != nil && !sameCalendarDate(*start, *end) {
		return &ValidationError{
			Reason:  ReasonAllDaySpanMismatch,
			Message: "all-day start_time and end_time must fall on the same date",
		}
	}
	return nil
}

func atTimeOfDay(t time.Time, hour, minute, second int) bool {
	h, m, s := t.Clock()
	return h == hour && m == minute && s == second
}

func sameCalendarDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
