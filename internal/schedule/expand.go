package schedule

import (
	"time"

	"github.com/Verti90/commun-api/internal/models"
)

// Occurrence is one concrete realization of a recurring activity. Instant is
// the canonical UTC key used for materialization; Civil is the wall-clock
// view of it, nudged off exact midnight for display and window membership.
type Occurrence struct {
	Instant time.Time
	Civil   time.Time
}

// Expander lazily walks the occurrences of an activity definition that fall
// inside [windowStart, windowEnd]. It is a pure function of its inputs:
// no persistence, restartable by constructing a fresh expander.
type Expander struct {
	clock       *Clock
	recurrence  models.Recurrence
	candidate   time.Time
	windowStart time.Time
	windowEnd   time.Time
	done        bool
}

// NewExpander starts expansion at the activity's anchor instant. Window
// bounds are absolute instants (already derived from civil boundaries).
func NewExpander(clock *Clock, activity models.Activity, windowStart, windowEnd time.Time) *Expander {
	return &Expander{
		clock:       clock,
		recurrence:  activity.Recurrence,
		candidate:   activity.DateTime.UTC(),
		windowStart: windowStart,
		windowEnd:   windowEnd,
	}
}

// Next returns the next in-window occurrence. The sequence is strictly
// increasing; ok is false once the candidate passes the window end.
func (e *Expander) Next() (Occurrence, bool) {
	for !e.done {
		if e.candidate.After(e.windowEnd) {
			e.done = true
			break
		}

		civil := nudgeMidnight(e.clock.ToCivil(e.candidate))
		inWindow := !civil.Before(e.windowStart) && !civil.After(e.windowEnd)

		occ := Occurrence{Instant: e.candidate, Civil: civil}
		e.advance()

		if inWindow {
			return occ, true
		}
	}
	return Occurrence{}, false
}

func (e *Expander) advance() {
	switch e.recurrence {
	case models.RecurrenceDaily:
		e.candidate = e.candidate.Add(24 * time.Hour)
	case models.RecurrenceWeekly:
		e.candidate = e.candidate.Add(7 * 24 * time.Hour)
	case models.RecurrenceMonthly:
		e.candidate = nextMonth(e.candidate)
	default:
		// None: the anchor is the only occurrence.
		e.done = true
	}
}

// Expand collects every in-window occurrence into a slice.
func Expand(clock *Clock, activity models.Activity, windowStart, windowEnd time.Time) []Occurrence {
	var occurrences []Occurrence
	exp := NewExpander(clock, activity, windowStart, windowEnd)
	for {
		occ, ok := exp.Next()
		if !ok {
			break
		}
		occurrences = append(occurrences, occ)
	}
	return occurrences
}

// nudgeMidnight moves an exact-midnight civil time to 00:00:01 so activities
// anchored at local midnight are not excluded by an inclusive window start
// that falls on the same midnight.
func nudgeMidnight(civil time.Time) time.Time {
	if civil.Hour() == 0 && civil.Minute() == 0 && civil.Second() == 0 {
		return civil.Add(time.Second)
	}
	return civil
}

// nextMonth advances a UTC instant to the same day-of-month in the following
// month. When that day does not exist (e.g. Jan 31 -> February), it falls
// back to advancing four weeks instead of erroring.
func nextMonth(t time.Time) time.Time {
	u := t.UTC()
	year, month, day := u.Date()
	if month == time.December {
		year++
		month = time.January
	} else {
		month++
	}

	advanced := time.Date(year, month, day, u.Hour(), u.Minute(), u.Second(), u.Nanosecond(), time.UTC)
	if advanced.Day() != day {
		// Normalization rolled into the next month: the target day is invalid.
		return u.Add(4 * 7 * 24 * time.Hour)
	}
	return advanced
}
