package models

import (
	"fmt"
	"time"
)

// Recurrence is the closed set of supported repeat rules for activities.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "None"
	RecurrenceDaily   Recurrence = "Daily"
	RecurrenceWeekly  Recurrence = "Weekly"
	RecurrenceMonthly Recurrence = "Monthly"
)

// ParseRecurrence validates a raw recurrence value. Unknown values are a
// configuration error at definition time, never a silent stop during expansion.
func ParseRecurrence(raw string) (Recurrence, error) {
	switch Recurrence(raw) {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return Recurrence(raw), nil
	case "":
		return RecurrenceNone, nil
	default:
		return "", fmt.Errorf("unknown recurrence %q", raw)
	}
}

// Activity is a recurring activity definition. DateTime is the anchor
// instant of the first occurrence, stored in UTC; capacity 0 means unlimited.
type Activity struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	DateTime   time.Time  `db:"date_time" json:"date_time"`
	Location   string     `db:"location" json:"location"`
	Recurrence Recurrence `db:"recurrence" json:"recurrence"`
	Capacity   int        `db:"capacity" json:"capacity"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// ActivityInstance is one materialized occurrence of an activity, identified
// by the (activity_id, occurrence_at) composite key. Participants live in a
// separate join table keyed by the instance id.
type ActivityInstance struct {
	ID           string    `db:"id" json:"id"`
	ActivityID   string    `db:"activity_id" json:"activity_id"`
	OccurrenceAt time.Time `db:"occurrence_at" json:"occurrence_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
