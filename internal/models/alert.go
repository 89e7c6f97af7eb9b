package models

import "time"

// Alert is a community-wide notice shown on resident dashboards.
type Alert struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Severity  string    `db:"severity" json:"severity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WellnessReminder is a scheduled health reminder for a resident.
type WellnessReminder struct {
	ID         string    `db:"id" json:"id"`
	ResidentID string    `db:"resident_id" json:"resident_id"`
	Title      string    `db:"title" json:"title"`
	Notes      string    `db:"notes" json:"notes,omitempty"`
	RemindAt   time.Time `db:"remind_at" json:"remind_at"`
	Completed  bool      `db:"completed" json:"completed"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
