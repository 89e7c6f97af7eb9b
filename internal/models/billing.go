package models

import "time"

// BillingStatement is a monthly statement issued to a resident.
type BillingStatement struct {
	ID          string    `db:"id" json:"id"`
	ResidentID  string    `db:"resident_id" json:"resident_id"`
	Period      string    `db:"period" json:"period"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	Description string    `db:"description" json:"description"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	Paid        bool      `db:"paid" json:"paid"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
