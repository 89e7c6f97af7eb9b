package models

import "time"

// UserProfile carries resident preferences created lazily on first access.
// DefaultAllergies is stored comma separated like meal selection columns.
type UserProfile struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	RoomNumber       string    `db:"room_number" json:"room_number"`
	DefaultAllergies string    `db:"default_allergies" json:"-"`
	DefaultGuestName string    `db:"default_guest_name" json:"default_guest_name"`
	DefaultGuestMeal string    `db:"default_guest_meal" json:"default_guest_meal"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// AllergyList splits the stored allergies column.
func (p *UserProfile) AllergyList() []string {
	return splitList(p.DefaultAllergies)
}
