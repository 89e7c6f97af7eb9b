package models

import "time"

// MaintenanceStatus tracks the lifecycle of a maintenance ticket.
type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "Open"
	MaintenanceInProgress MaintenanceStatus = "In Progress"
	MaintenanceCompleted  MaintenanceStatus = "Completed"
)

// MaintenanceRequest is a resident-filed maintenance ticket.
type MaintenanceRequest struct {
	ID          string            `db:"id" json:"id"`
	ResidentID  string            `db:"resident_id" json:"resident_id"`
	Title       string            `db:"title" json:"title"`
	Description string            `db:"description" json:"description"`
	RoomNumber  string            `db:"room_number" json:"room_number"`
	Status      MaintenanceStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}
