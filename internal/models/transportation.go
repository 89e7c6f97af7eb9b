package models

import "time"

// TransportationStatus tracks the lifecycle of a ride request.
type TransportationStatus string

const (
	TransportationPending   TransportationStatus = "Pending"
	TransportationApproved  TransportationStatus = "Approved"
	TransportationCompleted TransportationStatus = "Completed"
	TransportationCancelled TransportationStatus = "Cancelled"
)

// TransportationRequest is a resident ride booking. Either a pickup time or
// an appointment time is set depending on the request type.
type TransportationRequest struct {
	ID              string               `db:"id" json:"id"`
	ResidentID      string               `db:"resident_id" json:"resident_id"`
	RequestType     string               `db:"request_type" json:"request_type"`
	Destination     string               `db:"destination" json:"destination"`
	PickupTime      *time.Time           `db:"pickup_time" json:"pickup_time,omitempty"`
	AppointmentTime *time.Time           `db:"appointment_time" json:"appointment_time,omitempty"`
	DoctorName      string               `db:"doctor_name" json:"doctor_name,omitempty"`
	Status          TransportationStatus `db:"status" json:"status"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time            `db:"updated_at" json:"updated_at"`
}

// RequestedTime returns whichever of pickup/appointment time is populated.
func (t *TransportationRequest) RequestedTime() *time.Time {
	if t.PickupTime != nil {
		return t.PickupTime
	}
	return t.AppointmentTime
}
