package dto

import "github.com/Verti90/commun-api/internal/models"

// OccurrenceView is one expanded activity occurrence as returned by the
// listing endpoint. DateTime is the civil wall-clock time in ISO-8601.
type OccurrenceView struct {
	ActivityID   string            `json:"id"`
	Name         string            `json:"name"`
	DateTime     string            `json:"date_time"`
	Location     string            `json:"location"`
	Recurrence   models.Recurrence `json:"recurrence"`
	Participants []string          `json:"participants"`
	Capacity     int               `json:"capacity"`
}

// SignupRequest addresses one occurrence of an activity.
type SignupRequest struct {
	OccurrenceDate string `json:"occurrence_date"`
}

// SignupResponse acknowledges a roster mutation.
type SignupResponse struct {
	Status string `json:"status"`
}
