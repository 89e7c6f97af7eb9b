package dto

// ParticipantInfo names a roster member for staff reports.
type ParticipantInfo struct {
	Name       string `db:"name" json:"name"`
	RoomNumber string `db:"room_number" json:"room_number"`
}

// ActivityReportEntry is one occurrence on the requested day with its roster.
type ActivityReportEntry struct {
	Name         string            `json:"name"`
	DateTime     string            `json:"date_time"`
	Location     string            `json:"location"`
	Participants []ParticipantInfo `json:"participants"`
}

// MealReportEntry is one meal selection on the requested day.
type MealReportEntry struct {
	MealTime    string   `json:"meal_time"`
	MainItem    string   `json:"main_item"`
	Protein     string   `json:"protein"`
	Drinks      []string `json:"drinks"`
	RoomService bool     `json:"room_service"`
	GuestName   string   `json:"guest_name"`
	GuestMeal   string   `json:"guest_meal"`
	Allergies   []string `json:"allergies"`
	Name        string   `json:"name"`
	RoomNumber  string   `json:"room_number"`
}
