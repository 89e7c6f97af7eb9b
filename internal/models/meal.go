package models

import (
	"strings"
	"time"
)

// MealTime enumerates the served meals.
type MealTime string

const (
	MealBreakfast MealTime = "Breakfast"
	MealLunch     MealTime = "Lunch"
	MealDinner    MealTime = "Dinner"
)

// ValidMealTime reports whether the value is a known meal time.
func ValidMealTime(raw string) bool {
	switch MealTime(raw) {
	case MealBreakfast, MealLunch, MealDinner:
		return true
	}
	return false
}

// MealSelection is one resident's choice for a meal on a date. Drinks and
// allergies are stored comma separated and exposed as lists.
type MealSelection struct {
	ID          string    `db:"id" json:"id"`
	ResidentID  string    `db:"resident_id" json:"resident_id"`
	MealTime    MealTime  `db:"meal_time" json:"meal_time"`
	Date        time.Time `db:"date" json:"date"`
	MainItem    string    `db:"main_item" json:"main_item"`
	Protein     string    `db:"protein" json:"protein"`
	Drinks      string    `db:"drinks" json:"-"`
	RoomService bool      `db:"room_service" json:"room_service"`
	GuestName   string    `db:"guest_name" json:"guest_name,omitempty"`
	GuestMeal   string    `db:"guest_meal" json:"guest_meal,omitempty"`
	Allergies   string    `db:"allergies" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DrinkList splits the stored drinks column.
func (m *MealSelection) DrinkList() []string {
	return splitList(m.Drinks)
}

// AllergyList splits the stored allergies column.
func (m *MealSelection) AllergyList() []string {
	return splitList(m.Allergies)
}

func splitList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}

// JoinList serialises a list back to the comma separated column format.
func JoinList(items []string) string {
	return strings.Join(items, ",")
}
