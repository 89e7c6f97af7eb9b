package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// DailyMenu lists the offered items for one meal on one date. Items are kept
// as "<Category> Option <X>: <Value>" strings, mirroring what the kitchen
// staff enters through the management screens.
type DailyMenu struct {
	ID        string         `db:"id" json:"id"`
	MealType  MealTime       `db:"meal_type" json:"meal_type"`
	Date      time.Time      `db:"date" json:"date"`
	Items     pq.StringArray `db:"items" json:"items"`
	CreatedBy string         `db:"created_by" json:"created_by"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// CategorizedItems groups menu items by category and option letter, e.g.
// "Main Course Option A: Eggs" -> {"Main Course": {"A": "Eggs"}}.
func (m *DailyMenu) CategorizedItems() map[string]map[string]string {
	result := make(map[string]map[string]string)
	for _, item := range m.Items {
		header, value, found := strings.Cut(item, ":")
		if !found {
			continue
		}
		header = strings.TrimSpace(header)
		value = strings.TrimSpace(value)

		idx := strings.LastIndex(header, " Option ")
		if idx < 0 {
			continue
		}
		category := strings.TrimSpace(header[:idx])
		option := strings.TrimSpace(header[idx+len(" Option "):])

		if result[category] == nil {
			result[category] = make(map[string]string)
		}
		result[category][option] = value
	}
	return result
}
