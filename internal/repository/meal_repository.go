package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Verti90/commun-api/internal/models"
)

// MealRepository persists resident meal selections.
type MealRepository struct {
	db *sqlx.DB
}

// NewMealRepository creates a new meal repository.
func NewMealRepository(db *sqlx.DB) *MealRepository {
	return &MealRepository{db: db}
}

const mealColumns = `id, resident_id, meal_time, date, main_item, protein, drinks, room_service, guest_name, guest_meal, allergies, created_at`

// Exists reports whether the resident already selected this meal on the date.
func (r *MealRepository) Exists(ctx context.Context, residentID string, date time.Time, mealTime models.MealTime) (bool, error) {
	var count int
	const query = `SELECT COUNT(*) FROM meal_selections WHERE resident_id = $1 AND date = $2 AND meal_time = $3`
	if err := r.db.GetContext(ctx, &count, query, residentID, date.UTC(), mealTime); err != nil {
		return false, fmt.Errorf("check meal selection: %w", err)
	}
	return count > 0, nil
}

// Create stores a meal selection.
func (r *MealRepository) Create(ctx context.Context, selection *models.MealSelection) error {
	if selection.ID == "" {
		selection.ID = uuid.NewString()
	}
	selection.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO meal_selections (id, resident_id, meal_time, date, main_item, protein, drinks, room_service, guest_name, guest_meal, allergies, created_at) VALUES (:id, :resident_id, :meal_time, :date, :main_item, :protein, :drinks, :room_service, :guest_name, :guest_meal, :allergies, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, selection); err != nil {
		return fmt.Errorf("create meal selection: %w", err)
	}
	return nil
}

// ListForResident returns selections dated on or after the given day, soonest
// first. An empty resident id returns everyone's selections.
func (r *MealRepository) ListForResident(ctx context.Context, residentID string, from time.Time) ([]models.MealSelection, error) {
	query := `SELECT ` + mealColumns + ` FROM meal_selections WHERE date >= $1`
	args := []interface{}{from.UTC()}
	if residentID != "" {
		query += ` AND resident_id = $2`
		args = append(args, residentID)
	}
	query += ` ORDER BY date ASC, meal_time ASC`

	var selections []models.MealSelection
	if err := r.db.SelectContext(ctx, &selections, query, args...); err != nil {
		return nil, fmt.Errorf("list meal selections: %w", err)
	}
	return selections, nil
}

// FindByID loads one selection, passing through sql.ErrNoRows when absent.
func (r *MealRepository) FindByID(ctx context.Context, id string) (*models.MealSelection, error) {
	var selection models.MealSelection
	if err := r.db.GetContext(ctx, &selection, `SELECT `+mealColumns+` FROM meal_selections WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &selection, nil
}

// Delete removes a selection.
func (r *MealRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meal_selections WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete meal selection: %w", err)
	}
	return nil
}

// SelectionWithResident joins a selection to its resident's name and room for
// the kitchen report.
type SelectionWithResident struct {
	models.MealSelection
	Name       string `db:"name"`
	RoomNumber string `db:"room_number"`
}

// ListOnDate returns every selection on the date joined with resident details,
// ordered by meal time then resident name.
func (r *MealRepository) ListOnDate(ctx context.Context, date time.Time) ([]SelectionWithResident, error) {
	const query = `
SELECT
	m.id, m.resident_id, m.meal_time, m.date, m.main_item, m.protein, m.drinks,
	m.room_service, m.guest_name, m.guest_meal, m.allergies, m.created_at,
	TRIM(u.first_name || ' ' || u.last_name) AS name,
	COALESCE(pr.room_number, 'N/A') AS room_number
FROM meal_selections m
JOIN users u ON u.id = m.resident_id
LEFT JOIN user_profiles pr ON pr.user_id = u.id
WHERE m.date = $1
ORDER BY m.meal_time ASC, name ASC`
	var selections []SelectionWithResident
	if err := r.db.SelectContext(ctx, &selections, query, date.UTC()); err != nil {
		return nil, fmt.Errorf("list meal selections on date: %w", err)
	}
	return selections, nil
}
