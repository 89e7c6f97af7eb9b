package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Verti90/commun-api/internal/models"
)

// MenuRepository persists daily menus.
type MenuRepository struct {
	db *sqlx.DB
}

// NewMenuRepository creates a new menu repository.
func NewMenuRepository(db *sqlx.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

const menuColumns = `id, meal_type, date, items, created_by, created_at`

// FindByDateAndType loads the menu for one meal on one date, passing through
// sql.ErrNoRows when none exists.
func (r *MenuRepository) FindByDateAndType(ctx context.Context, date time.Time, mealType models.MealTime) (*models.DailyMenu, error) {
	var menu models.DailyMenu
	const query = `SELECT ` + menuColumns + ` FROM daily_menus WHERE date = $1 AND meal_type = $2`
	if err := r.db.GetContext(ctx, &menu, query, date.UTC(), mealType); err != nil {
		return nil, err
	}
	return &menu, nil
}

// FindByID loads one menu, passing through sql.ErrNoRows when absent.
func (r *MenuRepository) FindByID(ctx context.Context, id string) (*models.DailyMenu, error) {
	var menu models.DailyMenu
	if err := r.db.GetContext(ctx, &menu, `SELECT `+menuColumns+` FROM daily_menus WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &menu, nil
}

// ListBetween returns menus dated inside [start, end], earliest first.
func (r *MenuRepository) ListBetween(ctx context.Context, start, end time.Time) ([]models.DailyMenu, error) {
	const query = `SELECT ` + menuColumns + ` FROM daily_menus WHERE date BETWEEN $1 AND $2 ORDER BY date ASC, meal_type ASC`
	var menus []models.DailyMenu
	if err := r.db.SelectContext(ctx, &menus, query, start.UTC(), end.UTC()); err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

// Create stores a new menu.
func (r *MenuRepository) Create(ctx context.Context, menu *models.DailyMenu) error {
	if menu.ID == "" {
		menu.ID = uuid.NewString()
	}
	menu.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO daily_menus (id, meal_type, date, items, created_by, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, menu.ID, menu.MealType, menu.Date.UTC(), pq.Array(menu.Items), menu.CreatedBy, menu.CreatedAt); err != nil {
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

// UpdateItems replaces the item list of an existing menu.
func (r *MenuRepository) UpdateItems(ctx context.Context, id string, items []string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE daily_menus SET items = $1 WHERE id = $2`, pq.Array(items), id); err != nil {
		return fmt.Errorf("update menu items: %w", err)
	}
	return nil
}

// Delete removes a menu.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM daily_menus WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	return nil
}
