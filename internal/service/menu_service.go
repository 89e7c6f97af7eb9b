package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/schedule"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type menuRepository interface {
	FindByID(ctx context.Context, id string) (*models.DailyMenu, error)
	FindByDateAndType(ctx context.Context, date time.Time, mealType models.MealTime) (*models.DailyMenu, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]models.DailyMenu, error)
	Create(ctx context.Context, menu *models.DailyMenu) error
	UpdateItems(ctx context.Context, id string, items []string) error
	Delete(ctx context.Context, id string) error
}

// UpsertMenuRequest represents payload for publishing a daily menu. Posting
// to an existing date and meal merges the new items into it.
type UpsertMenuRequest struct {
	Date     string   `json:"date" validate:"required"`
	MealType string   `json:"meal_type" validate:"required"`
	Items    []string `json:"items" validate:"required"`
}

// RemoveMenuItemRequest targets one item inside an existing menu.
type RemoveMenuItemRequest struct {
	ItemIndex *int `json:"item_index"`
}

// MenuService manages the published daily menus.
type MenuService struct {
	repo      menuRepository
	clock     *schedule.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMenuService constructs a MenuService.
func NewMenuService(repo menuRepository, clock *schedule.Clock, validate *validator.Validate, logger *zap.Logger) *MenuService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{repo: repo, clock: clock, validator: validate, logger: logger}
}

// List returns menus. An explicit date filters to that day; otherwise
// residents see today onward while staff see everything on record.
func (s *MenuService) List(ctx context.Context, claims *models.JWTClaims, now time.Time, date string) ([]models.DailyMenu, error) {
	var start, end time.Time
	switch {
	case date != "":
		parsed, err := s.clock.ParseDate(date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
		}
		start = parsed.UTC()
		end = s.clock.EndOfDay(parsed).UTC()
	case claims.IsStaff():
		start = time.Time{}
		end = now.Add(365 * 24 * time.Hour).UTC()
	default:
		start = s.clock.StartOfDay(now).UTC()
		end = now.Add(365 * 24 * time.Hour).UTC()
	}

	menus, err := s.repo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menus")
	}
	return menus, nil
}

// Upsert publishes a menu. When one already exists for the date and meal, new
// items are merged in without duplicating entries.
func (s *MenuService) Upsert(ctx context.Context, createdBy string, req UpsertMenuRequest) (*models.DailyMenu, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Missing required fields.")
	}
	if !models.ValidMealTime(req.MealType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown meal type")
	}
	mealType := models.MealTime(req.MealType)

	date, err := s.clock.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date")
	}

	existing, err := s.repo.FindByDateAndType(ctx, date.UTC(), mealType)
	if err == nil {
		merged := existing.Items
		for _, item := range req.Items {
			if !contains(merged, item) {
				merged = append(merged, item)
			}
		}
		if err := s.repo.UpdateItems(ctx, existing.ID, merged); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to merge menu items")
		}
		existing.Items = merged
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu")
	}

	menu := &models.DailyMenu{
		MealType:  mealType,
		Date:      date.UTC(),
		Items:     req.Items,
		CreatedBy: createdBy,
	}
	if err := s.repo.Create(ctx, menu); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create menu")
	}
	return menu, nil
}

// Remove deletes a whole menu, or just one item when an index is given. A
// menu whose last item is removed is deleted outright.
func (s *MenuService) Remove(ctx context.Context, id string, itemIndex *int) (deleted bool, err error) {
	menu, err := s.find(ctx, id)
	if err != nil {
		return false, err
	}

	if itemIndex == nil {
		if err := s.repo.Delete(ctx, id); err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete menu")
		}
		return true, nil
	}

	idx := *itemIndex
	if idx < 0 || idx >= len(menu.Items) {
		return false, appErrors.Clone(appErrors.ErrValidation, "Invalid index")
	}

	items := append(append([]string{}, menu.Items[:idx]...), menu.Items[idx+1:]...)
	if len(items) == 0 {
		if err := s.repo.Delete(ctx, id); err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete emptied menu")
		}
		return true, nil
	}

	if err := s.repo.UpdateItems(ctx, id, items); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove menu item")
	}
	return false, nil
}

func (s *MenuService) find(ctx context.Context, id string) (*models.DailyMenu, error) {
	menu, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu")
	}
	return menu, nil
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
