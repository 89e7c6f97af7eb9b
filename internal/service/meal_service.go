package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/schedule"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type mealRepository interface {
	Exists(ctx context.Context, residentID string, date time.Time, mealTime models.MealTime) (bool, error)
	Create(ctx context.Context, selection *models.MealSelection) error
	ListForResident(ctx context.Context, residentID string, from time.Time) ([]models.MealSelection, error)
	FindByID(ctx context.Context, id string) (*models.MealSelection, error)
	Delete(ctx context.Context, id string) error
}

// CreateMealSelectionRequest represents payload for one meal choice.
type CreateMealSelectionRequest struct {
	MealTime    string   `json:"meal_time" validate:"required"`
	Date        string   `json:"date"`
	MainItem    string   `json:"main_item" validate:"required,max=200"`
	Protein     string   `json:"protein" validate:"max=200"`
	Drinks      []string `json:"drinks"`
	RoomService bool     `json:"room_service"`
	GuestName   string   `json:"guest_name" validate:"max=200"`
	GuestMeal   string   `json:"guest_meal" validate:"max=200"`
	Allergies   []string `json:"allergies"`
}

// MealService manages resident meal selections. One selection per resident,
// date and meal time; the date defaults to today when omitted.
type MealService struct {
	repo      mealRepository
	clock     *schedule.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMealService constructs a MealService.
func NewMealService(repo mealRepository, clock *schedule.Clock, validate *validator.Validate, logger *zap.Logger) *MealService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MealService{repo: repo, clock: clock, validator: validate, logger: logger}
}

// Create records a meal selection, rejecting duplicates for the same meal on
// the same date.
func (s *MealService) Create(ctx context.Context, residentID string, now time.Time, req CreateMealSelectionRequest) (*models.MealSelection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meal selection payload")
	}
	if !models.ValidMealTime(req.MealTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown meal time")
	}
	mealTime := models.MealTime(req.MealTime)

	date := s.clock.StartOfDay(now).UTC()
	if req.Date != "" {
		parsed, err := s.clock.ParseDate(req.Date)
		if err == nil {
			date = parsed.UTC()
		}
	}

	exists, err := s.repo.Exists(ctx, residentID, date, mealTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing selection")
	}
	if exists {
		message := fmt.Sprintf("You have already submitted a %s selection for %s.", mealTime, s.clock.ToCivil(date).Format("2006-01-02"))
		return nil, appErrors.Clone(appErrors.ErrConflict, message)
	}

	selection := &models.MealSelection{
		ResidentID:  residentID,
		MealTime:    mealTime,
		Date:        date,
		MainItem:    req.MainItem,
		Protein:     req.Protein,
		Drinks:      models.JoinList(req.Drinks),
		RoomService: req.RoomService,
		GuestName:   req.GuestName,
		GuestMeal:   req.GuestMeal,
		Allergies:   models.JoinList(req.Allergies),
	}

	if err := s.repo.Create(ctx, selection); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meal selection")
	}
	return selection, nil
}

// Upcoming returns selections dated today or later. Staff see everyone's;
// residents only their own.
func (s *MealService) Upcoming(ctx context.Context, claims *models.JWTClaims, now time.Time) ([]models.MealSelection, error) {
	residentID := claims.UserID
	if claims.IsStaff() {
		residentID = ""
	}
	selections, err := s.repo.ListForResident(ctx, residentID, s.clock.StartOfDay(now).UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meal selections")
	}
	return selections, nil
}

// Cancel removes a selection. Residents may only cancel their own.
func (s *MealService) Cancel(ctx context.Context, claims *models.JWTClaims, id string) error {
	selection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "meal selection not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meal selection")
	}

	if !claims.IsStaff() && selection.ResidentID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "You are not authorized to delete this meal selection.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete meal selection")
	}
	return nil
}
