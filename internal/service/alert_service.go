package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/schedule"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type alertRepository interface {
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	CreateAlert(ctx context.Context, alert *models.Alert) error
	DeleteAlert(ctx context.Context, id string) error
	ListReminders(ctx context.Context, residentID string) ([]models.WellnessReminder, error)
	FindReminder(ctx context.Context, id string) (*models.WellnessReminder, error)
	CreateReminder(ctx context.Context, reminder *models.WellnessReminder) error
	CompleteReminder(ctx context.Context, id string) error
	DeleteReminder(ctx context.Context, id string) error
}

// CreateAlertRequest represents payload for publishing a community alert.
type CreateAlertRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message" validate:"required"`
	Severity string `json:"severity" validate:"required,oneof=info warning critical"`
}

// CreateReminderRequest represents payload for scheduling a wellness reminder.
type CreateReminderRequest struct {
	ResidentID string `json:"resident_id" validate:"required"`
	Title      string `json:"title" validate:"required,max=200"`
	Notes      string `json:"notes"`
	RemindAt   string `json:"remind_at" validate:"required"`
}

// AlertService manages community alerts and resident wellness reminders.
type AlertService struct {
	repo      alertRepository
	clock     *schedule.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAlertService constructs an AlertService.
func NewAlertService(repo alertRepository, clock *schedule.Clock, validate *validator.Validate, logger *zap.Logger) *AlertService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{repo: repo, clock: clock, validator: validate, logger: logger}
}

// ListAlerts returns every alert, newest first.
func (s *AlertService) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	alerts, err := s.repo.ListAlerts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alerts")
	}
	return alerts, nil
}

// CreateAlert publishes a community alert. Staff only.
func (s *AlertService) CreateAlert(ctx context.Context, req CreateAlertRequest) (*models.Alert, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid alert payload")
	}
	alert := &models.Alert{Title: req.Title, Message: req.Message, Severity: req.Severity}
	if err := s.repo.CreateAlert(ctx, alert); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create alert")
	}
	return alert, nil
}

// DeleteAlert removes an alert. Staff only.
func (s *AlertService) DeleteAlert(ctx context.Context, id string) error {
	if err := s.repo.DeleteAlert(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete alert")
	}
	return nil
}

// ListReminders returns wellness reminders. Staff may query any resident;
// residents only themselves.
func (s *AlertService) ListReminders(ctx context.Context, claims *models.JWTClaims, residentID string) ([]models.WellnessReminder, error) {
	if residentID == "" || !claims.IsStaff() {
		residentID = claims.UserID
	}
	reminders, err := s.repo.ListReminders(ctx, residentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list wellness reminders")
	}
	return reminders, nil
}

// CreateReminder schedules a wellness reminder. Staff only.
func (s *AlertService) CreateReminder(ctx context.Context, req CreateReminderRequest) (*models.WellnessReminder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reminder payload")
	}
	remindAt, err := s.clock.ParseDateTime(req.RemindAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid remind_at")
	}

	reminder := &models.WellnessReminder{
		ResidentID: req.ResidentID,
		Title:      req.Title,
		Notes:      req.Notes,
		RemindAt:   remindAt,
	}
	if err := s.repo.CreateReminder(ctx, reminder); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create wellness reminder")
	}
	return reminder, nil
}

// CompleteReminder marks a reminder done. Residents may only complete their
// own reminders.
func (s *AlertService) CompleteReminder(ctx context.Context, claims *models.JWTClaims, id string) error {
	reminder, err := s.repo.FindReminder(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "wellness reminder not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load wellness reminder")
	}
	if !claims.IsStaff() && reminder.ResidentID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not authorized to complete this reminder")
	}
	if err := s.repo.CompleteReminder(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete wellness reminder")
	}
	return nil
}

// DeleteReminder removes a reminder. Staff only.
func (s *AlertService) DeleteReminder(ctx context.Context, id string) error {
	if err := s.repo.DeleteReminder(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete wellness reminder")
	}
	return nil
}
