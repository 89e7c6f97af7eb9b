package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/models"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type maintenanceRepository interface {
	List(ctx context.Context, residentID string) ([]models.MaintenanceRequest, error)
	FindByID(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	Create(ctx context.Context, request *models.MaintenanceRequest) error
	UpdateStatus(ctx context.Context, id string, status models.MaintenanceStatus) error
	Delete(ctx context.Context, id string) error
}

// CreateMaintenanceRequest represents payload for filing a ticket.
type CreateMaintenanceRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	RoomNumber  string `json:"room_number" validate:"max=50"`
}

// MaintenanceService manages resident maintenance tickets.
type MaintenanceService struct {
	repo      maintenanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMaintenanceService constructs a MaintenanceService.
func NewMaintenanceService(repo maintenanceRepository, validate *validator.Validate, logger *zap.Logger) *MaintenanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{repo: repo, validator: validate, logger: logger}
}

// List returns tickets. Staff see everything; residents only their own.
func (s *MaintenanceService) List(ctx context.Context, claims *models.JWTClaims) ([]models.MaintenanceRequest, error) {
	residentID := claims.UserID
	if claims.IsStaff() {
		residentID = ""
	}
	requests, err := s.repo.List(ctx, residentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list maintenance requests")
	}
	return requests, nil
}

// Create files a new ticket for the resident.
func (s *MaintenanceService) Create(ctx context.Context, residentID string, req CreateMaintenanceRequest) (*models.MaintenanceRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid maintenance payload")
	}

	request := &models.MaintenanceRequest{
		ResidentID:  residentID,
		Title:       req.Title,
		Description: req.Description,
		RoomNumber:  req.RoomNumber,
		Status:      models.MaintenanceOpen,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create maintenance request")
	}
	return request, nil
}

// UpdateStatus moves a ticket through its lifecycle. Staff only.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, id string, status models.MaintenanceStatus) (*models.MaintenanceRequest, error) {
	switch status {
	case models.MaintenanceOpen, models.MaintenanceInProgress, models.MaintenanceCompleted:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "maintenance request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load maintenance request")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update maintenance status")
	}
	request.Status = status
	return request, nil
}

// Delete removes a ticket. Residents may only delete their own.
func (s *MaintenanceService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "maintenance request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load maintenance request")
	}
	if !claims.IsStaff() && request.ResidentID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not authorized to delete this request")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete maintenance request")
	}
	return nil
}
