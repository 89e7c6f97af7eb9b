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

type transportationRepository interface {
	List(ctx context.Context, residentID string) ([]models.TransportationRequest, error)
	FindByID(ctx context.Context, id string) (*models.TransportationRequest, error)
	CountActiveBetween(ctx context.Context, start, end time.Time) (int, error)
	Create(ctx context.Context, request *models.TransportationRequest) error
	UpdateStatus(ctx context.Context, id string, status models.TransportationStatus) error
	Delete(ctx context.Context, id string) error
}

// CreateTransportationRequest represents payload for booking a ride. Exactly
// one of pickup_time and appointment_time must be set.
type CreateTransportationRequest struct {
	RequestType     string `json:"request_type" validate:"required,max=100"`
	Destination     string `json:"destination" validate:"required,max=200"`
	PickupTime      string `json:"pickup_time"`
	AppointmentTime string `json:"appointment_time"`
	DoctorName      string `json:"doctor_name" validate:"max=200"`
}

// TransportationService books rides with per-block capacity enforcement.
// Requests are grouped into fixed civil-time blocks; each block admits a
// bounded number of non-cancelled rides.
type TransportationService struct {
	repo          transportationRepository
	clock         *schedule.Clock
	blockHours    int
	blockCapacity int
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewTransportationService constructs a TransportationService.
func NewTransportationService(repo transportationRepository, clock *schedule.Clock, blockHours, blockCapacity int, validate *validator.Validate, logger *zap.Logger) *TransportationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if blockHours <= 0 {
		blockHours = 2
	}
	if blockCapacity <= 0 {
		blockCapacity = 2
	}
	return &TransportationService{
		repo:          repo,
		clock:         clock,
		blockHours:    blockHours,
		blockCapacity: blockCapacity,
		validator:     validate,
		logger:        logger,
	}
}

// List returns ride requests. Staff see every request; residents only theirs.
func (s *TransportationService) List(ctx context.Context, claims *models.JWTClaims) ([]models.TransportationRequest, error) {
	residentID := claims.UserID
	if claims.IsStaff() {
		residentID = ""
	}
	requests, err := s.repo.List(ctx, residentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list transportation requests")
	}
	return requests, nil
}

// Create books a ride after checking the target time block has room.
func (s *TransportationService) Create(ctx context.Context, residentID string, req CreateTransportationRequest) (*models.TransportationRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transportation payload")
	}

	timeStr := req.PickupTime
	if timeStr == "" {
		timeStr = req.AppointmentTime
	}
	if timeStr == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Time is required.")
	}

	requestedAt, err := s.clock.ParseDateTime(timeStr)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid time format.")
	}

	blockStart, blockEnd := s.block(requestedAt)
	count, err := s.repo.CountActiveBetween(ctx, blockStart, blockEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check block capacity")
	}
	if count >= s.blockCapacity {
		message := fmt.Sprintf("Time block %s – %s is full.",
			s.clock.ToCivil(blockStart).Format("03:04 PM"),
			s.clock.ToCivil(blockEnd).Format("03:04 PM"))
		return nil, appErrors.Clone(appErrors.ErrBlockFull, message)
	}

	request := &models.TransportationRequest{
		ResidentID:  residentID,
		RequestType: req.RequestType,
		Destination: req.Destination,
		DoctorName:  req.DoctorName,
		Status:      models.TransportationPending,
	}
	if req.PickupTime != "" {
		request.PickupTime = &requestedAt
	} else {
		request.AppointmentTime = &requestedAt
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create transportation request")
	}
	return request, nil
}

// UpdateStatus moves a ride through its lifecycle. Residents may only cancel
// their own rides; every other transition is staff only.
func (s *TransportationService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, id string, status models.TransportationStatus) (*models.TransportationRequest, error) {
	switch status {
	case models.TransportationPending, models.TransportationApproved, models.TransportationCompleted, models.TransportationCancelled:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}

	request, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !claims.IsStaff() {
		if request.ResidentID != claims.UserID || status != models.TransportationCancelled {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can change ride status")
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update ride status")
	}
	request.Status = status
	return request, nil
}

// Delete removes a ride request. Residents may only delete their own.
func (s *TransportationService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	request, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !claims.IsStaff() && request.ResidentID != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not authorized to delete this request")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete transportation request")
	}
	return nil
}

func (s *TransportationService) get(ctx context.Context, id string) (*models.TransportationRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "transportation request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transportation request")
	}
	return request, nil
}

// block returns the civil-time block containing the instant: the hour is
// floored to a multiple of blockHours and the block spans blockHours from
// there.
func (s *TransportationService) block(instant time.Time) (time.Time, time.Time) {
	civil := s.clock.ToCivil(instant)
	hour := (civil.Hour() / s.blockHours) * s.blockHours
	start := time.Date(civil.Year(), civil.Month(), civil.Day(), hour, 0, 0, 0, s.clock.Location())
	return start.UTC(), start.Add(time.Duration(s.blockHours) * time.Hour).UTC()
}
