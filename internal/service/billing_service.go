package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/schedule"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type billingRepository interface {
	ListForResident(ctx context.Context, residentID string) ([]models.BillingStatement, error)
	Create(ctx context.Context, statement *models.BillingStatement) error
	MarkPaid(ctx context.Context, id string) error
}

// CreateStatementRequest represents payload for issuing a statement.
type CreateStatementRequest struct {
	ResidentID  string `json:"resident_id" validate:"required"`
	Period      string `json:"period" validate:"required,max=50"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=500"`
	DueDate     string `json:"due_date" validate:"required"`
}

// BillingService manages resident billing statements.
type BillingService struct {
	repo      billingRepository
	clock     *schedule.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBillingService constructs a BillingService.
func NewBillingService(repo billingRepository, clock *schedule.Clock, validate *validator.Validate, logger *zap.Logger) *BillingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{repo: repo, clock: clock, validator: validate, logger: logger}
}

// List returns statements. Staff may query any resident; residents only
// themselves.
func (s *BillingService) List(ctx context.Context, claims *models.JWTClaims, residentID string) ([]models.BillingStatement, error) {
	if residentID == "" || !claims.IsStaff() {
		residentID = claims.UserID
	}
	statements, err := s.repo.ListForResident(ctx, residentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list billing statements")
	}
	return statements, nil
}

// Create issues a new statement. Staff only.
func (s *BillingService) Create(ctx context.Context, req CreateStatementRequest) (*models.BillingStatement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid billing payload")
	}
	dueDate, err := s.clock.ParseDate(req.DueDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid due_date")
	}

	statement := &models.BillingStatement{
		ResidentID:  req.ResidentID,
		Period:      req.Period,
		AmountCents: req.AmountCents,
		Description: req.Description,
		DueDate:     dueDate.UTC(),
	}
	if err := s.repo.Create(ctx, statement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create billing statement")
	}
	return statement, nil
}

// MarkPaid flags a statement as settled. Staff only.
func (s *BillingService) MarkPaid(ctx context.Context, id string) error {
	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark statement paid")
	}
	return nil
}
