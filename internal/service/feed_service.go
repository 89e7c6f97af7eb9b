package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/models"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type feedRepository interface {
	List(ctx context.Context) ([]models.Feed, error)
	Create(ctx context.Context, item *models.Feed) error
	Delete(ctx context.Context, id string) error
}

// CreateFeedRequest represents payload for posting an announcement.
type CreateFeedRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// FeedService manages staff announcements shown newest first.
type FeedService struct {
	repo      feedRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedService constructs a FeedService.
func NewFeedService(repo feedRepository, validate *validator.Validate, logger *zap.Logger) *FeedService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedService{repo: repo, validator: validate, logger: logger}
}

// List returns every announcement, newest first.
func (s *FeedService) List(ctx context.Context) ([]models.Feed, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feed items")
	}
	return items, nil
}

// Create posts a new announcement. Staff only.
func (s *FeedService) Create(ctx context.Context, createdBy string, req CreateFeedRequest) (*models.Feed, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feed payload")
	}
	item := &models.Feed{Title: req.Title, Content: req.Content, CreatedBy: createdBy}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feed item")
	}
	return item, nil
}

// Delete removes an announcement. Staff only.
func (s *FeedService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete feed item")
	}
	return nil
}
