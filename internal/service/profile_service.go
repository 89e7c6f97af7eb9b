package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/models"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type profileRepository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error)
	Update(ctx context.Context, profile *models.UserProfile) error
}

type profileUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

// UpdateProfileRequest represents payload for profile preference changes.
type UpdateProfileRequest struct {
	RoomNumber       string   `json:"room_number" validate:"max=50"`
	DefaultAllergies []string `json:"default_allergies"`
	DefaultGuestName string   `json:"default_guest_name" validate:"max=200"`
	DefaultGuestMeal string   `json:"default_guest_meal" validate:"max=200"`
}

// ProfileView combines account and preference data for the profile endpoint.
type ProfileView struct {
	models.UserInfo
	RoomNumber       string   `json:"room_number"`
	DefaultAllergies []string `json:"default_allergies"`
	DefaultGuestName string   `json:"default_guest_name"`
	DefaultGuestMeal string   `json:"default_guest_meal"`
}

// ProfileService reads and updates resident profiles. Profiles are created on
// first access so every authenticated user always has one.
type ProfileService struct {
	profiles  profileRepository
	users     profileUserRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(profiles profileRepository, users profileUserRepository, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, users: users, validator: validate, logger: logger}
}

// Get returns the combined account and profile view for a user.
func (s *ProfileService) Get(ctx context.Context, userID string) (*ProfileView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	return &ProfileView{
		UserInfo:         userInfo(user),
		RoomNumber:       profile.RoomNumber,
		DefaultAllergies: profile.AllergyList(),
		DefaultGuestName: profile.DefaultGuestName,
		DefaultGuestMeal: profile.DefaultGuestMeal,
	}, nil
}

// ListResidents returns the resident directory with room numbers.
func (s *ProfileService) ListResidents(ctx context.Context) ([]ProfileView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	views := make([]ProfileView, 0, len(users))
	for i := range users {
		user := &users[i]
		if user.Role != models.RoleResident {
			continue
		}
		profile, err := s.profiles.GetOrCreate(ctx, user.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		views = append(views, ProfileView{
			UserInfo:         userInfo(user),
			RoomNumber:       profile.RoomNumber,
			DefaultAllergies: profile.AllergyList(),
			DefaultGuestName: profile.DefaultGuestName,
			DefaultGuestMeal: profile.DefaultGuestMeal,
		})
	}
	return views, nil
}

// Update stores profile preference changes and returns the fresh view.
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*ProfileView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	profile.RoomNumber = strings.TrimSpace(req.RoomNumber)
	profile.DefaultAllergies = models.JoinList(req.DefaultAllergies)
	profile.DefaultGuestName = strings.TrimSpace(req.DefaultGuestName)
	profile.DefaultGuestMeal = strings.TrimSpace(req.DefaultGuestMeal)

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	return s.Get(ctx, userID)
}
