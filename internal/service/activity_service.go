package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Verti90/commun-api/internal/dto"
	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/repository"
	"github.com/Verti90/commun-api/internal/schedule"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
}

type occurrenceRepository interface {
	GetOrCreate(ctx context.Context, activityID string, occurrenceAt time.Time) (*models.ActivityInstance, error)
	Find(ctx context.Context, activityID string, occurrenceAt time.Time) (*models.ActivityInstance, error)
	Participants(ctx context.Context, instanceID string) ([]string, error)
	AddParticipant(ctx context.Context, instanceID, residentID string, capacity int) error
	RemoveParticipant(ctx context.Context, instanceID, residentID string) error
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateActivityRequest represents payload for defining activities.
type CreateActivityRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	DateTime   string `json:"date_time" validate:"required"`
	Location   string `json:"location" validate:"required,max=200"`
	Recurrence string `json:"recurrence"`
	Capacity   int    `json:"capacity" validate:"gte=0"`
}

// UpdateActivityRequest represents payload for updating activities.
type UpdateActivityRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	DateTime   string `json:"date_time" validate:"required"`
	Location   string `json:"location" validate:"required,max=200"`
	Recurrence string `json:"recurrence"`
	Capacity   int    `json:"capacity" validate:"gte=0"`
}

const activityCachePattern = "activities:*"

// ActivityService orchestrates activity definitions, occurrence expansion and
// roster mutations.
type ActivityService struct {
	activities  activityRepository
	occurrences occurrenceRepository
	cache       listCache
	clock       *schedule.Clock
	windowDays  int
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	prefetch    func(activityID string)
}

// NewActivityService constructs an ActivityService.
func NewActivityService(activities activityRepository, occurrences occurrenceRepository, cache listCache, clock *schedule.Clock, windowDays int, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if windowDays <= 0 {
		windowDays = 30
	}
	return &ActivityService{
		activities:  activities,
		occurrences: occurrences,
		cache:       cache,
		clock:       clock,
		windowDays:  windowDays,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
	}
}

// WithMetrics attaches Prometheus instrumentation. Optional; the service
// works without it.
func (s *ActivityService) WithMetrics(metrics *MetricsService) *ActivityService {
	s.metrics = metrics
	return s
}

// WithPrefetch registers a hook invoked after definition mutations, typically
// backed by a background queue that pre-materializes the default window.
// Optional.
func (s *ActivityService) WithPrefetch(fn func(activityID string)) *ActivityService {
	s.prefetch = fn
	return s
}

// PrefetchOccurrences materializes every occurrence of one activity inside
// the default window so the next listing serves warm rows. Safe to run
// repeatedly and concurrently.
func (s *ActivityService) PrefetchOccurrences(ctx context.Context, activityID string) error {
	activity, err := s.activities.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load activity for prefetch: %w", err)
	}

	windowStart := time.Now().UTC()
	windowEnd := windowStart.Add(time.Duration(s.windowDays) * 24 * time.Hour)
	for _, occ := range schedule.Expand(s.clock, *activity, windowStart, windowEnd) {
		if _, err := s.occurrences.GetOrCreate(ctx, activity.ID, occ.Instant); err != nil {
			return fmt.Errorf("prefetch occurrence: %w", err)
		}
	}
	return nil
}

// ListOccurrences expands every activity definition into its occurrences
// inside the requested window and returns them ordered by civil time. The
// window defaults to [now, now + windowDays]; explicit bounds are civil
// calendar dates, the end date extended to the last moment of its day. Each
// in-window occurrence is materialized so its roster is addressable.
func (s *ActivityService) ListOccurrences(ctx context.Context, now time.Time, startDate, endDate string) ([]dto.OccurrenceView, error) {
	windowStart := now.UTC()
	if startDate != "" {
		parsed, err := s.clock.ParseDate(startDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start_date")
		}
		windowStart = parsed.UTC()
	}

	windowEnd := windowStart.Add(time.Duration(s.windowDays) * 24 * time.Hour)
	if endDate != "" {
		parsed, err := s.clock.ParseDate(endDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end_date")
		}
		windowEnd = s.clock.EndOfDay(parsed).UTC()
	}

	cacheKey := fmt.Sprintf("activities:list:%d:%d", windowStart.Unix(), windowEnd.Unix())
	if s.cache != nil {
		var cached []dto.OccurrenceView
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	activities, err := s.activities.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}

	views := make([]dto.OccurrenceView, 0)
	for _, activity := range activities {
		for _, occ := range schedule.Expand(s.clock, activity, windowStart, windowEnd) {
			instance, err := s.occurrences.GetOrCreate(ctx, activity.ID, occ.Instant)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialize occurrence")
			}
			participants, err := s.occurrences.Participants(ctx, instance.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
			}

			views = append(views, dto.OccurrenceView{
				ActivityID:   activity.ID,
				Name:         activity.Name,
				DateTime:     occ.Civil.Format(time.RFC3339),
				Location:     activity.Location,
				Recurrence:   activity.Recurrence,
				Participants: participants,
				Capacity:     activity.Capacity,
			})
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].DateTime < views[j].DateTime
	})
	s.metrics.RecordOccurrences(len(views))

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, views, s.cacheTTL); err != nil {
			s.logger.Warn("cache occurrence listing", zap.Error(err))
		}
	}

	return views, nil
}

// Get returns an activity definition by id.
func (s *ActivityService) Get(ctx context.Context, id string) (*models.Activity, error) {
	activity, err := s.activities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

// Create defines a new activity and eagerly materializes its anchor
// occurrence so the first roster is addressable immediately.
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	recurrence, err := models.ParseRecurrence(req.Recurrence)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence")
	}

	anchor, err := s.clock.ParseDateTime(req.DateTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date_time")
	}

	activity := &models.Activity{
		Name:       strings.TrimSpace(req.Name),
		DateTime:   anchor,
		Location:   strings.TrimSpace(req.Location),
		Recurrence: recurrence,
		Capacity:   req.Capacity,
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}

	if _, err := s.occurrences.GetOrCreate(ctx, activity.ID, activity.DateTime); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialize anchor occurrence")
	}

	if s.prefetch != nil {
		s.prefetch(activity.ID)
	}
	s.invalidateCache(ctx)
	return activity, nil
}

// Update modifies an activity definition.
func (s *ActivityService) Update(ctx context.Context, id string, req UpdateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	activity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recurrence, err := models.ParseRecurrence(req.Recurrence)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurrence")
	}

	anchor, err := s.clock.ParseDateTime(req.DateTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date_time")
	}

	activity.Name = strings.TrimSpace(req.Name)
	activity.DateTime = anchor
	activity.Location = strings.TrimSpace(req.Location)
	activity.Recurrence = recurrence
	activity.Capacity = req.Capacity

	if err := s.activities.Update(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}

	if s.prefetch != nil {
		s.prefetch(activity.ID)
	}
	s.invalidateCache(ctx)
	return activity, nil
}

// Delete removes an activity definition.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	s.invalidateCache(ctx)
	return nil
}

// Signup adds a resident to the roster of one occurrence, materializing it on
// first touch. Signing up twice is a no-op success; a full roster fails even
// for residents already on it.
func (s *ActivityService) Signup(ctx context.Context, activityID, residentID, occurrenceDate string) error {
	activity, occurrenceAt, err := s.resolveOccurrence(ctx, activityID, occurrenceDate)
	if err != nil {
		return err
	}

	instance, err := s.occurrences.GetOrCreate(ctx, activity.ID, occurrenceAt)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to materialize occurrence")
	}

	if err := s.occurrences.AddParticipant(ctx, instance.ID, residentID, activity.Capacity); err != nil {
		if errors.Is(err, repository.ErrRosterFull) {
			s.metrics.RecordSignup("full")
			return appErrors.ErrCapacityExceeded
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign up")
	}

	s.metrics.RecordSignup("signed_up")
	s.invalidateCache(ctx)
	return nil
}

// Unregister removes a resident from the roster of one occurrence. The
// occurrence must already be materialized; removing a resident who is not on
// the roster succeeds quietly.
func (s *ActivityService) Unregister(ctx context.Context, activityID, residentID, occurrenceDate string) error {
	activity, occurrenceAt, err := s.resolveOccurrence(ctx, activityID, occurrenceDate)
	if err != nil {
		return err
	}

	instance, err := s.occurrences.Find(ctx, activity.ID, occurrenceAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Activity instance not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load occurrence")
	}

	if err := s.occurrences.RemoveParticipant(ctx, instance.ID, residentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unregister")
	}

	s.metrics.RecordSignup("unregistered")
	s.invalidateCache(ctx)
	return nil
}

func (s *ActivityService) resolveOccurrence(ctx context.Context, activityID, occurrenceDate string) (*models.Activity, time.Time, error) {
	if occurrenceDate == "" {
		return nil, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "occurrence_date is required")
	}

	activity, err := s.Get(ctx, activityID)
	if err != nil {
		return nil, time.Time{}, err
	}

	occurrenceAt, err := s.clock.ParseDateTime(occurrenceDate)
	if err != nil {
		return nil, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "Invalid date format")
	}
	return activity, occurrenceAt, nil
}

func (s *ActivityService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, activityCachePattern); err != nil {
		s.logger.Warn("invalidate activity cache", zap.Error(err))
	}
}
