package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Verti90/commun-api/internal/models"
	"github.com/Verti90/commun-api/internal/repository"
	"github.com/Verti90/commun-api/internal/schedule"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type mockActivityRepo struct {
	items   map[string]*models.Activity
	listErr error
}

func (m *mockActivityRepo) List(ctx context.Context) ([]models.Activity, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Activity
	for _, a := range m.items {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockActivityRepo) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	if m.items == nil {
		m.items = make(map[string]*models.Activity)
	}
	if activity.ID == "" {
		activity.ID = fmt.Sprintf("act-%d", len(m.items)+1)
	}
	cp := *activity
	m.items[activity.ID] = &cp
	return nil
}

func (m *mockActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	cp := *activity
	m.items[activity.ID] = &cp
	return nil
}

func (m *mockActivityRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type mockOccurrenceRepo struct {
	instances    map[string]*models.ActivityInstance
	participants map[string][]string
}

func newMockOccurrenceRepo() *mockOccurrenceRepo {
	return &mockOccurrenceRepo{
		instances:    make(map[string]*models.ActivityInstance),
		participants: make(map[string][]string),
	}
}

func occurrenceKey(activityID string, at time.Time) string {
	return activityID + "|" + at.UTC().Format(time.RFC3339Nano)
}

func (m *mockOccurrenceRepo) GetOrCreate(ctx context.Context, activityID string, at time.Time) (*models.ActivityInstance, error) {
	key := occurrenceKey(activityID, at)
	if inst, ok := m.instances[key]; ok {
		return inst, nil
	}
	inst := &models.ActivityInstance{
		ID:           fmt.Sprintf("inst-%d", len(m.instances)+1),
		ActivityID:   activityID,
		OccurrenceAt: at.UTC(),
	}
	m.instances[key] = inst
	return inst, nil
}

func (m *mockOccurrenceRepo) Find(ctx context.Context, activityID string, at time.Time) (*models.ActivityInstance, error) {
	if inst, ok := m.instances[occurrenceKey(activityID, at)]; ok {
		return inst, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOccurrenceRepo) Participants(ctx context.Context, instanceID string) ([]string, error) {
	ids := m.participants[instanceID]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}

func (m *mockOccurrenceRepo) AddParticipant(ctx context.Context, instanceID, residentID string, capacity int) error {
	current := m.participants[instanceID]
	if capacity > 0 && len(current) >= capacity {
		return repository.ErrRosterFull
	}
	for _, id := range current {
		if id == residentID {
			return nil
		}
	}
	m.participants[instanceID] = append(current, residentID)
	return nil
}

func (m *mockOccurrenceRepo) RemoveParticipant(ctx context.Context, instanceID, residentID string) error {
	current := m.participants[instanceID]
	for i, id := range current {
		if id == residentID {
			m.participants[instanceID] = append(current[:i], current[i+1:]...)
			return nil
		}
	}
	return nil
}

type mockCache struct {
	invalidated []string
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	return nil
}

func newActivityService(t *testing.T, activities *mockActivityRepo, occurrences *mockOccurrenceRepo, cache *mockCache) *ActivityService {
	t.Helper()
	clock, err := schedule.NewClock("America/Chicago")
	require.NoError(t, err)
	return NewActivityService(activities, occurrences, cache, clock, 30, time.Minute, nil, nil)
}

func chicagoAnchor(t *testing.T, year int, month time.Month, day, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return time.Date(year, month, day, hour, min, 0, 0, loc).UTC()
}

func TestActivityServiceListOccurrencesExpandsWeekly(t *testing.T) {
	anchor := chicagoAnchor(t, 2024, time.January, 1, 7, 0)
	activities := &mockActivityRepo{items: map[string]*models.Activity{
		"act-1": {ID: "act-1", Name: "Morning Yoga", DateTime: anchor, Location: "Gym", Recurrence: models.RecurrenceWeekly, Capacity: 10},
	}}
	occurrences := newMockOccurrenceRepo()
	svc := newActivityService(t, activities, occurrences, &mockCache{})

	now := chicagoAnchor(t, 2024, time.January, 1, 6, 0)
	views, err := svc.ListOccurrences(context.Background(), now, "2024-01-01", "2024-01-22")
	require.NoError(t, err)
	require.Len(t, views, 4)

	for i, view := range views {
		assert.Equal(t, "act-1", view.ActivityID)
		assert.Equal(t, "Morning Yoga", view.Name)
		expected := chicagoAnchor(t, 2024, time.January, 1+7*i, 7, 0)
		parsed, err := time.Parse(time.RFC3339, view.DateTime)
		require.NoError(t, err)
		assert.True(t, parsed.Equal(expected), "occurrence %d at %s", i, view.DateTime)
	}

	// Every listed occurrence is materialized with an addressable roster.
	assert.Len(t, occurrences.instances, 4)
}

func TestActivityServiceListOccurrencesDefaultWindow(t *testing.T) {
	anchor := chicagoAnchor(t, 2024, time.March, 1, 10, 0)
	activities := &mockActivityRepo{items: map[string]*models.Activity{
		"act-1": {ID: "act-1", Name: "Bingo", DateTime: anchor, Recurrence: models.RecurrenceDaily},
	}}
	svc := newActivityService(t, activities, newMockOccurrenceRepo(), &mockCache{})

	now := chicagoAnchor(t, 2024, time.March, 5, 9, 0)
	views, err := svc.ListOccurrences(context.Background(), now, "", "")
	require.NoError(t, err)

	// Daily activity inside a 30-day window starting at now: occurrences on
	// March 5 (10:00 is after 09:00) through April 3.
	assert.Len(t, views, 30)
}

func TestActivityServiceListOccurrencesRejectsBadDates(t *testing.T) {
	svc := newActivityService(t, &mockActivityRepo{}, newMockOccurrenceRepo(), &mockCache{})

	_, err := svc.ListOccurrences(context.Background(), time.Now(), "01/02/2024", "")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestActivityServiceCreateMaterializesAnchor(t *testing.T) {
	activities := &mockActivityRepo{}
	occurrences := newMockOccurrenceRepo()
	cache := &mockCache{}
	svc := newActivityService(t, activities, occurrences, cache)

	created, err := svc.Create(context.Background(), CreateActivityRequest{
		Name:       "Book Club",
		DateTime:   "2024-05-01T15:00:00",
		Location:   "Library",
		Recurrence: "Monthly",
		Capacity:   8,
	})
	require.NoError(t, err)

	_, err = occurrences.Find(context.Background(), created.ID, created.DateTime)
	require.NoError(t, err, "anchor occurrence should be materialized at creation")
	assert.NotEmpty(t, cache.invalidated)
}

func TestActivityServiceCreateRejectsUnknownRecurrence(t *testing.T) {
	svc := newActivityService(t, &mockActivityRepo{}, newMockOccurrenceRepo(), &mockCache{})

	_, err := svc.Create(context.Background(), CreateActivityRequest{
		Name:       "Mystery",
		DateTime:   "2024-05-01T15:00:00",
		Location:   "Lobby",
		Recurrence: "Fortnightly",
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestActivityServiceSignupEnforcesCapacity(t *testing.T) {
	anchor := chicagoAnchor(t, 2024, time.January, 1, 7, 0)
	activities := &mockActivityRepo{items: map[string]*models.Activity{
		"act-1": {ID: "act-1", Name: "Morning Yoga", DateTime: anchor, Recurrence: models.RecurrenceWeekly, Capacity: 2},
	}}
	occurrences := newMockOccurrenceRepo()
	svc := newActivityService(t, activities, occurrences, &mockCache{})

	occurrence := anchor.Format(time.RFC3339)
	require.NoError(t, svc.Signup(context.Background(), "act-1", "res-1", occurrence))
	require.NoError(t, svc.Signup(context.Background(), "act-1", "res-2", occurrence))

	err := svc.Signup(context.Background(), "act-1", "res-3", occurrence)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, appErr.Code)
	assert.Equal(t, "Activity is full", appErr.Message)
}

func TestActivityServiceSignupIsIdempotent(t *testing.T) {
	anchor := chicagoAnchor(t, 2024, time.January, 1, 7, 0)
	activities := &mockActivityRepo{items: map[string]*models.Activity{
		"act-1": {ID: "act-1", Name: "Morning Yoga", DateTime: anchor, Recurrence: models.RecurrenceWeekly, Capacity: 5},
	}}
	occurrences := newMockOccurrenceRepo()
	svc := newActivityService(t, activities, occurrences, &mockCache{})

	occurrence := anchor.Format(time.RFC3339)
	require.NoError(t, svc.Signup(context.Background(), "act-1", "res-1", occurrence))
	require.NoError(t, svc.Signup(context.Background(), "act-1", "res-1", occurrence))

	inst, err := occurrences.Find(context.Background(), "act-1", anchor)
	require.NoError(t, err)
	participants, err := occurrences.Participants(context.Background(), inst.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)
}

func TestActivityServiceSignupRequiresOccurrenceDate(t *testing.T) {
	svc := newActivityService(t, &mockActivityRepo{}, newMockOccurrenceRepo(), &mockCache{})

	err := svc.Signup(context.Background(), "act-1", "res-1", "")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "occurrence_date is required", appErr.Message)
}

func TestActivityServiceUnregisterUnmaterializedIsNotFound(t *testing.T) {
	anchor := chicagoAnchor(t, 2024, time.January, 1, 7, 0)
	activities := &mockActivityRepo{items: map[string]*models.Activity{
		"act-1": {ID: "act-1", Name: "Morning Yoga", DateTime: anchor, Recurrence: models.RecurrenceWeekly},
	}}
	svc := newActivityService(t, activities, newMockOccurrenceRepo(), &mockCache{})

	err := svc.Unregister(context.Background(), "act-1", "res-1", anchor.Format(time.RFC3339))
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestActivityServiceUnregisterNonMemberIsNoop(t *testing.T) {
	anchor := chicagoAnchor(t, 2024, time.January, 1, 7, 0)
	activities := &mockActivityRepo{items: map[string]*models.Activity{
		"act-1": {ID: "act-1", Name: "Morning Yoga", DateTime: anchor, Recurrence: models.RecurrenceWeekly},
	}}
	occurrences := newMockOccurrenceRepo()
	svc := newActivityService(t, activities, occurrences, &mockCache{})

	_, err := occurrences.GetOrCreate(context.Background(), "act-1", anchor)
	require.NoError(t, err)

	err = svc.Unregister(context.Background(), "act-1", "res-9", anchor.Format(time.RFC3339))
	assert.NoError(t, err)
}

func TestActivityServiceSignupUnknownActivity(t *testing.T) {
	svc := newActivityService(t, &mockActivityRepo{}, newMockOccurrenceRepo(), &mockCache{})

	err := svc.Signup(context.Background(), "missing", "res-1", "2024-01-01T13:00:00Z")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestActivityServiceMutationsInvalidateCache(t *testing.T) {
	anchor := chicagoAnchor(t, 2024, time.January, 1, 7, 0)
	activities := &mockActivityRepo{items: map[string]*models.Activity{
		"act-1": {ID: "act-1", Name: "Morning Yoga", DateTime: anchor, Recurrence: models.RecurrenceWeekly, Capacity: 5},
	}}
	cache := &mockCache{}
	svc := newActivityService(t, activities, newMockOccurrenceRepo(), cache)

	require.NoError(t, svc.Signup(context.Background(), "act-1", "res-1", anchor.Format(time.RFC3339)))
	require.Len(t, cache.invalidated, 1)
	assert.Equal(t, "activities:*", cache.invalidated[0])
}
