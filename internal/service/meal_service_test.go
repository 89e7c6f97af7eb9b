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
	"github.com/Verti90/commun-api/internal/schedule"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type mockMealRepo struct {
	items map[string]*models.MealSelection
}

func newMockMealRepo() *mockMealRepo {
	return &mockMealRepo{items: make(map[string]*models.MealSelection)}
}

func (m *mockMealRepo) Exists(ctx context.Context, residentID string, date time.Time, mealTime models.MealTime) (bool, error) {
	for _, sel := range m.items {
		if sel.ResidentID == residentID && sel.Date.Equal(date) && sel.MealTime == mealTime {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMealRepo) Create(ctx context.Context, selection *models.MealSelection) error {
	if selection.ID == "" {
		selection.ID = fmt.Sprintf("meal-%d", len(m.items)+1)
	}
	cp := *selection
	m.items[selection.ID] = &cp
	return nil
}

func (m *mockMealRepo) ListForResident(ctx context.Context, residentID string, from time.Time) ([]models.MealSelection, error) {
	var out []models.MealSelection
	for _, sel := range m.items {
		if sel.Date.Before(from) {
			continue
		}
		if residentID != "" && sel.ResidentID != residentID {
			continue
		}
		out = append(out, *sel)
	}
	return out, nil
}

func (m *mockMealRepo) FindByID(ctx context.Context, id string) (*models.MealSelection, error) {
	if sel, ok := m.items[id]; ok {
		cp := *sel
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMealRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func newMealService(t *testing.T, repo *mockMealRepo) *MealService {
	t.Helper()
	clock, err := schedule.NewClock("America/Chicago")
	require.NoError(t, err)
	return NewMealService(repo, clock, nil, nil)
}

func TestMealServiceCreateRejectsDuplicate(t *testing.T) {
	repo := newMockMealRepo()
	svc := newMealService(t, repo)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	req := CreateMealSelectionRequest{
		MealTime: "Lunch",
		Date:     "2024-06-04",
		MainItem: "Soup",
		Drinks:   []string{"Tea", "Water"},
	}
	_, err := svc.Create(context.Background(), "res-1", now, req)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "res-1", now, req)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "already submitted a Lunch selection")

	// Same meal for a different resident is fine.
	_, err = svc.Create(context.Background(), "res-2", now, req)
	assert.NoError(t, err)
}

func TestMealServiceCreateDefaultsDateToToday(t *testing.T) {
	repo := newMockMealRepo()
	svc := newMealService(t, repo)

	// 03:00 UTC on June 4 is still June 3 in Chicago.
	now := time.Date(2024, 6, 4, 3, 0, 0, 0, time.UTC)
	selection, err := svc.Create(context.Background(), "res-1", now, CreateMealSelectionRequest{
		MealTime: "Dinner",
		MainItem: "Pasta",
	})
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	assert.True(t, selection.Date.Equal(time.Date(2024, 6, 3, 0, 0, 0, 0, loc)))
}

func TestMealServiceCreateRejectsUnknownMealTime(t *testing.T) {
	svc := newMealService(t, newMockMealRepo())

	_, err := svc.Create(context.Background(), "res-1", time.Now(), CreateMealSelectionRequest{
		MealTime: "Brunch",
		MainItem: "Eggs",
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestMealServiceUpcomingScopesByRole(t *testing.T) {
	repo := newMockMealRepo()
	svc := newMealService(t, repo)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	for i, resident := range []string{"res-1", "res-2"} {
		_, err := svc.Create(context.Background(), resident, now, CreateMealSelectionRequest{
			MealTime: "Lunch",
			Date:     fmt.Sprintf("2024-06-0%d", i+4),
			MainItem: "Salad",
		})
		require.NoError(t, err)
	}

	mine, err := svc.Upcoming(context.Background(), residentClaims("res-1"), now)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.Upcoming(context.Background(), staffClaims("staff-1"), now)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMealServiceCancelAuthorization(t *testing.T) {
	repo := newMockMealRepo()
	svc := newMealService(t, repo)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	selection, err := svc.Create(context.Background(), "res-1", now, CreateMealSelectionRequest{
		MealTime: "Breakfast",
		Date:     "2024-06-05",
		MainItem: "Oatmeal",
	})
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), residentClaims("res-2"), selection.ID)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	require.NoError(t, svc.Cancel(context.Background(), residentClaims("res-1"), selection.ID))

	err = svc.Cancel(context.Background(), staffClaims("staff-1"), selection.ID)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
