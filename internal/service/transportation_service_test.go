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

type mockTransportationRepo struct {
	items map[string]*models.TransportationRequest
}

func newMockTransportationRepo() *mockTransportationRepo {
	return &mockTransportationRepo{items: make(map[string]*models.TransportationRequest)}
}

func (m *mockTransportationRepo) List(ctx context.Context, residentID string) ([]models.TransportationRequest, error) {
	var out []models.TransportationRequest
	for _, r := range m.items {
		if residentID == "" || r.ResidentID == residentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockTransportationRepo) FindByID(ctx context.Context, id string) (*models.TransportationRequest, error) {
	if r, ok := m.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTransportationRepo) CountActiveBetween(ctx context.Context, start, end time.Time) (int, error) {
	count := 0
	for _, r := range m.items {
		if r.Status == models.TransportationCancelled {
			continue
		}
		at := r.RequestedTime()
		if at == nil {
			continue
		}
		if !at.Before(start) && at.Before(end) {
			count++
		}
	}
	return count, nil
}

func (m *mockTransportationRepo) Create(ctx context.Context, request *models.TransportationRequest) error {
	if request.ID == "" {
		request.ID = fmt.Sprintf("ride-%d", len(m.items)+1)
	}
	cp := *request
	m.items[request.ID] = &cp
	return nil
}

func (m *mockTransportationRepo) UpdateStatus(ctx context.Context, id string, status models.TransportationStatus) error {
	if r, ok := m.items[id]; ok {
		r.Status = status
	}
	return nil
}

func (m *mockTransportationRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func newTransportationService(t *testing.T, repo *mockTransportationRepo) *TransportationService {
	t.Helper()
	clock, err := schedule.NewClock("America/Chicago")
	require.NoError(t, err)
	return NewTransportationService(repo, clock, 2, 2, nil, nil)
}

func residentClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleResident}
}

func staffClaims(userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: models.RoleStaff}
}

func TestTransportationServiceCreateBooksRide(t *testing.T) {
	repo := newMockTransportationRepo()
	svc := newTransportationService(t, repo)

	ride, err := svc.Create(context.Background(), "res-1", CreateTransportationRequest{
		RequestType: "Medical",
		Destination: "Clinic",
		PickupTime:  "2024-06-03T09:30:00",
		DoctorName:  "Dr. Lee",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TransportationPending, ride.Status)
	require.NotNil(t, ride.PickupTime)
	assert.Nil(t, ride.AppointmentTime)
}

func TestTransportationServiceCreateBlocksFullBlock(t *testing.T) {
	repo := newMockTransportationRepo()
	svc := newTransportationService(t, repo)

	// Two rides in the 08:00-10:00 civil block fill it.
	for i, ts := range []string{"2024-06-03T08:15:00", "2024-06-03T09:45:00"} {
		_, err := svc.Create(context.Background(), fmt.Sprintf("res-%d", i+1), CreateTransportationRequest{
			RequestType: "Shopping",
			Destination: "Market",
			PickupTime:  ts,
		})
		require.NoError(t, err)
	}

	_, err := svc.Create(context.Background(), "res-3", CreateTransportationRequest{
		RequestType: "Shopping",
		Destination: "Market",
		PickupTime:  "2024-06-03T08:30:00",
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrBlockFull.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "is full")
}

func TestTransportationServiceCancelledRidesFreeTheBlock(t *testing.T) {
	repo := newMockTransportationRepo()
	svc := newTransportationService(t, repo)

	first, err := svc.Create(context.Background(), "res-1", CreateTransportationRequest{
		RequestType: "Medical",
		Destination: "Clinic",
		PickupTime:  "2024-06-03T08:15:00",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "res-2", CreateTransportationRequest{
		RequestType: "Medical",
		Destination: "Clinic",
		PickupTime:  "2024-06-03T09:00:00",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), residentClaims("res-1"), first.ID, models.TransportationCancelled)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "res-3", CreateTransportationRequest{
		RequestType: "Medical",
		Destination: "Clinic",
		PickupTime:  "2024-06-03T08:30:00",
	})
	assert.NoError(t, err)
}

func TestTransportationServiceAdjacentBlockIsIndependent(t *testing.T) {
	repo := newMockTransportationRepo()
	svc := newTransportationService(t, repo)

	for i, ts := range []string{"2024-06-03T08:15:00", "2024-06-03T09:45:00"} {
		_, err := svc.Create(context.Background(), fmt.Sprintf("res-%d", i+1), CreateTransportationRequest{
			RequestType: "Shopping",
			Destination: "Market",
			PickupTime:  ts,
		})
		require.NoError(t, err)
	}

	// 10:00 starts the next block.
	_, err := svc.Create(context.Background(), "res-3", CreateTransportationRequest{
		RequestType: "Shopping",
		Destination: "Market",
		PickupTime:  "2024-06-03T10:00:00",
	})
	assert.NoError(t, err)
}

func TestTransportationServiceCreateRequiresTime(t *testing.T) {
	svc := newTransportationService(t, newMockTransportationRepo())

	_, err := svc.Create(context.Background(), "res-1", CreateTransportationRequest{
		RequestType: "Medical",
		Destination: "Clinic",
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Time is required.", appErr.Message)
}

func TestTransportationServiceResidentCanOnlyCancel(t *testing.T) {
	repo := newMockTransportationRepo()
	svc := newTransportationService(t, repo)

	ride, err := svc.Create(context.Background(), "res-1", CreateTransportationRequest{
		RequestType: "Medical",
		Destination: "Clinic",
		PickupTime:  "2024-06-03T09:30:00",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), residentClaims("res-1"), ride.ID, models.TransportationApproved)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	_, err = svc.UpdateStatus(context.Background(), staffClaims("staff-1"), ride.ID, models.TransportationApproved)
	assert.NoError(t, err)
}

func TestTransportationServiceListScopesByRole(t *testing.T) {
	repo := newMockTransportationRepo()
	svc := newTransportationService(t, repo)

	for i, resident := range []string{"res-1", "res-2"} {
		_, err := svc.Create(context.Background(), resident, CreateTransportationRequest{
			RequestType: "Shopping",
			Destination: "Market",
			PickupTime:  fmt.Sprintf("2024-06-0%dT08:15:00", i+3),
		})
		require.NoError(t, err)
	}

	mine, err := svc.List(context.Background(), residentClaims("res-1"))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(context.Background(), staffClaims("staff-1"))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
