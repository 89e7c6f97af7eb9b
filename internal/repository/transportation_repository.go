package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Verti90/commun-api/internal/models"
)

// TransportationRepository persists ride requests.
type TransportationRepository struct {
	db *sqlx.DB
}

// NewTransportationRepository creates a new transportation repository.
func NewTransportationRepository(db *sqlx.DB) *TransportationRepository {
	return &TransportationRepository{db: db}
}

const transportationColumns = `id, resident_id, request_type, destination, pickup_time, appointment_time, doctor_name, status, created_at, updated_at`

// List returns ride requests, optionally filtered to one resident, newest
// requested time first.
func (r *TransportationRepository) List(ctx context.Context, residentID string) ([]models.TransportationRequest, error) {
	query := `SELECT ` + transportationColumns + ` FROM transportation_requests`
	args := []interface{}{}
	if residentID != "" {
		query += ` WHERE resident_id = $1`
		args = append(args, residentID)
	}
	query += ` ORDER BY COALESCE(pickup_time, appointment_time) ASC`

	var requests []models.TransportationRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list transportation requests: %w", err)
	}
	return requests, nil
}

// FindByID loads a ride request, passing through sql.ErrNoRows when absent.
func (r *TransportationRepository) FindByID(ctx context.Context, id string) (*models.TransportationRequest, error) {
	var request models.TransportationRequest
	if err := r.db.GetContext(ctx, &request, `SELECT `+transportationColumns+` FROM transportation_requests WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// CountActiveBetween counts non-cancelled requests whose requested time falls
// inside [start, end). Used for block capacity enforcement.
func (r *TransportationRepository) CountActiveBetween(ctx context.Context, start, end time.Time) (int, error) {
	const query = `
SELECT COUNT(*) FROM transportation_requests
WHERE status <> $1
  AND COALESCE(pickup_time, appointment_time) >= $2
  AND COALESCE(pickup_time, appointment_time) < $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.TransportationCancelled, start.UTC(), end.UTC()); err != nil {
		return 0, fmt.Errorf("count active transportation requests: %w", err)
	}
	return count, nil
}

// Create stores a new ride request.
func (r *TransportationRepository) Create(ctx context.Context, request *models.TransportationRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.TransportationPending
	}

	const query = `INSERT INTO transportation_requests (id, resident_id, request_type, destination, pickup_time, appointment_time, doctor_name, status, created_at, updated_at) VALUES (:id, :resident_id, :request_type, :destination, :pickup_time, :appointment_time, :doctor_name, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create transportation request: %w", err)
	}
	return nil
}

// UpdateStatus moves a ride request through its lifecycle.
func (r *TransportationRepository) UpdateStatus(ctx context.Context, id string, status models.TransportationStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE transportation_requests SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update transportation status: %w", err)
	}
	return nil
}

// Delete removes a ride request.
func (r *TransportationRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transportation_requests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transportation request: %w", err)
	}
	return nil
}
