package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Verti90/commun-api/internal/models"
)

// MaintenanceRepository persists maintenance tickets.
type MaintenanceRepository struct {
	db *sqlx.DB
}

// NewMaintenanceRepository creates a new maintenance repository.
func NewMaintenanceRepository(db *sqlx.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

const maintenanceColumns = `id, resident_id, title, description, room_number, status, created_at, updated_at`

// List returns tickets, optionally filtered to one resident, newest first.
func (r *MaintenanceRepository) List(ctx context.Context, residentID string) ([]models.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_requests`
	args := []interface{}{}
	if residentID != "" {
		query += ` WHERE resident_id = $1`
		args = append(args, residentID)
	}
	query += ` ORDER BY created_at DESC`

	var requests []models.MaintenanceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list maintenance requests: %w", err)
	}
	return requests, nil
}

// FindByID loads one ticket, passing through sql.ErrNoRows when absent.
func (r *MaintenanceRepository) FindByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	if err := r.db.GetContext(ctx, &request, `SELECT `+maintenanceColumns+` FROM maintenance_requests WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create stores a new ticket.
func (r *MaintenanceRepository) Create(ctx context.Context, request *models.MaintenanceRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	request.CreatedAt = now
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.MaintenanceOpen
	}

	const query = `INSERT INTO maintenance_requests (id, resident_id, title, description, room_number, status, created_at, updated_at) VALUES (:id, :resident_id, :title, :description, :room_number, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create maintenance request: %w", err)
	}
	return nil
}

// UpdateStatus moves a ticket through its lifecycle.
func (r *MaintenanceRepository) UpdateStatus(ctx context.Context, id string, status models.MaintenanceStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE maintenance_requests SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update maintenance status: %w", err)
	}
	return nil
}

// Delete removes a ticket.
func (r *MaintenanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM maintenance_requests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete maintenance request: %w", err)
	}
	return nil
}
