package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Verti90/commun-api/internal/models"
)

// AlertRepository persists community alerts and wellness reminders.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository creates a new alert repository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// ListAlerts returns alerts newest first.
func (r *AlertRepository) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := r.db.SelectContext(ctx, &alerts, `SELECT id, title, message, severity, created_at FROM alerts ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// CreateAlert stores a new alert.
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	alert.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO alerts (id, title, message, severity, created_at) VALUES (:id, :title, :message, :severity, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// DeleteAlert removes an alert.
func (r *AlertRepository) DeleteAlert(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	return nil
}

const reminderColumns = `id, resident_id, title, notes, remind_at, completed, created_at`

// ListReminders returns a resident's wellness reminders, soonest first.
func (r *AlertRepository) ListReminders(ctx context.Context, residentID string) ([]models.WellnessReminder, error) {
	var reminders []models.WellnessReminder
	const query = `SELECT ` + reminderColumns + ` FROM wellness_reminders WHERE resident_id = $1 ORDER BY remind_at ASC`
	if err := r.db.SelectContext(ctx, &reminders, query, residentID); err != nil {
		return nil, fmt.Errorf("list wellness reminders: %w", err)
	}
	return reminders, nil
}

// FindReminder loads one reminder, passing through sql.ErrNoRows when absent.
func (r *AlertRepository) FindReminder(ctx context.Context, id string) (*models.WellnessReminder, error) {
	var reminder models.WellnessReminder
	if err := r.db.GetContext(ctx, &reminder, `SELECT `+reminderColumns+` FROM wellness_reminders WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &reminder, nil
}

// CreateReminder stores a new wellness reminder.
func (r *AlertRepository) CreateReminder(ctx context.Context, reminder *models.WellnessReminder) error {
	if reminder.ID == "" {
		reminder.ID = uuid.NewString()
	}
	reminder.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO wellness_reminders (id, resident_id, title, notes, remind_at, completed, created_at) VALUES (:id, :resident_id, :title, :notes, :remind_at, :completed, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reminder); err != nil {
		return fmt.Errorf("create wellness reminder: %w", err)
	}
	return nil
}

// CompleteReminder marks a reminder as done.
func (r *AlertRepository) CompleteReminder(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE wellness_reminders SET completed = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("complete wellness reminder: %w", err)
	}
	return nil
}

// DeleteReminder removes a reminder.
func (r *AlertRepository) DeleteReminder(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wellness_reminders WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete wellness reminder: %w", err)
	}
	return nil
}
