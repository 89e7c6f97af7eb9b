package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Verti90/commun-api/internal/models"
)

// BillingRepository persists billing statements.
type BillingRepository struct {
	db *sqlx.DB
}

// NewBillingRepository creates a new billing repository.
func NewBillingRepository(db *sqlx.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

const billingColumns = `id, resident_id, period, amount_cents, description, due_date, paid, created_at`

// ListForResident returns a resident's statements, newest period first.
func (r *BillingRepository) ListForResident(ctx context.Context, residentID string) ([]models.BillingStatement, error) {
	var statements []models.BillingStatement
	const query = `SELECT ` + billingColumns + ` FROM billing_statements WHERE resident_id = $1 ORDER BY due_date DESC`
	if err := r.db.SelectContext(ctx, &statements, query, residentID); err != nil {
		return nil, fmt.Errorf("list billing statements: %w", err)
	}
	return statements, nil
}

// Create stores a new statement.
func (r *BillingRepository) Create(ctx context.Context, statement *models.BillingStatement) error {
	if statement.ID == "" {
		statement.ID = uuid.NewString()
	}
	statement.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO billing_statements (id, resident_id, period, amount_cents, description, due_date, paid, created_at) VALUES (:id, :resident_id, :period, :amount_cents, :description, :due_date, :paid, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, statement); err != nil {
		return fmt.Errorf("create billing statement: %w", err)
	}
	return nil
}

// MarkPaid flags a statement as settled.
func (r *BillingRepository) MarkPaid(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE billing_statements SET paid = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark billing statement paid: %w", err)
	}
	return nil
}
