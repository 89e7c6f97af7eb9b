package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Verti90/commun-api/internal/dto"
	"github.com/Verti90/commun-api/internal/models"
)

// ErrRosterFull is returned when a signup would exceed the activity capacity.
var ErrRosterFull = errors.New("roster full")

// OccurrenceRepository persists materialized activity occurrences and their
// participant rosters. The (activity_id, occurrence_at) unique constraint is
// the concurrency guard for materialization.
type OccurrenceRepository struct {
	db *sqlx.DB
}

// NewOccurrenceRepository creates a new occurrence repository.
func NewOccurrenceRepository(db *sqlx.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

// GetOrCreate returns the instance for the composite key, creating it with an
// empty roster on first touch. Concurrent callers for the same key observe
// the same row: the insert is a no-op on conflict and the follow-up select
// reads whichever row won.
func (r *OccurrenceRepository) GetOrCreate(ctx context.Context, activityID string, occurrenceAt time.Time) (*models.ActivityInstance, error) {
	const insert = `INSERT INTO activity_instances (id, activity_id, occurrence_at, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (activity_id, occurrence_at) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), activityID, occurrenceAt.UTC(), time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("materialize occurrence: %w", err)
	}

	instance, err := r.Find(ctx, activityID, occurrenceAt)
	if err != nil {
		return nil, fmt.Errorf("fetch materialized occurrence: %w", err)
	}
	return instance, nil
}

// Find loads the instance for the composite key, passing through
// sql.ErrNoRows when it was never materialized.
func (r *OccurrenceRepository) Find(ctx context.Context, activityID string, occurrenceAt time.Time) (*models.ActivityInstance, error) {
	const query = `SELECT id, activity_id, occurrence_at, created_at FROM activity_instances WHERE activity_id = $1 AND occurrence_at = $2`
	var instance models.ActivityInstance
	if err := r.db.GetContext(ctx, &instance, query, activityID, occurrenceAt.UTC()); err != nil {
		return nil, err
	}
	return &instance, nil
}

// Participants returns roster member ids for an instance.
func (r *OccurrenceRepository) Participants(ctx context.Context, instanceID string) ([]string, error) {
	const query = `SELECT resident_id FROM activity_participants WHERE instance_id = $1 ORDER BY created_at ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, instanceID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return ids, nil
}

// CountParticipants returns the roster size for an instance.
func (r *OccurrenceRepository) CountParticipants(ctx context.Context, instanceID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM activity_participants WHERE instance_id = $1`, instanceID); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

// AddParticipant adds a resident to the roster, enforcing capacity inside a
// single transaction. The instance row is locked so the count-then-insert
// pair is atomic relative to concurrent signups; capacity 0 means unlimited.
// Re-adding a resident already below capacity is a no-op success.
func (r *OccurrenceRepository) AddParticipant(ctx context.Context, instanceID, residentID string, capacity int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin signup: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedID string
	if err = tx.GetContext(ctx, &lockedID, `SELECT id FROM activity_instances WHERE id = $1 FOR UPDATE`, instanceID); err != nil {
		return fmt.Errorf("lock occurrence: %w", err)
	}

	if capacity > 0 {
		var count int
		if err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM activity_participants WHERE instance_id = $1`, instanceID); err != nil {
			return fmt.Errorf("count roster: %w", err)
		}
		if count >= capacity {
			err = ErrRosterFull
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO activity_participants (instance_id, resident_id, created_at) VALUES ($1, $2, $3) ON CONFLICT (instance_id, resident_id) DO NOTHING`, instanceID, residentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit signup: %w", err)
	}
	return nil
}

// RemoveParticipant drops a resident from the roster. Removing a resident
// who is not on it is a no-op success.
func (r *OccurrenceRepository) RemoveParticipant(ctx context.Context, instanceID, residentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activity_participants WHERE instance_id = $1 AND resident_id = $2`, instanceID, residentID); err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

// InstanceOnDate pairs an instance with its activity fields for reporting.
type InstanceOnDate struct {
	InstanceID   string    `db:"instance_id"`
	ActivityName string    `db:"activity_name"`
	Location     string    `db:"location"`
	OccurrenceAt time.Time `db:"occurrence_at"`
}

// ListBetween returns materialized occurrences inside [start, end] joined to
// their activity definitions, ordered by occurrence time.
func (r *OccurrenceRepository) ListBetween(ctx context.Context, start, end time.Time) ([]InstanceOnDate, error) {
	const query = `
SELECT
	i.id AS instance_id,
	a.name AS activity_name,
	a.location AS location,
	i.occurrence_at AS occurrence_at
FROM activity_instances i
JOIN activities a ON a.id = i.activity_id
WHERE i.occurrence_at BETWEEN $1 AND $2
ORDER BY i.occurrence_at ASC`
	var items []InstanceOnDate
	if err := r.db.SelectContext(ctx, &items, query, start.UTC(), end.UTC()); err != nil {
		return nil, fmt.Errorf("list occurrences between: %w", err)
	}
	return items, nil
}

// ParticipantsDetailed resolves roster members to display name and room
// number for staff reports.
func (r *OccurrenceRepository) ParticipantsDetailed(ctx context.Context, instanceID string) ([]dto.ParticipantInfo, error) {
	const query = `
SELECT
	TRIM(u.first_name || ' ' || u.last_name) AS name,
	COALESCE(pr.room_number, 'N/A') AS room_number
FROM activity_participants p
JOIN users u ON u.id = p.resident_id
LEFT JOIN user_profiles pr ON pr.user_id = u.id
WHERE p.instance_id = $1
ORDER BY p.created_at ASC`
	var participants []dto.ParticipantInfo
	if err := r.db.SelectContext(ctx, &participants, query, instanceID); err != nil {
		return nil, fmt.Errorf("list participant details: %w", err)
	}
	return participants, nil
}
