package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Verti90/commun-api/internal/models"
)

// ProfileRepository persists resident profiles created lazily on first read.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, room_number, default_allergies, default_guest_name, default_guest_meal, created_at, updated_at`

// GetOrCreate returns the profile for a user, creating an empty one when the
// user has none yet. The unique user_id constraint keeps concurrent first
// touches down to a single row.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := r.findByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	now := time.Now().UTC()
	const insert = `INSERT INTO user_profiles (id, user_id, room_number, default_allergies, default_guest_name, default_guest_meal, created_at, updated_at) VALUES ($1, $2, '', '', '', '', $3, $3) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), userID, now); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	profile, err = r.findByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch created profile: %w", err)
	}
	return profile, nil
}

// Update persists profile preference changes.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE user_profiles SET room_number = :room_number, default_allergies = :default_allergies, default_guest_name = :default_guest_name, default_guest_meal = :default_guest_meal, updated_at = :updated_at WHERE user_id = :user_id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) findByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}
