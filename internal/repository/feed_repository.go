package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Verti90/commun-api/internal/models"
)

// FeedRepository persists staff announcements.
type FeedRepository struct {
	db *sqlx.DB
}

// NewFeedRepository creates a new feed repository.
func NewFeedRepository(db *sqlx.DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// List returns announcements newest first.
func (r *FeedRepository) List(ctx context.Context) ([]models.Feed, error) {
	var items []models.Feed
	if err := r.db.SelectContext(ctx, &items, `SELECT id, title, content, created_by, created_at FROM feed_items ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list feed items: %w", err)
	}
	return items, nil
}

// Create stores a new announcement.
func (r *FeedRepository) Create(ctx context.Context, item *models.Feed) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO feed_items (id, title, content, created_by, created_at) VALUES (:id, :title, :content, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create feed item: %w", err)
	}
	return nil
}

// Delete removes an announcement.
func (r *FeedRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM feed_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete feed item: %w", err)
	}
	return nil
}
