package repository

import (
	"context"

	"storyhub/internal/domain"
)

// StoryRepository exposes persistence operations for Story aggregates.
type StoryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, story *domain.Story) error
	Get(ctx context.Context, id string) (*domain.Story, error)
	// List returns stories newest first. A non-empty query narrows the
	// result to stories whose title, excerpt or body contains it.
	List(ctx context.Context, query string) ([]domain.Story, error)
	Delete(ctx context.Context, id string) error
}

// FavoriteRepository manages the (user, story) favorite relation.
type FavoriteRepository interface {
	Init(ctx context.Context) error
	// Toggle removes the favorite row for (userID, storyID) if present and
	// reports added=false; otherwise it inserts one and reports added=true.
	// Both paths run in a single transaction.
	Toggle(ctx context.Context, userID, storyID string) (added bool, err error)
}
