package repository

import (
	"context"

	"storyhub/internal/domain"
)

// AnnouncementRepository stores admin broadcast notices.
type AnnouncementRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, a *domain.Announcement) error
	// List returns announcements pinned-first, newest first within each group.
	List(ctx context.Context) ([]domain.Announcement, error)
}
