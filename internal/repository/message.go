package repository

import (
	"context"

	"storyhub/internal/domain"
)

// MessageRepository appends and reads the per-room chat log.
type MessageRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, msg *domain.Message) error
	// ListByRoom returns the newest messages for a room, oldest first,
	// capped at limit (<=0 means a server-side default).
	ListByRoom(ctx context.Context, room string, limit int) ([]domain.Message, error)
}
