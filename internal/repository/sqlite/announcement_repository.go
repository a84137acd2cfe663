package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storyhub/internal/domain"
	"storyhub/internal/repository"
)

const createAnnouncementsTable = `
CREATE TABLE IF NOT EXISTS announcements (
	id TEXT PRIMARY KEY,
	admin_id TEXT NOT NULL REFERENCES users(id),
	content TEXT NOT NULL,
	pinned INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

type AnnouncementRepository struct {
	db *sql.DB
}

func NewAnnouncementRepository(db *sql.DB) repository.AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

func (r *AnnouncementRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAnnouncementsTable); err != nil {
		return fmt.Errorf("create announcements table: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO announcements (id, admin_id, content, pinned, created_at)
VALUES (?, ?, ?, ?, ?)`,
		a.ID,
		a.AdminID,
		a.Content,
		a.Pinned,
		a.CreatedAt,
	)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) List(ctx context.Context) ([]domain.Announcement, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, admin_id, content, pinned, created_at
FROM announcements
ORDER BY pinned DESC, created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var items []domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.AdminID, &a.Content, &a.Pinned, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return items, nil
}
