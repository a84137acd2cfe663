package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storyhub/internal/repository"
)

const createFavoritesTable = `
CREATE TABLE IF NOT EXISTS favorites (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id),
	story_id TEXT NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	UNIQUE(user_id, story_id)
);
`

type FavoriteRepository struct {
	db *sql.DB
}

func NewFavoriteRepository(db *sql.DB) repository.FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createFavoritesTable); err != nil {
		return fmt.Errorf("create favorites table: %w", err)
	}
	return nil
}

// Toggle runs delete-then-insert inside one transaction. The UNIQUE
// constraint rejects the losing side of any race instead of trusting the
// prior read.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, storyID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle favorite: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
DELETE FROM favorites WHERE user_id = ? AND story_id = ?`,
		userID, storyID,
	)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle favorite rows affected: %w", err)
	}

	if n > 0 {
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("commit toggle favorite: %w", err)
		}
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO favorites (id, user_id, story_id, created_at)
VALUES (?, ?, ?, ?)`,
		uuid.NewString(), userID, storyID, time.Now().UTC(),
	)
	if err != nil {
		if mapped := mapConstraintErr(err); mapped != err {
			return false, mapped
		}
		return false, fmt.Errorf("insert favorite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle favorite: %w", err)
	}
	return true, nil
}
