package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"storyhub/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).Init(ctx))
	require.NoError(t, NewStoryRepository(db).Init(ctx))
	require.NoError(t, NewFavoriteRepository(db).Init(ctx))
	require.NoError(t, NewMessageRepository(db).Init(ctx))
	require.NoError(t, NewAnnouncementRepository(db).Init(ctx))

	return db
}

func seedUser(t *testing.T, db *sql.DB, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "x",
		Role:         domain.RoleUser,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func favoriteExists(t *testing.T, db *sql.DB, userID, storyID string) bool {
	t.Helper()

	var one int
	err := db.QueryRow(`SELECT 1 FROM favorites WHERE user_id = ? AND story_id = ?`, userID, storyID).Scan(&one)
	if err == sql.ErrNoRows {
		return false
	}
	require.NoError(t, err)
	return true
}

func seedStory(t *testing.T, db *sql.DB, userID, title string, createdAt time.Time) *domain.Story {
	t.Helper()

	story := &domain.Story{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Body:      "body of " + title,
		Tags:      []string{},
		Type:      domain.StoryTypeFree,
		CreatedAt: createdAt,
	}
	require.NoError(t, NewStoryRepository(db).Create(context.Background(), story))
	return story
}
