package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storyhub/internal/auth"
	"storyhub/internal/repository/sqlite"
)

type testEnv struct {
	auth          AuthService
	stories       StoryService
	messages      MessageService
	announcements AnnouncementService
	checkout      CheckoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	storyRepo := sqlite.NewStoryRepository(db)
	favoriteRepo := sqlite.NewFavoriteRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	announcementRepo := sqlite.NewAnnouncementRepository(db)

	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, storyRepo.Init(ctx))
	require.NoError(t, favoriteRepo.Init(ctx))
	require.NoError(t, messageRepo.Init(ctx))
	require.NoError(t, announcementRepo.Init(ctx))

	codec := auth.NewCodec("test-secret", time.Hour)

	return &testEnv{
		auth:          NewAuthService(userRepo, codec),
		stories:       NewStoryService(storyRepo, favoriteRepo),
		messages:      NewMessageService(messageRepo),
		announcements: NewAnnouncementService(announcementRepo),
		checkout:      NewCheckoutService(storyRepo),
	}
}
