package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyhub/internal/auth"
	"storyhub/internal/hub"
	"storyhub/internal/repository/sqlite"
	"storyhub/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
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

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	codec := auth.NewCodec("test-secret", time.Hour)
	authService := service.NewAuthService(userRepo, codec)
	messageService := service.NewMessageService(messageRepo)
	require.NoError(t, authService.EnsureAdmin(ctx, "root@x", "secret", "Root"))

	chatHub := hub.New(messageService, log)
	go chatHub.Run()
	t.Cleanup(chatHub.Shutdown)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(
		authService,
		service.NewStoryService(storyRepo, favoriteRepo),
		service.NewAnnouncementService(announcementRepo),
		service.NewCheckoutService(storyRepo),
		messageService,
		chatHub,
		log,
	)
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func registerVia(t *testing.T, router *gin.Engine, email string) (token string, userID string) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": email, "password": "password",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}
	decode(t, rec, &resp)
	return resp.Token, resp.User.ID
}

func TestAPI_RegisterLoginMe(t *testing.T) {
	router := newTestRouter(t)

	token, userID := registerVia(t, router, "a@x")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "a@x", "password": "password",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me UserResponse
	decode(t, rec, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "a@x", me.Email)
}

func TestAPI_AuthFailures(t *testing.T) {
	router := newTestRouter(t)
	registerVia(t, router, "a@x")

	t.Run("DuplicateEmail", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
			"email": "a@x", "password": "p",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("MissingEmail", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{"password": "p"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BadPassword", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "a@x", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MeWithoutToken", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MeWithGarbageToken", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/auth/me", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAPI_StoryLifecycle(t *testing.T) {
	router := newTestRouter(t)
	tokenA, _ := registerVia(t, router, "a@x")
	tokenB, _ := registerVia(t, router, "b@x")

	rec := doJSON(t, router, http.MethodPost, "/api/stories", tokenA, gin.H{
		"title": "T", "body": "B", "type": "free",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var story StoryResponse
	decode(t, rec, &story)

	t.Run("AnonymousCreateRejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/stories", "", gin.H{"title": "T", "body": "B"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ListAndGet", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/stories", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var stories []StoryResponse
		decode(t, rec, &stories)
		require.Len(t, stories, 1)

		rec = doJSON(t, router, http.MethodGet, "/api/stories/"+story.ID, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/stories/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("FavoriteToggle", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/stories/"+story.ID+"/favorite", tokenB, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		decode(t, rec, &resp)
		assert.Equal(t, "added", resp["action"])

		rec = doJSON(t, router, http.MethodPost, "/api/stories/"+story.ID+"/favorite", tokenB, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &resp)
		assert.Equal(t, "removed", resp["action"])
	})

	t.Run("DeleteByStrangerForbidden", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/stories/"+story.ID, tokenB, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("DeleteByAuthor", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodDelete, "/api/stories/"+story.ID, tokenA, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/stories/"+story.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAPI_Checkout(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerVia(t, router, "a@x")

	rec := doJSON(t, router, http.MethodPost, "/api/stories", token, gin.H{
		"title": "Paid", "body": "B", "type": "sale", "price": 900,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var paid StoryResponse
	decode(t, rec, &paid)

	rec = doJSON(t, router, http.MethodPost, "/api/stories", token, gin.H{
		"title": "Free", "body": "B",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var free StoryResponse
	decode(t, rec, &free)

	rec = doJSON(t, router, http.MethodPost, "/api/stories/"+paid.ID+"/checkout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var desc DescriptorResponse
	decode(t, rec, &desc)
	assert.Equal(t, int64(900), desc.Amount)

	rec = doJSON(t, router, http.MethodPost, "/api/stories/"+free.ID+"/checkout", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/stories/nope/checkout", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Announcements(t *testing.T) {
	router := newTestRouter(t)
	userToken, _ := registerVia(t, router, "a@x")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@x", "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	decode(t, rec, &login)

	t.Run("NonAdminForbidden", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/announcements", userToken, gin.H{
			"content": "nope",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("AdminPostAndPublicList", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/announcements", login.Token, gin.H{
			"content": "welcome", "pinned": true,
		})
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/api/announcements", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var items []AnnouncementResponse
		decode(t, rec, &items)
		require.Len(t, items, 1)
		assert.True(t, items[0].Pinned)
	})
}

func TestAPI_RoomHistory(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/rooms/public/messages", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []MessageResponse
	decode(t, rec, &msgs)
	assert.Empty(t, msgs)
}
