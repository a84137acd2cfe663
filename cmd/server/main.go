package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storyhub/internal/auth"
	"storyhub/internal/config"
	"storyhub/internal/hub"
	apphttp "storyhub/internal/http"
	"storyhub/internal/repository/sqlite"
	"storyhub/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	storyRepo := sqlite.NewStoryRepository(db)
	favoriteRepo := sqlite.NewFavoriteRepository(db)
	messageRepo := sqlite.NewMessageRepository(db)
	announcementRepo := sqlite.NewAnnouncementRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := storyRepo.Init(ctx); err != nil {
		logger.Fatalf("init story repository: %v", err)
	}
	if err := favoriteRepo.Init(ctx); err != nil {
		logger.Fatalf("init favorite repository: %v", err)
	}
	if err := messageRepo.Init(ctx); err != nil {
		logger.Fatalf("init message repository: %v", err)
	}
	if err := announcementRepo.Init(ctx); err != nil {
		logger.Fatalf("init announcement repository: %v", err)
	}

	codec := auth.NewCodec(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	authService := service.NewAuthService(userRepo, codec)
	storyService := service.NewStoryService(storyRepo, favoriteRepo)
	messageService := service.NewMessageService(messageRepo)
	announcementService := service.NewAnnouncementService(announcementRepo)
	checkoutService := service.NewCheckoutService(storyRepo)

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		logger.Fatalf("seed admin: %v", err)
	}

	chatHub := hub.New(messageService, logger)
	go chatHub.Run()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		authService,
		storyService,
		announcementService,
		checkoutService,
		messageService,
		chatHub,
		logger,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	chatHub.Shutdown()

	logger.Info("bye")
}
