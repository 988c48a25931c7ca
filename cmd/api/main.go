package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/cursova/cursova-api/api/swagger"
	"github.com/cursova/cursova-api/internal/handler"
	"github.com/cursova/cursova-api/internal/repository"
	"github.com/cursova/cursova-api/internal/router"
	"github.com/cursova/cursova-api/internal/service"
	"github.com/cursova/cursova-api/pkg/cache"
	"github.com/cursova/cursova-api/pkg/config"
	"github.com/cursova/cursova-api/pkg/database"
	"github.com/cursova/cursova-api/pkg/logger"
	"github.com/cursova/cursova-api/pkg/mailer"
	"github.com/cursova/cursova-api/pkg/push"
	"github.com/cursova/cursova-api/pkg/token"
)

// @title Cursova API
// @version 1.0.0
// @description Course registration, onboarding and content API
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if cfg.Migrations.Enabled {
		if err := database.Migrate(db, cfg.Migrations.Dir); err != nil {
			sugar.Fatalw("failed to run migrations", "error", err)
		}
		sugar.Infow("migrations applied", "dir", cfg.Migrations.Dir)
	}

	var cacheStore service.CacheStore
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			sugar.Fatalw("failed to connect to redis", "error", err)
		}
		defer client.Close()
		cacheStore = repository.NewRedisCacheRepository(client)
	default:
		cacheStore = repository.NewMemoryCacheRepository()
	}
	sugar.Infow("cache backend selected", "backend", cfg.Cache.Backend)

	registrationRepo := repository.NewRegistrationRepository(db)
	userRepo := repository.NewUserRepository(db)
	identityRepo := repository.NewIdentityRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	subscriberRepo := repository.NewSubscriberRepository(db)
	deviceRepo := repository.NewDeviceTokenRepository(db)

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheStore, metrics, cfg.Cache.CourseTTL, logr)
	signer := token.NewSigner(cfg.Invitations.Secret, cfg.Invitations.TTL)

	identitySvc := service.NewIdentityService(identityRepo, signer, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.CustomTokenExpiry, logr)
	authSvc := service.NewAuthService(identitySvc, userRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration, logr)

	mail := mailer.NewSMTPSender(cfg.SMTP, logr)
	pushSender := push.NewFCMSender(cfg.Push, logr)
	notificationSvc := service.NewNotificationService(cfg.Notifications, mail, pushSender, deviceRepo, metrics, logr)

	registrationSvc := service.NewRegistrationService(registrationRepo, notificationSvc, logr)
	userSvc := service.NewUserService(userRepo, invitationRepo, identitySvc, notificationSvc, signer, cfg.Invitations, logr)
	invitationSvc := service.NewInvitationService(invitationRepo, userRepo, identitySvc, signer, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, cfg.Cache.CourseTTL, logr)
	blogSvc := service.NewBlogService(blogRepo, cacheSvc, cfg.Cache.BlogTTL, logr)
	subscriberSvc := service.NewSubscriberService(subscriberRepo, deviceRepo, logr)

	r := router.New(router.Deps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Metrics: metrics,
		Ready:   db.Ping,
	}, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc, userSvc),
		Registrations: handler.NewRegistrationHandler(registrationSvc),
		Users:         handler.NewUserHandler(userSvc),
		Invitations:   handler.NewInvitationHandler(invitationSvc),
		Courses:       handler.NewCourseHandler(courseSvc),
		Blog:          handler.NewBlogHandler(blogSvc),
		Subscribers:   handler.NewSubscriberHandler(subscriberSvc),
		Metrics:       handler.NewMetricsHandler(metrics),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	sugar.Infow("server starting", "addr", srv.Addr, "env", cfg.Env)

	select {
	case <-ctx.Done():
		sugar.Infow("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
	sugar.Infow("server stopped")
}
