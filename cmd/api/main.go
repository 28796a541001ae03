package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/risingbsm/bsm-api/internal/config"
	"github.com/risingbsm/bsm-api/internal/handler/activity"
	"github.com/risingbsm/bsm-api/internal/handler/appointment"
	"github.com/risingbsm/bsm-api/internal/handler/auth"
	"github.com/risingbsm/bsm-api/internal/handler/catalog"
	"github.com/risingbsm/bsm-api/internal/handler/customer"
	"github.com/risingbsm/bsm-api/internal/handler/dashboard"
	"github.com/risingbsm/bsm-api/internal/handler/health"
	"github.com/risingbsm/bsm-api/internal/handler/notification"
	"github.com/risingbsm/bsm-api/internal/handler/project"
	"github.com/risingbsm/bsm-api/internal/handler/rbac"
	"github.com/risingbsm/bsm-api/internal/handler/request"
	"github.com/risingbsm/bsm-api/internal/handler/user"
	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/repository/postgres"
	"github.com/risingbsm/bsm-api/internal/router"
	activityService "github.com/risingbsm/bsm-api/internal/service/activity"
	appointmentService "github.com/risingbsm/bsm-api/internal/service/appointment"
	authService "github.com/risingbsm/bsm-api/internal/service/auth"
	catalogService "github.com/risingbsm/bsm-api/internal/service/catalog"
	customerService "github.com/risingbsm/bsm-api/internal/service/customer"
	dashboardService "github.com/risingbsm/bsm-api/internal/service/dashboard"
	notificationService "github.com/risingbsm/bsm-api/internal/service/notification"
	projectService "github.com/risingbsm/bsm-api/internal/service/project"
	rbacService "github.com/risingbsm/bsm-api/internal/service/rbac"
	requestService "github.com/risingbsm/bsm-api/internal/service/request"
	userService "github.com/risingbsm/bsm-api/internal/service/user"
	jwtauth "github.com/risingbsm/bsm-api/pkg/auth"
	"github.com/risingbsm/bsm-api/pkg/cache"
	"github.com/risingbsm/bsm-api/pkg/logger"
	"github.com/risingbsm/bsm-api/pkg/metrics"
	"github.com/risingbsm/bsm-api/pkg/security"
	"github.com/risingbsm/bsm-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.New(logger.Config{Level: cfg.Logger.Level, Pretty: cfg.Logger.Pretty})

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt secret is not configured")
	}
	validator.Register()

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// The dashboard works without Redis, just slower.
	var statsCache dashboardService.StatsCache
	if c, err := cache.New(cache.Config{URL: cfg.Redis.URL()}); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, dashboard cache disabled")
	} else {
		statsCache = c
	}

	customerRepo := postgres.NewCustomerRepository(db)
	requestRepo := postgres.NewRequestRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	projectRepo := postgres.NewProjectRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	userRepo := postgres.NewUserRepository(db)
	rbacRepo := postgres.NewRBACRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)

	activitySvc := activityService.NewService(activityRepo)
	notificationSvc := notificationService.NewService(notificationRepo, userRepo)
	customerSvc := customerService.NewService(customerRepo, activitySvc)
	requestSvc := requestService.NewService(requestRepo, customerRepo, userRepo, activitySvc, notificationSvc)
	appointmentSvc := appointmentService.NewService(appointmentRepo, activitySvc)
	projectSvc := projectService.NewService(projectRepo, customerRepo, activitySvc)
	catalogSvc := catalogService.NewService(serviceRepo, activitySvc)

	hasher := security.NewBcryptHasher(security.DefaultCost)
	userSvc := userService.NewService(userRepo, hasher, activitySvc)
	rbacSvc := rbacService.NewService(rbacRepo, userRepo, activitySvc)

	tokens := jwtauth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer,
		time.Duration(cfg.JWT.AccessTTLMinutes)*time.Minute)
	refreshTTL := time.Duration(cfg.JWT.RefreshTTLDays) * 24 * time.Hour
	authSvc := authService.NewService(userRepo, tokenRepo, tokens, hasher, refreshTTL, activitySvc)

	dashboardSvc := dashboardService.NewService(customerSvc, requestSvc, appointmentSvc, statsCache, 0)

	authz := middleware.NewAuthMiddleware(tokens, rbacSvc)
	m := metrics.NewMetrics("bsm_api")

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
	}

	r := router.NewRouter(router.Config{
		Mode: cfg.Server.Mode,
		CORS: corsCfg,
		PublicRate: middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.Server.PublicRPS),
			Burst: cfg.Server.PublicBurst,
		},
		RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	}, authz, m, router.Handlers{
		Health:       health.NewHandler(db),
		Auth:         auth.NewHandler(authSvc),
		Customer:     customer.NewHandler(customerSvc),
		Request:      request.NewHandler(requestSvc),
		Appointment:  appointment.NewHandler(appointmentSvc),
		Project:      project.NewHandler(projectSvc),
		Catalog:      catalog.NewHandler(catalogSvc),
		User:         user.NewHandler(userSvc),
		RBAC:         rbac.NewHandler(rbacSvc),
		Notification: notification.NewHandler(notificationSvc),
		Activity:     activity.NewHandler(activitySvc),
		Dashboard:    dashboard.NewHandler(dashboardSvc),
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
