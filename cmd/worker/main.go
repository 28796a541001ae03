package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/risingbsm/bsm-api/internal/config"
	"github.com/risingbsm/bsm-api/internal/email"
	"github.com/risingbsm/bsm-api/internal/repository/postgres"
	"github.com/risingbsm/bsm-api/pkg/logger"
	redisbroker "github.com/risingbsm/bsm-api/pkg/messaging/redis"
	"github.com/risingbsm/bsm-api/pkg/metrics"
	"github.com/risingbsm/bsm-api/pkg/worker"
)

// The worker runs the loops the API must not block on: mailing out
// notifications and enforcing retention.
func main() {
	cfg, err := config.LoadWorkerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}
	zl := logger.New(logger.Config{Level: cfg.LogLevel})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(redisbroker.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	smtp := email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}
	var mailer email.Service
	if smtp.Configured() {
		mailer = email.NewSMTPService(smtp, zl)
	} else {
		log.Warn().Msg("smtp not configured, notifications are logged instead of mailed")
		mailer = email.NewLogService(zl)
	}

	notificationRepo := postgres.NewNotificationRepository(db)
	userRepo := postgres.NewUserRepository(db)
	activityRepo := postgres.NewActivityRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)

	m := metrics.NewMetrics("bsm_worker")

	dispatcher := worker.NewDispatcher(notificationRepo, userRepo, mailer, broker, worker.DispatcherConfig{
		BatchSize:    cfg.DispatchBatchSize,
		PollInterval: cfg.DispatchInterval,
	}, zl, m)

	cleanup := worker.NewCleanup(activityRepo, tokenRepo, notificationRepo, worker.CleanupConfig{
		Interval:          cfg.CleanupInterval,
		ActivityRetention: cfg.ActivityRetention,
	}, zl, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startProbes(ctx)

	go cleanup.Start(ctx)
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down worker")
		cancel()
	}()

	dispatcher.Start(ctx)
}

// startProbes serves liveness on a side port so the orchestrator can
// restart a wedged worker.
func startProbes(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: ":8081", Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("probe server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
}
