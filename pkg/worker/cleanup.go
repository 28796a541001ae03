package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/pkg/metrics"
)

type CleanupConfig struct {
	Interval          time.Duration
	ActivityRetention time.Duration
}

func (c CleanupConfig) normalized() CleanupConfig {
	if c.Interval <= 0 {
		c.Interval = time.Hour
	}
	if c.ActivityRetention <= 0 {
		c.ActivityRetention = 90 * 24 * time.Hour
	}
	return c
}

// Cleanup enforces retention: old activity log entries, expired refresh
// tokens and read notifications past the retention window are deleted.
type Cleanup struct {
	activity      repository.ActivityRepository
	tokens        repository.TokenRepository
	notifications repository.NotificationRepository
	config        CleanupConfig
	logger        zerolog.Logger
	metrics       *metrics.Metrics
}

func NewCleanup(
	activity repository.ActivityRepository,
	tokens repository.TokenRepository,
	notifications repository.NotificationRepository,
	config CleanupConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Cleanup {
	return &Cleanup{
		activity:      activity,
		tokens:        tokens,
		notifications: notifications,
		config:        config.normalized(),
		logger:        logger.With().Str("component", "cleanup").Logger(),
		metrics:       m,
	}
}

// Start runs the cleanup loop until ctx is cancelled.
func (w *Cleanup) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.logger.Info().
		Dur("interval", w.config.Interval).
		Dur("activity_retention", w.config.ActivityRetention).
		Msg("retention cleanup started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("retention cleanup stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

// run sweeps every table independently; one failing sweep must not
// block the others.
func (w *Cleanup) run(ctx context.Context) {
	now := time.Now()
	cutoff := now.Add(-w.config.ActivityRetention)

	if rows, err := w.activity.DeleteBefore(ctx, cutoff); err != nil {
		w.logger.Error().Err(err).Msg("failed to purge activity logs")
	} else if rows > 0 {
		w.metrics.CleanupRowsDeleted.WithLabelValues("activity_logs").Add(float64(rows))
		w.logger.Info().Int64("rows", rows).Time("cutoff", cutoff).Msg("purged activity logs")
	}

	if rows, err := w.tokens.DeleteExpired(ctx, now); err != nil {
		w.logger.Error().Err(err).Msg("failed to purge refresh tokens")
	} else if rows > 0 {
		w.metrics.CleanupRowsDeleted.WithLabelValues("refresh_tokens").Add(float64(rows))
		w.logger.Info().Int64("rows", rows).Msg("purged expired refresh tokens")
	}

	if rows, err := w.notifications.DeleteOlderThan(ctx, cutoff); err != nil {
		w.logger.Error().Err(err).Msg("failed to purge notifications")
	} else if rows > 0 {
		w.metrics.CleanupRowsDeleted.WithLabelValues("notifications").Add(float64(rows))
		w.logger.Info().Int64("rows", rows).Time("cutoff", cutoff).Msg("purged read notifications")
	}
}
