// Package worker hosts the loops the worker binary runs: notification
// dispatch and retention cleanup.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/risingbsm/bsm-api/internal/email"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/pkg/messaging"
	"github.com/risingbsm/bsm-api/pkg/metrics"
)

type DispatcherConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

func (c DispatcherConfig) normalized() DispatcherConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	return c
}

// Dispatcher drains undispatched notifications: it mails the recipient,
// publishes the event on the broker and marks the row. Delivery is at
// least once; a crash between send and mark re-sends on the next poll.
type Dispatcher struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	mailer        email.Service
	broker        messaging.Broker
	config        DispatcherConfig
	logger        zerolog.Logger
	metrics       *metrics.Metrics
}

func NewDispatcher(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	mailer email.Service,
	broker messaging.Broker,
	config DispatcherConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		users:         users,
		mailer:        mailer,
		broker:        broker,
		config:        config.normalized(),
		logger:        logger.With().Str("component", "dispatcher").Logger(),
		metrics:       m,
	}
}

// Start runs the poll loop until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.config.PollInterval)
	defer ticker.Stop()

	d.logger.Info().
		Int("batch_size", d.config.BatchSize).
		Dur("poll_interval", d.config.PollInterval).
		Msg("notification dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("notification dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.dispatch(ctx); err != nil {
				d.logger.Error().Err(err).Msg("dispatch round failed")
			}
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context) error {
	batch, err := d.notifications.NextUndispatched(ctx, d.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch undispatched notifications: %w", err)
	}

	d.metrics.NotificationQueueSize.Set(float64(len(batch)))
	if len(batch) == 0 {
		return nil
	}

	done := make([]int64, 0, len(batch))
	for i := range batch {
		n := &batch[i]
		if err := d.deliver(ctx, n); err != nil {
			d.metrics.NotificationsFailed.Inc()
			d.logger.Error().Err(err).
				Int64("notification_id", n.ID).
				Int64("user_id", n.UserID).
				Msg("delivery failed, will retry next poll")
			continue
		}
		d.metrics.NotificationsDispatched.Inc()
		done = append(done, n.ID)
	}

	if err := d.notifications.MarkDispatched(ctx, done); err != nil {
		return fmt.Errorf("failed to mark notifications dispatched: %w", err)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, n *model.Notification) error {
	user, err := d.users.Get(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("failed to load recipient %d: %w", n.UserID, err)
	}
	if user == nil {
		// Recipient is gone; nothing to send, but the row is handled.
		return nil
	}

	err = retry(d.config.RetryAttempts, d.config.RetryDelay, func() error {
		return d.mailer.Send(ctx, email.Message{
			To:      user.Email,
			Subject: n.Title,
			Body:    mailBody(n),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to mail notification %d: %w", n.ID, err)
	}

	msg := messaging.Message{Type: messaging.ChannelNotificationCreated, Payload: n}
	if err := d.broker.Publish(ctx, messaging.ChannelNotificationCreated, msg); err != nil {
		d.metrics.BrokerPublishes.WithLabelValues(messaging.ChannelNotificationCreated, "error").Inc()
		return fmt.Errorf("failed to publish notification %d: %w", n.ID, err)
	}
	d.metrics.BrokerPublishes.WithLabelValues(messaging.ChannelNotificationCreated, "success").Inc()

	return nil
}

func mailBody(n *model.Notification) string {
	if n.Link != nil && *n.Link != "" {
		return fmt.Sprintf("%s\n\n%s", n.Message, *n.Link)
	}
	return n.Message
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
