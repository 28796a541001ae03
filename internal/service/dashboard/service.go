// Package dashboard assembles the headline stats for the admin start
// page. The aggregate is cached briefly because it fans out into four
// count queries.
package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/risingbsm/bsm-api/internal/model"
)

const (
	cacheKey   = "dashboard:stats"
	defaultTTL = 30 * time.Second
	upcoming   = 5
)

// CustomerSource supplies customer counts.
type CustomerSource interface {
	Stats(ctx context.Context) (*model.CustomerStats, error)
}

// RequestSource supplies request counts.
type RequestSource interface {
	Stats(ctx context.Context) (*model.RequestStats, error)
}

// AppointmentSource supplies appointment counts and the upcoming list.
type AppointmentSource interface {
	Stats(ctx context.Context) (*model.AppointmentStats, error)
	Upcoming(ctx context.Context, limit int) ([]model.AppointmentResponse, error)
}

// StatsCache is the slice of pkg/cache the dashboard needs. A nil
// cache disables caching.
type StatsCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Service struct {
	customers    CustomerSource
	requests     RequestSource
	appointments AppointmentSource
	cache        StatsCache
	ttl          time.Duration
}

func NewService(customers CustomerSource, requests RequestSource, appointments AppointmentSource,
	cache StatsCache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{
		customers:    customers,
		requests:     requests,
		appointments: appointments,
		cache:        cache,
		ttl:          ttl,
	}
}

// Stats returns the dashboard aggregate, serving a cached copy when
// one is fresh. Cache failures fall back to computing the stats.
func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	if s.cache != nil {
		var cached model.DashboardStats
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read dashboard cache")
		} else if hit {
			return &cached, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.ttl); err != nil {
			log.Warn().Err(err).Msg("failed to write dashboard cache")
		}
	}
	return stats, nil
}

func (s *Service) compute(ctx context.Context) (*model.DashboardStats, error) {
	customers, err := s.customers.Stats(ctx)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.Stats(ctx)
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointments.Stats(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.appointments.Upcoming(ctx, upcoming)
	if err != nil {
		return nil, err
	}
	return &model.DashboardStats{
		Customers:    *customers,
		Requests:     *requests,
		Appointments: *appointments,
		Upcoming:     list,
	}, nil
}
