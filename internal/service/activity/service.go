package activity

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
)

// Entry describes one recorded action against an entity.
type Entry struct {
	EntityType string
	EntityID   int64
	Action     string
	Details    string
	Actor      *model.Actor
}

// Service writes and reads the activity log.
type Service struct {
	repo repository.ActivityRepository
}

func NewService(repo repository.ActivityRepository) *Service {
	return &Service{repo: repo}
}

// Record writes one activity row. A failed write is logged and returned
// but must never abort the caller's own operation, so callers typically
// ignore the returned error.
func (s *Service) Record(ctx context.Context, e Entry) error {
	row := &model.ActivityLog{
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
	}
	if e.Details != "" {
		row.Details = &e.Details
	}
	if e.Actor != nil {
		uid := e.Actor.UserID
		row.UserID = &uid
		row.UserName = e.Actor.Name
		if e.Actor.IP != "" {
			row.IPAddress = &e.Actor.IP
		}
	}

	if err := s.repo.Create(ctx, row); err != nil {
		log.Warn().
			Err(err).
			Str("entity_type", e.EntityType).
			Int64("entity_id", e.EntityID).
			Str("action", e.Action).
			Msg("failed to record activity")
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, f *model.ActivityFilter) (*query.Result[model.ActivityLog], error) {
	return s.repo.List(ctx, f)
}
