// Package crud provides the generic service core shared by every
// entity service: validation, DTO projection, status transitions and
// activity logging composed over a repository capability set.
package crud

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

// Entity is the minimum surface the generic service needs from a model.
type Entity interface {
	GetID() int64
	GetStatus() string
}

// DeleteOptions controls service-level delete behavior. The default is
// a soft delete; callers must ask for a hard delete explicitly.
type DeleteOptions struct {
	Hard bool
}

// Config wires the entity-specific hooks into the generic service.
type Config[E Entity, F, C, U, D any] struct {
	// Entity names the aggregate in activity rows and error messages.
	Entity string

	// NewEntity builds a fresh entity from a create payload.
	NewEntity func(req C) *E
	// Patch translates an update payload into column assignments. It
	// must never emit "status"; status changes go through UpdateStatus.
	Patch func(req U) map[string]interface{}
	// ToDTO is a pure projection of an entity to its response shape,
	// including derived display fields. Derived fields are never
	// persisted.
	ToDTO func(e *E) D

	// Validate returns human-readable problems with a create or update
	// payload. Optional; binding-level validation already ran upstream.
	Validate func(v interface{}, isUpdate bool) []string

	// Statuses lists the states reachable through UpdateStatus.
	Statuses []string
	// Terminal lists states that reject any further transition.
	Terminal []string
	// DeletedStatus is the value a soft delete writes. Empty means the
	// entity has no soft-delete state and Delete always removes the row.
	DeletedStatus string
}

// Service implements the shared CRUD semantics over one repository.
type Service[E Entity, F, C, U, D any] struct {
	repo     repository.Repository[E, F]
	activity *activity.Service
	cfg      Config[E, F, C, U, D]
}

func NewService[E Entity, F, C, U, D any](repo repository.Repository[E, F], recorder *activity.Service, cfg Config[E, F, C, U, D]) *Service[E, F, C, U, D] {
	return &Service[E, F, C, U, D]{
		repo:     repo,
		activity: recorder,
		cfg:      cfg,
	}
}

// List returns one page of projected entities.
func (s *Service[E, F, C, U, D]) List(ctx context.Context, filter F, opts query.Options) (*query.Result[D], error) {
	res, err := s.repo.List(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return &query.Result[D]{
		Data:       s.toDTOs(res.Data),
		Pagination: res.Pagination,
	}, nil
}

// Get returns one projected entity. A missing id resolves to nil unless
// opts.Fail is set, in which case it raises NotFound.
func (s *Service[E, F, C, U, D]) Get(ctx context.Context, id int64, opts repository.GetOptions) (*D, error) {
	var (
		e   *E
		err error
	)
	if opts.Fail {
		e, err = s.repo.GetOrFail(ctx, id)
	} else {
		e, err = s.repo.Get(ctx, id)
	}
	if err != nil || e == nil {
		return nil, err
	}
	dto := s.cfg.ToDTO(e)
	return &dto, nil
}

// Create validates the payload, persists a new entity and records the
// creation.
func (s *Service[E, F, C, U, D]) Create(ctx context.Context, req C, actor *model.Actor) (*D, error) {
	if err := s.validate(req, false); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, s.cfg.NewEntity(req))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.cfg.Entity, err)
	}

	s.record(ctx, (*created).GetID(), model.ActivityActionCreate, "", actor)

	dto := s.cfg.ToDTO(created)
	return &dto, nil
}

// Update validates the payload and applies the resulting patch. Status
// is never part of the patch.
func (s *Service[E, F, C, U, D]) Update(ctx context.Context, id int64, req U, opts repository.UpdateOptions, actor *model.Actor) (*D, error) {
	if err := s.validate(req, true); err != nil {
		return nil, err
	}

	patch := s.cfg.Patch(req)
	delete(patch, "status")

	updated, err := s.repo.Update(ctx, id, patch, opts)
	if err != nil {
		return nil, err
	}

	if fields := sortedKeys(patch); len(fields) > 0 {
		s.record(ctx, id, model.ActivityActionUpdate, "updated "+strings.Join(fields, ", "), actor)
	}

	dto := s.cfg.ToDTO(updated)
	return &dto, nil
}

// UpdateStatus is the only path that mutates an entity's status, so
// every transition leaves an activity row.
func (s *Service[E, F, C, U, D]) UpdateStatus(ctx context.Context, id int64, status string, actor *model.Actor) (*D, error) {
	if !contains(s.cfg.Statuses, status) {
		return nil, apperrors.Validation(
			fmt.Sprintf("invalid %s status", s.cfg.Entity),
			fmt.Sprintf("status must be one of: %s", strings.Join(s.cfg.Statuses, ", ")),
		)
	}

	current, err := s.repo.GetOrFail(ctx, id)
	if err != nil {
		return nil, err
	}
	from := (*current).GetStatus()
	if contains(s.cfg.Terminal, from) {
		return nil, apperrors.BadRequest(fmt.Sprintf("%s is %s and cannot change status", s.cfg.Entity, from))
	}

	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"status": status}, repository.UpdateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s status: %w", s.cfg.Entity, err)
	}

	s.record(ctx, id, model.ActivityActionStatusChange, fmt.Sprintf("status changed from %s to %s", from, status), actor)

	dto := s.cfg.ToDTO(updated)
	return &dto, nil
}

// Delete soft-deletes by default, flipping status to the configured
// deleted value so the row stays retrievable. A hard delete removes the
// row for good.
func (s *Service[E, F, C, U, D]) Delete(ctx context.Context, id int64, opts DeleteOptions, actor *model.Actor) error {
	if opts.Hard || s.cfg.DeletedStatus == "" {
		if err := s.repo.Delete(ctx, id, repository.DeleteOptions{}); err != nil {
			return err
		}
		s.record(ctx, id, model.ActivityActionDelete, "permanently deleted", actor)
		return nil
	}

	_, err := s.repo.Update(ctx, id, map[string]interface{}{"status": s.cfg.DeletedStatus}, repository.UpdateOptions{CheckExists: true})
	if err != nil {
		return err
	}
	s.record(ctx, id, model.ActivityActionDelete, "", actor)
	return nil
}

// BulkUpdateStatus moves every matched id to the given status and
// returns how many rows changed. Missing ids are skipped, not errors.
func (s *Service[E, F, C, U, D]) BulkUpdateStatus(ctx context.Context, ids []int64, status string, actor *model.Actor) (int64, error) {
	if !contains(s.cfg.Statuses, status) {
		return 0, apperrors.Validation(
			fmt.Sprintf("invalid %s status", s.cfg.Entity),
			fmt.Sprintf("status must be one of: %s", strings.Join(s.cfg.Statuses, ", ")),
		)
	}

	n, err := s.repo.UpdateMany(ctx, ids, map[string]interface{}{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update %s status: %w", s.cfg.Entity, err)
	}

	for _, id := range ids {
		s.record(ctx, id, model.ActivityActionStatusChange, "bulk status change to "+status, actor)
	}
	return n, nil
}

// Count returns how many rows match the filter.
func (s *Service[E, F, C, U, D]) Count(ctx context.Context, filter F) (int64, error) {
	return s.repo.Count(ctx, filter)
}

// ToDTO exposes the projection hook to the embedding entity service.
func (s *Service[E, F, C, U, D]) ToDTO(e *E) D {
	return s.cfg.ToDTO(e)
}

func (s *Service[E, F, C, U, D]) toDTOs(rows []E) []D {
	out := make([]D, 0, len(rows))
	for i := range rows {
		out = append(out, s.cfg.ToDTO(&rows[i]))
	}
	return out
}

func (s *Service[E, F, C, U, D]) validate(payload interface{}, isUpdate bool) error {
	if s.cfg.Validate == nil {
		return nil
	}
	if msgs := s.cfg.Validate(payload, isUpdate); len(msgs) > 0 {
		return apperrors.Validation(fmt.Sprintf("invalid %s data", s.cfg.Entity), msgs...)
	}
	return nil
}

// record writes an activity row for a mutation. A nil actor means an
// unattributed call; nothing is recorded. Failures never propagate.
func (s *Service[E, F, C, U, D]) record(ctx context.Context, id int64, action, details string, actor *model.Actor) {
	if s.activity == nil || actor == nil {
		return
	}
	_ = s.activity.Record(ctx, activity.Entry{
		EntityType: s.cfg.Entity,
		EntityID:   id,
		Action:     action,
		Details:    details,
		Actor:      actor,
	})
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
