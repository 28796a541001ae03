package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	"github.com/risingbsm/bsm-api/internal/service/crud"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

const (
	defaultDurationMinutes = 60
	defaultUpcomingLimit   = 5
)

// Service manages appointments: shared CRUD semantics plus the
// scheduling flows (cancel, complete, reschedule) and the upcoming
// window used by the dashboard.
type Service struct {
	*crud.Service[model.Appointment, *model.AppointmentFilter, model.CreateAppointmentRequest, model.UpdateAppointmentRequest, model.AppointmentResponse]

	repo     repository.AppointmentRepository
	activity *activity.Service
}

func NewService(repo repository.AppointmentRepository, recorder *activity.Service) *Service {
	cfg := crud.Config[model.Appointment, *model.AppointmentFilter, model.CreateAppointmentRequest, model.UpdateAppointmentRequest, model.AppointmentResponse]{
		Entity:    model.EntityAppointment,
		NewEntity: newAppointment,
		Patch:     buildPatch,
		ToDTO: func(a *model.Appointment) model.AppointmentResponse {
			return model.NewAppointmentResponse(a)
		},
		Statuses: model.AppointmentStatuses,
		Terminal: []string{
			model.AppointmentStatusCompleted,
			model.AppointmentStatusCancelled,
			model.AppointmentStatusNoShow,
		},
		DeletedStatus: model.AppointmentStatusCancelled,
	}

	return &Service{
		Service:  crud.NewService(repo, recorder, cfg),
		repo:     repo,
		activity: recorder,
	}
}

func newAppointment(req model.CreateAppointmentRequest) *model.Appointment {
	duration := req.Duration
	if duration <= 0 {
		duration = defaultDurationMinutes
	}
	return &model.Appointment{
		Title:           req.Title,
		CustomerID:      req.CustomerID,
		AppointmentDate: req.AppointmentDate,
		Duration:        duration,
		Location:        req.Location,
		Description:     req.Description,
		Status:          model.AppointmentStatusPlanned,
	}
}

func buildPatch(req model.UpdateAppointmentRequest) map[string]interface{} {
	patch := map[string]interface{}{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.CustomerID != nil {
		patch["customer_id"] = *req.CustomerID
	}
	if req.AppointmentDate != nil {
		patch["appointment_date"] = *req.AppointmentDate
	}
	if req.Duration != nil {
		patch["duration"] = *req.Duration
	}
	if req.Location != nil {
		patch["location"] = *req.Location
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	return patch
}

// Cancel moves the appointment to cancelled and keeps the reason on the
// timeline.
func (s *Service) Cancel(ctx context.Context, id int64, reason string, actor *model.Actor) (*model.AppointmentResponse, error) {
	dto, err := s.UpdateStatus(ctx, id, model.AppointmentStatusCancelled, actor)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		if _, err := s.AddNote(ctx, id, "Cancelled: "+reason, actor); err != nil {
			log.Warn().Err(err).Int64("appointment_id", id).Msg("failed to attach cancellation note")
		}
	}
	return dto, nil
}

// Complete marks the appointment as done, with optional closing notes.
func (s *Service) Complete(ctx context.Context, id int64, notes string, actor *model.Actor) (*model.AppointmentResponse, error) {
	dto, err := s.UpdateStatus(ctx, id, model.AppointmentStatusCompleted, actor)
	if err != nil {
		return nil, err
	}
	if notes != "" {
		if _, err := s.AddNote(ctx, id, notes, actor); err != nil {
			log.Warn().Err(err).Int64("appointment_id", id).Msg("failed to attach completion note")
		}
	}
	return dto, nil
}

// Reschedule moves the appointment to a new date. Finished appointments
// cannot move.
func (s *Service) Reschedule(ctx context.Context, id int64, req model.RescheduleAppointmentRequest, actor *model.Actor) (*model.AppointmentResponse, error) {
	appt, err := s.repo.GetOrFail(ctx, id)
	if err != nil {
		return nil, err
	}
	switch appt.Status {
	case model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, model.AppointmentStatusNoShow:
		return nil, apperrors.BadRequest(fmt.Sprintf("appointment is %s and cannot be rescheduled", appt.Status))
	}

	updated, err := s.repo.Update(ctx, id, map[string]interface{}{"appointment_date": req.AppointmentDate}, repository.UpdateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	details := fmt.Sprintf("rescheduled from %s to %s",
		appt.AppointmentDate.Format("2006-01-02 15:04"),
		req.AppointmentDate.Format("2006-01-02 15:04"),
	)
	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityAppointment,
		EntityID:   id,
		Action:     model.ActivityActionUpdate,
		Details:    details,
		Actor:      actor,
	})
	if req.Note != "" {
		if _, err := s.AddNote(ctx, id, req.Note, actor); err != nil {
			log.Warn().Err(err).Int64("appointment_id", id).Msg("failed to attach reschedule note")
		}
	}

	dto := model.NewAppointmentResponse(updated)
	return &dto, nil
}

// AddNote attaches a note to an existing appointment.
func (s *Service) AddNote(ctx context.Context, appointmentID int64, content string, actor *model.Actor) (*model.AppointmentNote, error) {
	if _, err := s.repo.GetOrFail(ctx, appointmentID); err != nil {
		return nil, err
	}

	note := &model.AppointmentNote{
		AppointmentID: appointmentID,
		Content:       content,
	}
	if actor != nil {
		uid := actor.UserID
		note.UserID = &uid
		note.UserName = actor.Name
	}

	created, err := s.repo.AddNote(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("failed to add appointment note: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityAppointment,
		EntityID:   appointmentID,
		Action:     model.ActivityActionNote,
		Details:    content,
		Actor:      actor,
	})
	return created, nil
}

// ListNotes returns an appointment's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, appointmentID int64) ([]model.AppointmentNote, error) {
	if _, err := s.repo.GetOrFail(ctx, appointmentID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, appointmentID)
}

// Upcoming returns the next planned or confirmed appointments from now
// on.
func (s *Service) Upcoming(ctx context.Context, limit int) ([]model.AppointmentResponse, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	rows, err := s.repo.ListUpcoming(ctx, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming appointments: %w", err)
	}

	out := make([]model.AppointmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, model.NewAppointmentResponse(&rows[i]))
	}
	return out, nil
}

// Stats aggregates appointments per status.
func (s *Service) Stats(ctx context.Context) (*model.AppointmentStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate appointment stats: %w", err)
	}

	stats := &model.AppointmentStats{
		Planned:   counts[model.AppointmentStatusPlanned],
		Confirmed: counts[model.AppointmentStatusConfirmed],
		Completed: counts[model.AppointmentStatusCompleted],
		Cancelled: counts[model.AppointmentStatusCancelled],
		NoShow:    counts[model.AppointmentStatusNoShow],
	}
	stats.Total = stats.Planned + stats.Confirmed + stats.Completed + stats.Cancelled + stats.NoShow
	return stats, nil
}
