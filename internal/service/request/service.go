package request

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	"github.com/risingbsm/bsm-api/internal/service/crud"
	"github.com/risingbsm/bsm-api/internal/service/notification"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

const defaultAppointmentMinutes = 60

// Service processes inbound requests: public submission, staff
// assignment and the conversions into customers and appointments.
type Service struct {
	*crud.Service[model.Request, *model.RequestFilter, model.CreateRequestRequest, model.UpdateRequestRequest, model.RequestResponse]

	repo      repository.RequestRepository
	customers repository.CustomerRepository
	users     repository.UserRepository
	activity  *activity.Service
	notifier  *notification.Service
}

func NewService(
	repo repository.RequestRepository,
	customers repository.CustomerRepository,
	users repository.UserRepository,
	recorder *activity.Service,
	notifier *notification.Service,
) *Service {
	cfg := crud.Config[model.Request, *model.RequestFilter, model.CreateRequestRequest, model.UpdateRequestRequest, model.RequestResponse]{
		Entity:    model.EntityRequest,
		NewEntity: newRequest,
		Patch:     buildPatch,
		ToDTO: func(r *model.Request) model.RequestResponse {
			return model.NewRequestResponse(r)
		},
		Statuses:      model.RequestStatuses,
		Terminal:      []string{model.RequestStatusCompleted, model.RequestStatusCancelled},
		DeletedStatus: model.RequestStatusCancelled,
	}

	return &Service{
		Service:   crud.NewService(repo, recorder, cfg),
		repo:      repo,
		customers: customers,
		users:     users,
		activity:  recorder,
		notifier:  notifier,
	}
}

func newRequest(req model.CreateRequestRequest) *model.Request {
	return &model.Request{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Service: req.Service,
		Message: req.Message,
		Status:  model.RequestStatusNew,
	}
}

func buildPatch(req model.UpdateRequestRequest) map[string]interface{} {
	patch := map[string]interface{}{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Email != nil {
		patch["email"] = *req.Email
	}
	if req.Phone != nil {
		patch["phone"] = *req.Phone
	}
	if req.Service != nil {
		patch["service"] = *req.Service
	}
	if req.Message != nil {
		patch["message"] = *req.Message
	}
	return patch
}

// Submit handles the unauthenticated contact form. The new request is
// recorded without an acting user and staff get notified.
func (s *Service) Submit(ctx context.Context, req model.CreateRequestRequest) (*model.RequestResponse, error) {
	created, err := s.repo.Create(ctx, newRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to submit request: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityRequest,
		EntityID:   created.ID,
		Action:     model.ActivityActionCreate,
		Details:    "submitted via public form",
	})

	link := fmt.Sprintf("/requests/%d", created.ID)
	if err := s.notifier.NotifyStaff(ctx,
		"New request",
		fmt.Sprintf("%s submitted a new request", created.Name),
		model.NotificationTypeInfo,
		&link,
	); err != nil {
		// A broken notification fan-out must not fail the public form.
		log.Warn().Err(err).Int64("request_id", created.ID).Msg("failed to notify staff about new request")
	}

	dto := model.NewRequestResponse(created)
	return &dto, nil
}

// Assign hands the request to a processor and tells them about it.
func (s *Service) Assign(ctx context.Context, requestID, processorID int64, actor *model.Actor) (*model.RequestResponse, error) {
	if _, err := s.repo.GetOrFail(ctx, requestID); err != nil {
		return nil, err
	}

	processor, err := s.users.GetOrFail(ctx, processorID)
	if err != nil {
		return nil, err
	}
	if processor.Status != model.UserStatusActive {
		return nil, apperrors.BadRequest("processor must be an active user")
	}

	updated, err := s.repo.Update(ctx, requestID, map[string]interface{}{"processor_id": processorID}, repository.UpdateOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to assign request: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityRequest,
		EntityID:   requestID,
		Action:     model.ActivityActionAssign,
		Details:    "assigned to " + processor.Name,
		Actor:      actor,
	})

	link := fmt.Sprintf("/requests/%d", requestID)
	if _, err := s.notifier.NotifyUser(ctx, processorID,
		"Request assigned",
		fmt.Sprintf("Request from %s was assigned to you", updated.Name),
		model.NotificationTypeInfo,
		&link,
	); err != nil {
		log.Warn().Err(err).Int64("request_id", requestID).Int64("processor_id", processorID).Msg("failed to notify processor")
	}

	dto := model.NewRequestResponse(updated)
	return &dto, nil
}

// ConvertToCustomer creates a customer from the request's contact data
// and links the request to it.
func (s *Service) ConvertToCustomer(ctx context.Context, requestID int64, actor *model.Actor) (*model.CustomerResponse, error) {
	req, err := s.repo.GetOrFail(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		return nil, apperrors.Conflict("request is already linked to a customer", nil)
	}

	email := req.Email
	customer, err := s.customers.Create(ctx, &model.Customer{
		Name:   req.Name,
		Email:  &email,
		Phone:  req.Phone,
		Status: model.CustomerStatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customer from request: %w", err)
	}

	if _, err := s.repo.Update(ctx, requestID, map[string]interface{}{"customer_id": customer.ID}, repository.UpdateOptions{}); err != nil {
		return nil, fmt.Errorf("failed to link request to customer: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityRequest,
		EntityID:   requestID,
		Action:     model.ActivityActionConvert,
		Details:    fmt.Sprintf("converted to customer %d", customer.ID),
		Actor:      actor,
	})
	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityCustomer,
		EntityID:   customer.ID,
		Action:     model.ActivityActionCreate,
		Details:    fmt.Sprintf("created from request %d", requestID),
		Actor:      actor,
	})

	dto := model.NewCustomerResponse(customer)
	return &dto, nil
}

// ConvertToAppointment schedules an appointment for the request. The
// appointment insert and the request link happen in one transaction.
func (s *Service) ConvertToAppointment(ctx context.Context, requestID int64, conv model.ConvertRequestRequest, actor *model.Actor) (*model.AppointmentResponse, error) {
	req, err := s.repo.GetOrFail(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.AppointmentID != nil {
		return nil, apperrors.Conflict("request already has an appointment", nil)
	}

	duration := conv.Duration
	if duration <= 0 {
		duration = defaultAppointmentMinutes
	}

	created, err := s.repo.ConvertToAppointment(ctx, requestID, &model.Appointment{
		Title:           conv.Title,
		CustomerID:      req.CustomerID,
		AppointmentDate: conv.AppointmentDate,
		Duration:        duration,
		Location:        conv.Location,
		Status:          model.AppointmentStatusPlanned,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert request to appointment: %w", err)
	}

	if conv.Note != "" {
		if _, err := s.AddNote(ctx, requestID, conv.Note, actor); err != nil {
			log.Warn().Err(err).Int64("request_id", requestID).Msg("failed to attach conversion note")
		}
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityRequest,
		EntityID:   requestID,
		Action:     model.ActivityActionConvert,
		Details:    fmt.Sprintf("converted to appointment %d", created.ID),
		Actor:      actor,
	})

	dto := model.NewAppointmentResponse(created)
	return &dto, nil
}

// AddNote attaches a processing note to an existing request.
func (s *Service) AddNote(ctx context.Context, requestID int64, content string, actor *model.Actor) (*model.RequestNote, error) {
	if _, err := s.repo.GetOrFail(ctx, requestID); err != nil {
		return nil, err
	}

	note := &model.RequestNote{
		RequestID: requestID,
		Content:   content,
	}
	if actor != nil {
		uid := actor.UserID
		note.UserID = &uid
		note.UserName = actor.Name
	}

	created, err := s.repo.AddNote(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("failed to add request note: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityRequest,
		EntityID:   requestID,
		Action:     model.ActivityActionNote,
		Details:    content,
		Actor:      actor,
	})
	return created, nil
}

// ListNotes returns a request's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, requestID int64) ([]model.RequestNote, error) {
	if _, err := s.repo.GetOrFail(ctx, requestID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, requestID)
}

// Stats aggregates requests per status.
func (s *Service) Stats(ctx context.Context) (*model.RequestStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate request stats: %w", err)
	}

	stats := &model.RequestStats{
		New:        counts[model.RequestStatusNew],
		InProgress: counts[model.RequestStatusInProgress],
		Completed:  counts[model.RequestStatusCompleted],
		Cancelled:  counts[model.RequestStatusCancelled],
	}
	stats.Total = stats.New + stats.InProgress + stats.Completed + stats.Cancelled
	return stats, nil
}
