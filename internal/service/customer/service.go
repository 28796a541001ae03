package customer

import (
	"context"
	"fmt"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	"github.com/risingbsm/bsm-api/internal/service/crud"
)

// Service manages customers: shared CRUD semantics plus notes and
// aggregate stats.
type Service struct {
	*crud.Service[model.Customer, *model.CustomerFilter, model.CreateCustomerRequest, model.UpdateCustomerRequest, model.CustomerResponse]

	repo     repository.CustomerRepository
	activity *activity.Service
}

func NewService(repo repository.CustomerRepository, recorder *activity.Service) *Service {
	cfg := crud.Config[model.Customer, *model.CustomerFilter, model.CreateCustomerRequest, model.UpdateCustomerRequest, model.CustomerResponse]{
		Entity:    model.EntityCustomer,
		NewEntity: newCustomer,
		Patch:     buildPatch,
		ToDTO: func(c *model.Customer) model.CustomerResponse {
			return model.NewCustomerResponse(c)
		},
		Statuses:      model.CustomerStatuses,
		Terminal:      []string{model.CustomerStatusDeleted},
		DeletedStatus: model.CustomerStatusDeleted,
	}

	return &Service{
		Service:  crud.NewService(repo, recorder, cfg),
		repo:     repo,
		activity: recorder,
	}
}

func newCustomer(req model.CreateCustomerRequest) *model.Customer {
	status := req.Status
	if status == "" {
		status = model.CustomerStatusActive
	}
	return &model.Customer{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Newsletter: req.Newsletter,
		Status:     status,
	}
}

func buildPatch(req model.UpdateCustomerRequest) map[string]interface{} {
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
	if req.Company != nil {
		patch["company"] = *req.Company
	}
	if req.Address != nil {
		patch["address"] = *req.Address
	}
	if req.City != nil {
		patch["city"] = *req.City
	}
	if req.PostalCode != nil {
		patch["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		patch["country"] = *req.Country
	}
	if req.Newsletter != nil {
		patch["newsletter"] = *req.Newsletter
	}
	return patch
}

// AddNote attaches a note to an existing customer.
func (s *Service) AddNote(ctx context.Context, customerID int64, content string, actor *model.Actor) (*model.CustomerNote, error) {
	if _, err := s.repo.GetOrFail(ctx, customerID); err != nil {
		return nil, err
	}

	note := &model.CustomerNote{
		CustomerID: customerID,
		Content:    content,
	}
	if actor != nil {
		uid := actor.UserID
		note.UserID = &uid
		note.UserName = actor.Name
	}

	created, err := s.repo.AddNote(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("failed to add customer note: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityCustomer,
		EntityID:   customerID,
		Action:     model.ActivityActionNote,
		Details:    content,
		Actor:      actor,
	})
	return created, nil
}

// ListNotes returns a customer's notes, newest first.
func (s *Service) ListNotes(ctx context.Context, customerID int64) ([]model.CustomerNote, error) {
	if _, err := s.repo.GetOrFail(ctx, customerID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, customerID)
}

// Stats aggregates customer counts per status. Soft-deleted customers
// are not part of the totals.
func (s *Service) Stats(ctx context.Context) (*model.CustomerStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate customer stats: %w", err)
	}

	stats := &model.CustomerStats{
		Active:   counts[model.CustomerStatusActive],
		Inactive: counts[model.CustomerStatusInactive],
		Leads:    counts[model.CustomerStatusLead],
	}
	stats.Total = stats.Active + stats.Inactive + stats.Leads
	return stats, nil
}
