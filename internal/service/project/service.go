package project

import (
	"context"
	"fmt"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	"github.com/risingbsm/bsm-api/internal/service/crud"
)

// Service manages customer projects.
type Service struct {
	*crud.Service[model.Project, *model.ProjectFilter, model.CreateProjectRequest, model.UpdateProjectRequest, model.ProjectResponse]

	repo      repository.ProjectRepository
	customers repository.CustomerRepository
}

func NewService(repo repository.ProjectRepository, customers repository.CustomerRepository, recorder *activity.Service) *Service {
	cfg := crud.Config[model.Project, *model.ProjectFilter, model.CreateProjectRequest, model.UpdateProjectRequest, model.ProjectResponse]{
		Entity:    model.EntityProject,
		NewEntity: newProject,
		Patch:     buildPatch,
		ToDTO: func(p *model.Project) model.ProjectResponse {
			return model.NewProjectResponse(p)
		},
		Statuses:      model.ProjectStatuses,
		Terminal:      []string{model.ProjectStatusCompleted, model.ProjectStatusCancelled},
		DeletedStatus: model.ProjectStatusCancelled,
	}

	return &Service{
		Service:   crud.NewService(repo, recorder, cfg),
		repo:      repo,
		customers: customers,
	}
}

func newProject(req model.CreateProjectRequest) *model.Project {
	return &model.Project{
		Name:        req.Name,
		CustomerID:  req.CustomerID,
		ServiceID:   req.ServiceID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Amount:      req.Amount,
		Description: req.Description,
		Status:      model.ProjectStatusNew,
	}
}

func buildPatch(req model.UpdateProjectRequest) map[string]interface{} {
	patch := map[string]interface{}{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.ServiceID != nil {
		patch["service_id"] = *req.ServiceID
	}
	if req.StartDate != nil {
		patch["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		patch["end_date"] = *req.EndDate
	}
	if req.Amount != nil {
		patch["amount"] = *req.Amount
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	return patch
}

// Create verifies the owning customer before delegating to the shared
// create path, so a bad customer id reads as NotFound instead of a
// constraint violation.
func (s *Service) Create(ctx context.Context, req model.CreateProjectRequest, actor *model.Actor) (*model.ProjectResponse, error) {
	if _, err := s.customers.GetOrFail(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	return s.Service.Create(ctx, req, actor)
}

// ListForCustomer returns one page of a customer's projects, newest
// first.
func (s *Service) ListForCustomer(ctx context.Context, customerID int64) ([]model.ProjectResponse, error) {
	res, err := s.repo.List(ctx, &model.ProjectFilter{CustomerID: &customerID}, query.Options{Limit: query.MaxLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list customer projects: %w", err)
	}

	out := make([]model.ProjectResponse, 0, len(res.Data))
	for i := range res.Data {
		out = append(out, model.NewProjectResponse(&res.Data[i]))
	}
	return out, nil
}

// Stats aggregates projects per status.
func (s *Service) Stats(ctx context.Context) (map[string]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate project stats: %w", err)
	}
	return counts, nil
}
