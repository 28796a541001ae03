package catalog

import (
	"context"
	"fmt"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	"github.com/risingbsm/bsm-api/internal/service/crud"
)

// Service manages the service catalog offered to customers.
type Service struct {
	*crud.Service[model.CatalogService, *model.ServiceFilter, model.CreateServiceRequest, model.UpdateServiceRequest, model.ServiceResponse]

	repo repository.ServiceRepository
}

func NewService(repo repository.ServiceRepository, recorder *activity.Service) *Service {
	cfg := crud.Config[model.CatalogService, *model.ServiceFilter, model.CreateServiceRequest, model.UpdateServiceRequest, model.ServiceResponse]{
		Entity:    model.EntityService,
		NewEntity: newCatalogService,
		Patch:     buildPatch,
		ToDTO: func(cs *model.CatalogService) model.ServiceResponse {
			return model.NewServiceResponse(cs)
		},
		Statuses:      model.ServiceStatuses,
		DeletedStatus: model.ServiceStatusInactive,
	}

	return &Service{
		Service: crud.NewService(repo, recorder, cfg),
		repo:    repo,
	}
}

func newCatalogService(req model.CreateServiceRequest) *model.CatalogService {
	return &model.CatalogService{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		VatRate:     req.VatRate,
		Unit:        req.Unit,
		Status:      model.ServiceStatusActive,
	}
}

func buildPatch(req model.UpdateServiceRequest) map[string]interface{} {
	patch := map[string]interface{}{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Price != nil {
		patch["price"] = *req.Price
	}
	if req.VatRate != nil {
		patch["vat_rate"] = *req.VatRate
	}
	if req.Unit != nil {
		patch["unit"] = *req.Unit
	}
	return patch
}

// ListActive returns the bookable services, for the public request
// form's service picker.
func (s *Service) ListActive(ctx context.Context) ([]model.ServiceResponse, error) {
	res, err := s.repo.List(ctx, &model.ServiceFilter{
		BaseFilter: model.BaseFilter{Status: model.ServiceStatusActive},
	}, query.Options{Limit: query.MaxLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list active services: %w", err)
	}

	out := make([]model.ServiceResponse, 0, len(res.Data))
	for i := range res.Data {
		out = append(out, model.NewServiceResponse(&res.Data[i]))
	}
	return out, nil
}
