package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
)

type serviceRepository struct {
	*Store[model.CatalogService]
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{
		Store: NewStore[model.CatalogService](db, Meta{
			Table:  "services",
			Entity: "service",
			Insert: []string{
				"name", "description", "price", "vat_rate", "unit", "status",
			},
			Updatable: map[string]bool{
				"name": true, "description": true, "price": true,
				"vat_rate": true, "unit": true, "status": true,
			},
			Sortable: map[string]bool{
				"id": true, "name": true, "price": true,
				"status": true, "created_at": true, "updated_at": true,
			},
			DefaultSort: "name ASC",
		}),
	}
}

func (r *serviceRepository) buildCriteria(f *model.ServiceFilter) *query.Criteria {
	cr := query.New()
	if f == nil {
		return cr
	}

	if f.Status != "" {
		cr.Eq("status", f.Status)
	}
	if f.Search != "" {
		cr.Search(f.Search, "name", "description")
	}
	if f.MaxPrice != nil {
		cr.Lte("price", *f.MaxPrice)
	}
	return cr
}

func (r *serviceRepository) List(ctx context.Context, f *model.ServiceFilter, opts query.Options) (*query.Result[model.CatalogService], error) {
	return r.FindAll(ctx, r.buildCriteria(f), opts)
}

func (r *serviceRepository) Get(ctx context.Context, id int64) (*model.CatalogService, error) {
	return r.FindByID(ctx, id)
}

func (r *serviceRepository) GetOrFail(ctx context.Context, id int64) (*model.CatalogService, error) {
	return r.FindByIDOrFail(ctx, id)
}

func (r *serviceRepository) Count(ctx context.Context, f *model.ServiceFilter) (int64, error) {
	return r.Store.Count(ctx, r.buildCriteria(f))
}
