package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
)

type projectRepository struct {
	*Store[model.Project]
}

func NewProjectRepository(db *sqlx.DB) repository.ProjectRepository {
	return &projectRepository{
		Store: NewStore[model.Project](db, Meta{
			Table:  "projects",
			Entity: "project",
			Insert: []string{
				"name", "customer_id", "service_id", "start_date",
				"end_date", "amount", "description", "status",
			},
			Updatable: map[string]bool{
				"name": true, "service_id": true, "start_date": true,
				"end_date": true, "amount": true, "description": true, "status": true,
			},
			Sortable: map[string]bool{
				"id": true, "name": true, "amount": true, "start_date": true,
				"status": true, "created_at": true, "updated_at": true,
			},
			DefaultSort: "created_at DESC",
		}),
	}
}

func (r *projectRepository) buildCriteria(f *model.ProjectFilter) *query.Criteria {
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
	if f.CustomerID != nil {
		cr.Eq("customer_id", *f.CustomerID)
	}
	if f.ServiceID != nil {
		cr.Eq("service_id", *f.ServiceID)
	}
	return cr
}

func (r *projectRepository) List(ctx context.Context, f *model.ProjectFilter, opts query.Options) (*query.Result[model.Project], error) {
	return r.FindAll(ctx, r.buildCriteria(f), opts)
}

func (r *projectRepository) Get(ctx context.Context, id int64) (*model.Project, error) {
	return r.FindByID(ctx, id)
}

func (r *projectRepository) GetOrFail(ctx context.Context, id int64) (*model.Project, error) {
	return r.FindByIDOrFail(ctx, id)
}

func (r *projectRepository) Count(ctx context.Context, f *model.ProjectFilter) (int64, error) {
	return r.Store.Count(ctx, r.buildCriteria(f))
}

func (r *projectRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.CountBy(ctx, "status", query.New())
}
