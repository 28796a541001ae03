package project

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

var (
	_ repository.ProjectRepository  = (*fakeRepo)(nil)
	_ repository.CustomerRepository = (*fakeCustomerRepo)(nil)
)

type fakeRepo struct {
	nextID int64
	rows   map[int64]*model.Project
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]*model.Project{}}
}

func (r *fakeRepo) List(_ context.Context, f *model.ProjectFilter, opts query.Options) (*query.Result[model.Project], error) {
	opts = opts.Normalized()
	rows := []model.Project{}
	for _, p := range r.rows {
		if f != nil && f.CustomerID != nil && p.CustomerID != *f.CustomerID {
			continue
		}
		rows = append(rows, *p)
	}
	return query.NewResult(rows, query.NewPagination(opts.Page, opts.Limit, int64(len(rows)))), nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (*model.Project, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetOrFail(_ context.Context, id int64) (*model.Project, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("project", id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) Create(_ context.Context, p *model.Project) (*model.Project, error) {
	r.nextID++
	cp := *p
	cp.ID = r.nextID
	r.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, patch map[string]interface{}, _ repository.UpdateOptions) (*model.Project, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("project", id)
	}
	if status, ok := patch["status"].(string); ok {
		p.Status = status
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) UpdateMany(_ context.Context, ids []int64, patch map[string]interface{}) (int64, error) {
	var n int64
	for _, id := range ids {
		if p, ok := r.rows[id]; ok {
			if status, ok := patch["status"].(string); ok {
				p.Status = status
			}
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64, _ repository.DeleteOptions) error {
	if _, ok := r.rows[id]; !ok {
		return apperrors.NotFound("project", id)
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) Count(_ context.Context, _ *model.ProjectFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, p := range r.rows {
		counts[p.Status]++
	}
	return counts, nil
}

type fakeCustomerRepo struct {
	rows map[int64]*model.Customer
}

func (r *fakeCustomerRepo) List(_ context.Context, _ *model.CustomerFilter, opts query.Options) (*query.Result[model.Customer], error) {
	opts = opts.Normalized()
	return query.NewResult([]model.Customer{}, query.NewPagination(opts.Page, opts.Limit, 0)), nil
}

func (r *fakeCustomerRepo) Get(_ context.Context, id int64) (*model.Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetOrFail(_ context.Context, id int64) (*model.Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("customer", id)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *model.Customer) (*model.Customer, error) {
	return c, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, id int64, _ map[string]interface{}, _ repository.UpdateOptions) (*model.Customer, error) {
	return nil, apperrors.NotFound("customer", id)
}

func (r *fakeCustomerRepo) UpdateMany(_ context.Context, _ []int64, _ map[string]interface{}) (int64, error) {
	return 0, nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, _ int64, _ repository.DeleteOptions) error {
	return nil
}

func (r *fakeCustomerRepo) Count(_ context.Context, _ *model.CustomerFilter) (int64, error) {
	return 0, nil
}

func (r *fakeCustomerRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	return map[string]int64{}, nil
}

func (r *fakeCustomerRepo) AddNote(_ context.Context, note *model.CustomerNote) (*model.CustomerNote, error) {
	return note, nil
}

func (r *fakeCustomerRepo) ListNotes(_ context.Context, _ int64) ([]model.CustomerNote, error) {
	return []model.CustomerNote{}, nil
}

type memActivityRepo struct {
	entries []model.ActivityLog
}

func (r *memActivityRepo) Create(_ context.Context, entry *model.ActivityLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memActivityRepo) List(_ context.Context, _ *model.ActivityFilter) (*query.Result[model.ActivityLog], error) {
	return query.NewResult(r.entries, query.NewPagination(1, len(r.entries)+1, int64(len(r.entries)))), nil
}

func (r *memActivityRepo) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func newTestService() (*Service, *fakeRepo, *fakeCustomerRepo) {
	repo := newFakeRepo()
	customers := &fakeCustomerRepo{rows: map[int64]*model.Customer{
		1: {Base: model.Base{ID: 1}, Name: "Acme GmbH", Status: model.CustomerStatusActive},
	}}
	svc := NewService(repo, customers, activity.NewService(&memActivityRepo{}))
	return svc, repo, customers
}

func TestCreateRequiresExistingCustomer(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Create(context.Background(), model.CreateProjectRequest{
		Name:       "Website relaunch",
		CustomerID: 404,
	}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
	assert.Empty(t, repo.rows, "no project row without a valid customer")
}

func TestCreateStartsAsNew(t *testing.T) {
	svc, _, _ := newTestService()

	dto, err := svc.Create(context.Background(), model.CreateProjectRequest{
		Name:       "Website relaunch",
		CustomerID: 1,
		Amount:     4200,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusNew, dto.Status)
	assert.Equal(t, float64(4200), dto.Amount)
}

func TestListForCustomerFilters(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	repo.Create(ctx, &model.Project{Name: "one", CustomerID: 1, Status: model.ProjectStatusNew})
	repo.Create(ctx, &model.Project{Name: "other", CustomerID: 2, Status: model.ProjectStatusNew})

	out, err := svc.ListForCustomer(ctx, 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "one", out[0].Name)
}

func TestStatsPassesThroughCounts(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	repo.Create(ctx, &model.Project{Name: "a", CustomerID: 1, Status: model.ProjectStatusNew})
	repo.Create(ctx, &model.Project{Name: "b", CustomerID: 1, Status: model.ProjectStatusInProgress})
	repo.Create(ctx, &model.Project{Name: "c", CustomerID: 1, Status: model.ProjectStatusInProgress})

	counts, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.ProjectStatusNew])
	assert.Equal(t, int64(2), counts[model.ProjectStatusInProgress])
}
