package customer

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
	"github.com/risingbsm/bsm-api/internal/service/crud"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

var _ repository.CustomerRepository = (*fakeRepo)(nil)

type fakeRepo struct {
	nextID int64
	rows   map[int64]*model.Customer
	notes  []model.CustomerNote
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]*model.Customer{}}
}

func (r *fakeRepo) seed(c model.Customer) *model.Customer {
	r.nextID++
	c.ID = r.nextID
	if c.Status == "" {
		c.Status = model.CustomerStatusActive
	}
	r.rows[c.ID] = &c
	return &c
}

func (r *fakeRepo) List(_ context.Context, f *model.CustomerFilter, opts query.Options) (*query.Result[model.Customer], error) {
	opts = opts.Normalized()
	rows := []model.Customer{}
	for _, c := range r.rows {
		if f != nil && f.Status != "" && c.Status != f.Status {
			continue
		}
		if f != nil && f.Status == "" && !opts.IncludeDeleted && c.Status == model.CustomerStatusDeleted {
			continue
		}
		rows = append(rows, *c)
	}
	return query.NewResult(rows, query.NewPagination(opts.Page, opts.Limit, int64(len(rows)))), nil
}

func (r *fakeRepo) Get(_ context.Context, id int64) (*model.Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) GetOrFail(_ context.Context, id int64) (*model.Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("customer", id)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) Create(_ context.Context, c *model.Customer) (*model.Customer, error) {
	return r.seed(*c), nil
}

func (r *fakeRepo) Update(_ context.Context, id int64, patch map[string]interface{}, _ repository.UpdateOptions) (*model.Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("customer", id)
	}
	for k, v := range patch {
		switch k {
		case "name":
			c.Name = v.(string)
		case "status":
			c.Status = v.(string)
		}
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) UpdateMany(_ context.Context, ids []int64, patch map[string]interface{}) (int64, error) {
	var n int64
	for _, id := range ids {
		if c, ok := r.rows[id]; ok {
			if status, ok := patch["status"].(string); ok {
				c.Status = status
			}
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64, _ repository.DeleteOptions) error {
	if _, ok := r.rows[id]; !ok {
		return apperrors.NotFound("customer", id)
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRepo) Count(_ context.Context, _ *model.CustomerFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, c := range r.rows {
		counts[c.Status]++
	}
	return counts, nil
}

func (r *fakeRepo) AddNote(_ context.Context, note *model.CustomerNote) (*model.CustomerNote, error) {
	note.ID = int64(len(r.notes) + 1)
	note.CreatedAt = time.Now()
	r.notes = append(r.notes, *note)
	return note, nil
}

func (r *fakeRepo) ListNotes(_ context.Context, customerID int64) ([]model.CustomerNote, error) {
	out := []model.CustomerNote{}
	for _, n := range r.notes {
		if n.CustomerID == customerID {
			out = append(out, n)
		}
	}
	return out, nil
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

func newTestService(repo *fakeRepo) (*Service, *memActivityRepo) {
	logs := &memActivityRepo{}
	return NewService(repo, activity.NewService(logs)), logs
}

func TestAddNoteAttributesActor(t *testing.T) {
	repo := newFakeRepo()
	c := repo.seed(model.Customer{Name: "Acme GmbH"})
	svc, logs := newTestService(repo)

	note, err := svc.AddNote(context.Background(), c.ID, "prefers email contact", &model.Actor{UserID: 5, Name: "Jane Admin"})
	require.NoError(t, err)
	require.NotNil(t, note.UserID)
	assert.Equal(t, int64(5), *note.UserID)
	assert.Equal(t, "Jane Admin", note.UserName)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, model.ActivityActionNote, logs.entries[0].Action)
	require.NotNil(t, logs.entries[0].Details)
	assert.Equal(t, "prefers email contact", *logs.entries[0].Details)
}

func TestAddNoteMissingCustomer(t *testing.T) {
	repo := newFakeRepo()
	svc, logs := newTestService(repo)

	_, err := svc.AddNote(context.Background(), 404, "hello", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
	assert.Empty(t, logs.entries)
}

func TestListNotesOnlyForCustomer(t *testing.T) {
	repo := newFakeRepo()
	a := repo.seed(model.Customer{Name: "Acme GmbH"})
	b := repo.seed(model.Customer{Name: "Beta AG"})
	svc, _ := newTestService(repo)
	ctx := context.Background()

	_, err := svc.AddNote(ctx, a.ID, "first", nil)
	require.NoError(t, err)
	_, err = svc.AddNote(ctx, b.ID, "other", nil)
	require.NoError(t, err)

	notes, err := svc.ListNotes(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "first", notes[0].Content)
}

func TestStatsExcludeSoftDeleted(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(model.Customer{Name: "a"})
	repo.seed(model.Customer{Name: "b"})
	repo.seed(model.Customer{Name: "c", Status: model.CustomerStatusInactive})
	repo.seed(model.Customer{Name: "d", Status: model.CustomerStatusLead})
	repo.seed(model.Customer{Name: "e", Status: model.CustomerStatusDeleted})
	svc, _ := newTestService(repo)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Active)
	assert.Equal(t, int64(1), stats.Inactive)
	assert.Equal(t, int64(1), stats.Leads)
	assert.Equal(t, int64(4), stats.Total, "deleted customers stay out of the totals")
}

func TestSoftDeleteHidesCustomerFromDefaultList(t *testing.T) {
	repo := newFakeRepo()
	c := repo.seed(model.Customer{Name: "Acme GmbH"})
	svc, _ := newTestService(repo)
	ctx := context.Background()

	err := svc.Delete(ctx, c.ID, crud.DeleteOptions{}, &model.Actor{UserID: 1, Name: "Jane"})
	require.NoError(t, err)

	res, err := svc.List(ctx, &model.CustomerFilter{}, query.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Data)

	kept, err := svc.List(ctx, &model.CustomerFilter{}, query.Options{IncludeDeleted: true})
	require.NoError(t, err)
	require.Len(t, kept.Data, 1)
	assert.Equal(t, model.CustomerStatusDeleted, kept.Data[0].Status)
}
