package request

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
	"github.com/risingbsm/bsm-api/internal/service/notification"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

var (
	_ repository.RequestRepository      = (*fakeRequestRepo)(nil)
	_ repository.CustomerRepository     = (*fakeCustomerRepo)(nil)
	_ repository.UserRepository         = (*fakeUserRepo)(nil)
	_ repository.NotificationRepository = (*fakeNotificationRepo)(nil)
	_ repository.ActivityRepository     = (*memActivityRepo)(nil)
)

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

func (r *memActivityRepo) find(entityType, action string) *model.ActivityLog {
	for i := range r.entries {
		if r.entries[i].EntityType == entityType && r.entries[i].Action == action {
			return &r.entries[i]
		}
	}
	return nil
}

type fakeRequestRepo struct {
	nextID     int64
	apptNextID int64
	rows       map[int64]*model.Request
	notes      []model.RequestNote
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{rows: map[int64]*model.Request{}}
}

func (r *fakeRequestRepo) seed(req model.Request) *model.Request {
	r.nextID++
	req.ID = r.nextID
	if req.Status == "" {
		req.Status = model.RequestStatusNew
	}
	r.rows[req.ID] = &req
	return &req
}

func (r *fakeRequestRepo) List(_ context.Context, _ *model.RequestFilter, opts query.Options) (*query.Result[model.Request], error) {
	opts = opts.Normalized()
	rows := []model.Request{}
	for _, req := range r.rows {
		rows = append(rows, *req)
	}
	return query.NewResult(rows, query.NewPagination(opts.Page, opts.Limit, int64(len(rows)))), nil
}

func (r *fakeRequestRepo) Get(_ context.Context, id int64) (*model.Request, error) {
	req, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) GetOrFail(_ context.Context, id int64) (*model.Request, error) {
	req, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("request", id)
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) Create(_ context.Context, req *model.Request) (*model.Request, error) {
	return r.seed(*req), nil
}

func (r *fakeRequestRepo) Update(_ context.Context, id int64, patch map[string]interface{}, _ repository.UpdateOptions) (*model.Request, error) {
	req, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("request", id)
	}
	for k, v := range patch {
		switch k {
		case "name":
			req.Name = v.(string)
		case "status":
			req.Status = v.(string)
		case "processor_id":
			id := v.(int64)
			req.ProcessorID = &id
		case "customer_id":
			id := v.(int64)
			req.CustomerID = &id
		}
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) UpdateMany(_ context.Context, ids []int64, patch map[string]interface{}) (int64, error) {
	var n int64
	for _, id := range ids {
		if req, ok := r.rows[id]; ok {
			if status, ok := patch["status"].(string); ok {
				req.Status = status
			}
			n++
		}
	}
	return n, nil
}

func (r *fakeRequestRepo) Delete(_ context.Context, id int64, _ repository.DeleteOptions) error {
	if _, ok := r.rows[id]; !ok {
		return apperrors.NotFound("request", id)
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeRequestRepo) Count(_ context.Context, _ *model.RequestFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeRequestRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, req := range r.rows {
		counts[req.Status]++
	}
	return counts, nil
}

func (r *fakeRequestRepo) AddNote(_ context.Context, note *model.RequestNote) (*model.RequestNote, error) {
	note.ID = int64(len(r.notes) + 1)
	note.CreatedAt = time.Now()
	r.notes = append(r.notes, *note)
	return note, nil
}

func (r *fakeRequestRepo) ListNotes(_ context.Context, requestID int64) ([]model.RequestNote, error) {
	out := []model.RequestNote{}
	for _, n := range r.notes {
		if n.RequestID == requestID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ConvertToAppointment(_ context.Context, requestID int64, appt *model.Appointment) (*model.Appointment, error) {
	req, ok := r.rows[requestID]
	if !ok {
		return nil, apperrors.NotFound("request", requestID)
	}
	r.apptNextID++
	appt.ID = r.apptNextID
	req.AppointmentID = &appt.ID
	req.Status = model.RequestStatusInProgress
	cp := *appt
	return &cp, nil
}

type fakeCustomerRepo struct {
	nextID int64
	rows   map[int64]*model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{rows: map[int64]*model.Customer{}}
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
	r.nextID++
	cp := *c
	cp.ID = r.nextID
	r.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, id int64, _ map[string]interface{}, _ repository.UpdateOptions) (*model.Customer, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("customer", id)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) UpdateMany(_ context.Context, _ []int64, _ map[string]interface{}) (int64, error) {
	return 0, nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, _ int64, _ repository.DeleteOptions) error {
	return nil
}

func (r *fakeCustomerRepo) Count(_ context.Context, _ *model.CustomerFilter) (int64, error) {
	return int64(len(r.rows)), nil
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

type fakeUserRepo struct {
	nextID int64
	rows   map[int64]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[int64]*model.User{}}
}

func (r *fakeUserRepo) seed(u model.User) *model.User {
	r.nextID++
	u.ID = r.nextID
	r.rows[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) List(_ context.Context, f *model.UserFilter, opts query.Options) (*query.Result[model.User], error) {
	opts = opts.Normalized()
	rows := []model.User{}
	for _, u := range r.rows {
		if f != nil && f.Role != "" && u.Role != f.Role {
			continue
		}
		if f != nil && f.Status != "" && u.Status != f.Status {
			continue
		}
		rows = append(rows, *u)
	}
	return query.NewResult(rows, query.NewPagination(opts.Page, opts.Limit, int64(len(rows)))), nil
}

func (r *fakeUserRepo) Get(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetOrFail(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) (*model.User, error) {
	return r.seed(*u), nil
}

func (r *fakeUserRepo) Update(_ context.Context, id int64, _ map[string]interface{}, _ repository.UpdateOptions) (*model.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateMany(_ context.Context, _ []int64, _ map[string]interface{}) (int64, error) {
	return 0, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, _ int64, _ repository.DeleteOptions) error {
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context, _ *model.UserFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, _ int64, _ time.Time) error {
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, _ int64, _ string) error {
	return nil
}

type fakeNotificationRepo struct {
	nextID  int64
	created []model.Notification
	failing bool
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) (*model.Notification, error) {
	if r.failing {
		return nil, assert.AnError
	}
	r.nextID++
	cp := *n
	cp.ID = r.nextID
	r.created = append(r.created, cp)
	return &cp, nil
}

func (r *fakeNotificationRepo) ListForUser(_ context.Context, _ int64, _ *model.NotificationFilter) (*query.Result[model.Notification], error) {
	return query.NewResult([]model.Notification{}, query.NewPagination(1, 10, 0)), nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, _, _ int64) error       { return nil }
func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, _ int64) (int64, error) { return 0, nil }
func (r *fakeNotificationRepo) UnreadCount(_ context.Context, _ int64) (int64, error) { return 0, nil }
func (r *fakeNotificationRepo) NextUndispatched(_ context.Context, _ int) ([]model.Notification, error) {
	return nil, nil
}
func (r *fakeNotificationRepo) MarkDispatched(_ context.Context, _ []int64) error { return nil }
func (r *fakeNotificationRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	svc           *Service
	requests      *fakeRequestRepo
	customers     *fakeCustomerRepo
	users         *fakeUserRepo
	notifications *fakeNotificationRepo
	activity      *memActivityRepo
}

func newFixture() *fixture {
	f := &fixture{
		requests:      newFakeRequestRepo(),
		customers:     newFakeCustomerRepo(),
		users:         newFakeUserRepo(),
		notifications: &fakeNotificationRepo{},
		activity:      &memActivityRepo{},
	}
	recorder := activity.NewService(f.activity)
	notifier := notification.NewService(f.notifications, f.users)
	f.svc = NewService(f.requests, f.customers, f.users, recorder, notifier)
	return f
}

func strptr(s string) *string { return &s }

func TestSubmitCreatesRequestAndNotifiesStaff(t *testing.T) {
	f := newFixture()
	f.users.seed(model.User{Name: "Admin One", Role: model.UserRoleAdmin, Status: model.UserStatusActive})
	f.users.seed(model.User{Name: "Admin Two", Role: model.UserRoleAdmin, Status: model.UserStatusActive})
	f.users.seed(model.User{Name: "Manager", Role: model.UserRoleManager, Status: model.UserStatusActive})
	f.users.seed(model.User{Name: "Gone Admin", Role: model.UserRoleAdmin, Status: model.UserStatusInactive})
	f.users.seed(model.User{Name: "Employee", Role: model.UserRoleEmployee, Status: model.UserStatusActive})

	dto, err := f.svc.Submit(context.Background(), model.CreateRequestRequest{
		Name:    "Max Mustermann",
		Email:   "max@example.test",
		Message: strptr("Please call me back"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.RequestStatusNew, dto.Status)
	assert.Equal(t, "New", dto.StatusLabel)

	require.Len(t, f.notifications.created, 3, "active admins and managers get notified, nobody else")
	for _, n := range f.notifications.created {
		assert.Equal(t, "New request", n.Title)
		require.NotNil(t, n.Link)
		assert.Equal(t, "/requests/1", *n.Link)
	}

	entry := f.activity.find(model.EntityRequest, model.ActivityActionCreate)
	require.NotNil(t, entry)
	assert.Nil(t, entry.UserID, "public submissions are unattributed")
	require.NotNil(t, entry.Details)
	assert.Equal(t, "submitted via public form", *entry.Details)
}

func TestSubmitSurvivesNotificationFailure(t *testing.T) {
	f := newFixture()
	f.users.seed(model.User{Name: "Admin", Role: model.UserRoleAdmin, Status: model.UserStatusActive})
	f.notifications.failing = true

	dto, err := f.svc.Submit(context.Background(), model.CreateRequestRequest{
		Name:  "Max Mustermann",
		Email: "max@example.test",
	})
	require.NoError(t, err)
	assert.NotZero(t, dto.ID)
	assert.Len(t, f.requests.rows, 1)
}

func TestAssignSetsProcessorAndNotifies(t *testing.T) {
	f := newFixture()
	req := f.requests.seed(model.Request{Name: "Max Mustermann", Email: "max@example.test"})
	processor := f.users.seed(model.User{Name: "Sam Processor", Role: model.UserRoleEmployee, Status: model.UserStatusActive})

	dto, err := f.svc.Assign(context.Background(), req.ID, processor.ID, &model.Actor{UserID: 1, Name: "Jane Admin"})
	require.NoError(t, err)
	require.NotNil(t, dto.ProcessorID)
	assert.Equal(t, processor.ID, *dto.ProcessorID)

	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, processor.ID, f.notifications.created[0].UserID)
	assert.Equal(t, "Request assigned", f.notifications.created[0].Title)

	entry := f.activity.find(model.EntityRequest, model.ActivityActionAssign)
	require.NotNil(t, entry)
	require.NotNil(t, entry.Details)
	assert.Equal(t, "assigned to Sam Processor", *entry.Details)
}

func TestAssignRejectsInactiveProcessor(t *testing.T) {
	f := newFixture()
	req := f.requests.seed(model.Request{Name: "Max", Email: "max@example.test"})
	processor := f.users.seed(model.User{Name: "Sam", Status: model.UserStatusSuspended})

	_, err := f.svc.Assign(context.Background(), req.ID, processor.ID, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeBadRequest, apperrors.AsAppError(err).Code)
	assert.Nil(t, f.requests.rows[req.ID].ProcessorID)
}

func TestAssignMissingRequest(t *testing.T) {
	f := newFixture()
	f.users.seed(model.User{Name: "Sam", Status: model.UserStatusActive})

	_, err := f.svc.Assign(context.Background(), 404, 1, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestConvertToCustomerCopiesContactData(t *testing.T) {
	f := newFixture()
	req := f.requests.seed(model.Request{
		Name:  "Max Mustermann",
		Email: "max@example.test",
		Phone: strptr("+49 170 1234567"),
	})

	dto, err := f.svc.ConvertToCustomer(context.Background(), req.ID, &model.Actor{UserID: 1, Name: "Jane"})
	require.NoError(t, err)

	assert.Equal(t, "Max Mustermann", dto.Name)
	require.NotNil(t, dto.Email)
	assert.Equal(t, "max@example.test", *dto.Email)
	assert.Equal(t, model.CustomerStatusActive, dto.Status)

	require.NotNil(t, f.requests.rows[req.ID].CustomerID)
	assert.Equal(t, dto.ID, *f.requests.rows[req.ID].CustomerID)

	require.NotNil(t, f.activity.find(model.EntityRequest, model.ActivityActionConvert))
	created := f.activity.find(model.EntityCustomer, model.ActivityActionCreate)
	require.NotNil(t, created)
	require.NotNil(t, created.Details)
	assert.Equal(t, "created from request 1", *created.Details)
}

func TestConvertToCustomerTwiceConflicts(t *testing.T) {
	f := newFixture()
	req := f.requests.seed(model.Request{Name: "Max", Email: "max@example.test"})

	_, err := f.svc.ConvertToCustomer(context.Background(), req.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.ConvertToCustomer(context.Background(), req.ID, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
	assert.Len(t, f.customers.rows, 1)
}

func TestConvertToAppointmentDefaultsDuration(t *testing.T) {
	f := newFixture()
	req := f.requests.seed(model.Request{Name: "Max", Email: "max@example.test"})
	date := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

	dto, err := f.svc.ConvertToAppointment(context.Background(), req.ID, model.ConvertRequestRequest{
		Title:           "Initial consultation",
		AppointmentDate: date,
	}, &model.Actor{UserID: 1, Name: "Jane"})
	require.NoError(t, err)

	assert.Equal(t, 60, dto.Duration)
	assert.Equal(t, model.AppointmentStatusPlanned, dto.Status)
	assert.Equal(t, date.Add(60*time.Minute), dto.EndDate)

	row := f.requests.rows[req.ID]
	require.NotNil(t, row.AppointmentID)
	assert.Equal(t, dto.ID, *row.AppointmentID)
	assert.Equal(t, model.RequestStatusInProgress, row.Status)
}

func TestConvertToAppointmentTwiceConflicts(t *testing.T) {
	f := newFixture()
	req := f.requests.seed(model.Request{Name: "Max", Email: "max@example.test"})
	conv := model.ConvertRequestRequest{Title: "Consultation", AppointmentDate: time.Now().Add(24 * time.Hour)}

	_, err := f.svc.ConvertToAppointment(context.Background(), req.ID, conv, nil)
	require.NoError(t, err)

	_, err = f.svc.ConvertToAppointment(context.Background(), req.ID, conv, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConflict, apperrors.AsAppError(err).Code)
}

func TestConvertToAppointmentAttachesNote(t *testing.T) {
	f := newFixture()
	req := f.requests.seed(model.Request{Name: "Max", Email: "max@example.test"})

	_, err := f.svc.ConvertToAppointment(context.Background(), req.ID, model.ConvertRequestRequest{
		Title:           "Consultation",
		AppointmentDate: time.Now().Add(24 * time.Hour),
		Note:            "customer prefers mornings",
	}, &model.Actor{UserID: 1, Name: "Jane"})
	require.NoError(t, err)

	notes, err := f.svc.ListNotes(context.Background(), req.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "customer prefers mornings", notes[0].Content)
	assert.Equal(t, "Jane", notes[0].UserName)
}

func TestAddNoteMissingRequest(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AddNote(context.Background(), 404, "hello", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}

func TestStatsSumsStatuses(t *testing.T) {
	f := newFixture()
	f.requests.seed(model.Request{Name: "a", Email: "a@example.test", Status: model.RequestStatusNew})
	f.requests.seed(model.Request{Name: "b", Email: "b@example.test", Status: model.RequestStatusNew})
	f.requests.seed(model.Request{Name: "c", Email: "c@example.test", Status: model.RequestStatusInProgress})
	f.requests.seed(model.Request{Name: "d", Email: "d@example.test", Status: model.RequestStatusCompleted})

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.New)
	assert.Equal(t, int64(1), stats.InProgress)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(0), stats.Cancelled)
	assert.Equal(t, int64(4), stats.Total)
}
