package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/crud"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	submitted   *model.CreateRequestRequest
	assignedTo  int64
	convertReq  *model.ConvertRequestRequest
	convertErr  error
	actor       *model.Actor
	convertedID int64
}

func (f *fakeService) Submit(_ context.Context, req model.CreateRequestRequest) (*model.RequestResponse, error) {
	f.submitted = &req
	return &model.RequestResponse{Request: model.Request{Base: model.Base{ID: 11}, Name: req.Name, Status: model.RequestStatusNew}}, nil
}

func (f *fakeService) List(_ context.Context, _ *model.RequestFilter, opts query.Options) (*query.Result[model.RequestResponse], error) {
	return query.NewResult([]model.RequestResponse{}, query.NewPagination(opts.Page, opts.Limit, 0)), nil
}

func (f *fakeService) Get(_ context.Context, id int64, _ repository.GetOptions) (*model.RequestResponse, error) {
	return &model.RequestResponse{Request: model.Request{Base: model.Base{ID: id}}}, nil
}

func (f *fakeService) Update(_ context.Context, id int64, _ model.UpdateRequestRequest, _ repository.UpdateOptions, _ *model.Actor) (*model.RequestResponse, error) {
	return &model.RequestResponse{Request: model.Request{Base: model.Base{ID: id}}}, nil
}

func (f *fakeService) UpdateStatus(_ context.Context, id int64, status string, _ *model.Actor) (*model.RequestResponse, error) {
	return &model.RequestResponse{Request: model.Request{Base: model.Base{ID: id}, Status: status}}, nil
}

func (f *fakeService) Delete(_ context.Context, _ int64, _ crud.DeleteOptions, _ *model.Actor) error {
	return nil
}

func (f *fakeService) Assign(_ context.Context, requestID, processorID int64, actor *model.Actor) (*model.RequestResponse, error) {
	f.assignedTo = processorID
	f.actor = actor
	return &model.RequestResponse{Request: model.Request{Base: model.Base{ID: requestID}, ProcessorID: &processorID}}, nil
}

func (f *fakeService) ConvertToCustomer(_ context.Context, requestID int64, _ *model.Actor) (*model.CustomerResponse, error) {
	f.convertedID = requestID
	return &model.CustomerResponse{Customer: model.Customer{Base: model.Base{ID: 80}}}, nil
}

func (f *fakeService) ConvertToAppointment(_ context.Context, requestID int64, conv model.ConvertRequestRequest, _ *model.Actor) (*model.AppointmentResponse, error) {
	if f.convertErr != nil {
		return nil, f.convertErr
	}
	f.convertedID = requestID
	f.convertReq = &conv
	return &model.AppointmentResponse{Appointment: model.Appointment{Base: model.Base{ID: 90}, Title: conv.Title}}, nil
}

func (f *fakeService) AddNote(_ context.Context, requestID int64, content string, _ *model.Actor) (*model.RequestNote, error) {
	return &model.RequestNote{ID: 1, RequestID: requestID, Content: content}, nil
}

func (f *fakeService) ListNotes(_ context.Context, _ int64) ([]model.RequestNote, error) {
	return []model.RequestNote{}, nil
}

func (f *fakeService) Stats(_ context.Context) (*model.RequestStats, error) {
	return &model.RequestStats{Total: 5, New: 2}, nil
}

func testRouter(h *Handler) *gin.Engine {
	r := gin.New()

	public := r.Group("")
	h.RegisterPublicRoutes(public)

	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextActor, &model.Actor{UserID: 3, Name: "Max Processor", IP: "10.0.0.2"})
	})
	api.POST("/requests/:id/assign", h.Assign)
	api.POST("/requests/:id/convert", h.ConvertToAppointment)
	api.POST("/requests/:id/convert-to-customer", h.ConvertToCustomer)
	return r
}

func TestSubmitAcceptsAnonymousForm(t *testing.T) {
	svc := &fakeService{}
	r := testRouter(NewHandler(svc))

	body := `{"name":"Erika Muster","email":"erika@example.com","message":"please call back"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	require.NotNil(t, svc.submitted)
	assert.Equal(t, "Erika Muster", svc.submitted.Name)
}

func TestSubmitRequiresValidEmail(t *testing.T) {
	r := testRouter(NewHandler(&fakeService{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests",
		strings.NewReader(`{"name":"Erika","email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"VALIDATION_ERROR"`)
}

func TestAssignBindsProcessor(t *testing.T) {
	svc := &fakeService{}
	r := testRouter(NewHandler(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/requests/11/assign",
		strings.NewReader(`{"processorId":42}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), svc.assignedTo)
	require.NotNil(t, svc.actor)
	assert.Equal(t, int64(3), svc.actor.UserID)
}

func TestConvertToAppointmentReturnsCreated(t *testing.T) {
	svc := &fakeService{}
	r := testRouter(NewHandler(svc))

	body := `{"title":"Kickoff","appointmentDate":"2026-09-01T10:00:00Z","duration":60}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/requests/11/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(11), svc.convertedID)
	require.NotNil(t, svc.convertReq)
	assert.Equal(t, "Kickoff", svc.convertReq.Title)
	assert.Equal(t, time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC), svc.convertReq.AppointmentDate)
}

func TestConvertConflictPassesThrough(t *testing.T) {
	svc := &fakeService{convertErr: apperrors.Conflict("request already converted", nil)}
	r := testRouter(NewHandler(svc))

	body := `{"title":"Kickoff","appointmentDate":"2026-09-01T10:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/requests/11/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"CONFLICT"`)
}

func TestConvertToCustomerReturnsCreated(t *testing.T) {
	svc := &fakeService{}
	r := testRouter(NewHandler(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/requests/11/convert-to-customer", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(11), svc.convertedID)
}
