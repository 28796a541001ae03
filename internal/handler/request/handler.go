// Package request exposes the request endpoints, including the
// unauthenticated submission used by the public contact form.
package request

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/crud"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// Service is the slice of the request service this handler consumes.
type Service interface {
	Submit(ctx context.Context, req model.CreateRequestRequest) (*model.RequestResponse, error)
	List(ctx context.Context, f *model.RequestFilter, opts query.Options) (*query.Result[model.RequestResponse], error)
	Get(ctx context.Context, id int64, opts repository.GetOptions) (*model.RequestResponse, error)
	Update(ctx context.Context, id int64, req model.UpdateRequestRequest, opts repository.UpdateOptions, actor *model.Actor) (*model.RequestResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string, actor *model.Actor) (*model.RequestResponse, error)
	Delete(ctx context.Context, id int64, opts crud.DeleteOptions, actor *model.Actor) error
	Assign(ctx context.Context, requestID, processorID int64, actor *model.Actor) (*model.RequestResponse, error)
	ConvertToCustomer(ctx context.Context, requestID int64, actor *model.Actor) (*model.CustomerResponse, error)
	ConvertToAppointment(ctx context.Context, requestID int64, conv model.ConvertRequestRequest, actor *model.Actor) (*model.AppointmentResponse, error)
	AddNote(ctx context.Context, requestID int64, content string, actor *model.Actor) (*model.RequestNote, error)
	ListNotes(ctx context.Context, requestID int64) ([]model.RequestNote, error)
	Stats(ctx context.Context) (*model.RequestStats, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the unauthenticated contact form.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/requests", h.Submit)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	view := authz.RequirePermission("requests.view")
	edit := authz.RequirePermission("requests.edit")

	requests := r.Group("/requests")
	{
		requests.GET("", view, h.List)
		requests.GET("/stats", view, h.Stats)
		requests.GET("/:id", view, h.Get)
		requests.GET("/:id/notes", view, h.ListNotes)
		requests.PATCH("/:id", edit, h.Update)
		requests.PATCH("/:id/status", edit, h.UpdateStatus)
		requests.POST("/:id/notes", edit, h.AddNote)
		requests.POST("/:id/assign", authz.RequirePermission("requests.assign"), h.Assign)
		requests.POST("/:id/convert", authz.RequirePermission("requests.convert"), h.ConvertToAppointment)
		requests.POST("/:id/convert-to-customer", authz.RequirePermission("requests.convert"), h.ConvertToCustomer)
		requests.DELETE("/:id", authz.RequirePermission("requests.delete"), h.Delete)
	}
}

// Submit is the public entry point. No actor, no auth; throttling
// happens in the router.
func (h *Handler) Submit(c *gin.Context) {
	var req model.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	created, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, created)
}

func (h *Handler) List(c *gin.Context) {
	var f model.RequestFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		httputil.BindError(c, err)
		return
	}

	res, err := h.svc.List(c.Request.Context(), &f, f.Options())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Paginated(c, res.Data, res.Pagination)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	req, err := h.svc.Get(c.Request.Context(), id, repository.GetOptions{Fail: true})
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, req)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, req,
		repository.UpdateOptions{CheckExists: true}, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, updated)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	opts := crud.DeleteOptions{Hard: c.Query("hard") == "true"}
	if err := h.svc.Delete(c.Request.Context(), id, opts, middleware.ActorFrom(c)); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "request deleted")
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.AssignRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	updated, err := h.svc.Assign(c.Request.Context(), id, req.ProcessorID, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, updated)
}

func (h *Handler) ConvertToCustomer(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	customer, err := h.svc.ConvertToCustomer(c.Request.Context(), id, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, customer)
}

func (h *Handler) ConvertToAppointment(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.ConvertRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	appointment, err := h.svc.ConvertToAppointment(c.Request.Context(), id, req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, appointment)
}

func (h *Handler) AddNote(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	note, err := h.svc.AddNote(c.Request.Context(), id, req.Content, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, note)
}

func (h *Handler) ListNotes(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	notes, err := h.svc.ListNotes(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, notes)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, stats)
}
