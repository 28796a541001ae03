// Package appointment exposes the appointment endpoints: CRUD plus the
// lifecycle operations (cancel, complete, reschedule) and notes.
package appointment

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/crud"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// Service is the slice of the appointment service this handler
// consumes.
type Service interface {
	List(ctx context.Context, f *model.AppointmentFilter, opts query.Options) (*query.Result[model.AppointmentResponse], error)
	Get(ctx context.Context, id int64, opts repository.GetOptions) (*model.AppointmentResponse, error)
	Create(ctx context.Context, req model.CreateAppointmentRequest, actor *model.Actor) (*model.AppointmentResponse, error)
	Update(ctx context.Context, id int64, req model.UpdateAppointmentRequest, opts repository.UpdateOptions, actor *model.Actor) (*model.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string, actor *model.Actor) (*model.AppointmentResponse, error)
	Delete(ctx context.Context, id int64, opts crud.DeleteOptions, actor *model.Actor) error
	Cancel(ctx context.Context, id int64, reason string, actor *model.Actor) (*model.AppointmentResponse, error)
	Complete(ctx context.Context, id int64, notes string, actor *model.Actor) (*model.AppointmentResponse, error)
	Reschedule(ctx context.Context, id int64, req model.RescheduleAppointmentRequest, actor *model.Actor) (*model.AppointmentResponse, error)
	AddNote(ctx context.Context, appointmentID int64, content string, actor *model.Actor) (*model.AppointmentNote, error)
	ListNotes(ctx context.Context, appointmentID int64) ([]model.AppointmentNote, error)
	Upcoming(ctx context.Context, limit int) ([]model.AppointmentResponse, error)
	Stats(ctx context.Context) (*model.AppointmentStats, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	view := authz.RequirePermission("appointments.view")
	edit := authz.RequirePermission("appointments.edit")

	appointments := r.Group("/appointments")
	{
		appointments.GET("", view, h.List)
		appointments.GET("/stats", view, h.Stats)
		appointments.GET("/upcoming", view, h.Upcoming)
		appointments.GET("/:id", view, h.Get)
		appointments.GET("/:id/notes", view, h.ListNotes)
		appointments.POST("", edit, h.Create)
		appointments.PATCH("/:id", edit, h.Update)
		appointments.PATCH("/:id/status", edit, h.UpdateStatus)
		appointments.POST("/:id/cancel", edit, h.Cancel)
		appointments.POST("/:id/complete", edit, h.Complete)
		appointments.POST("/:id/reschedule", edit, h.Reschedule)
		appointments.POST("/:id/notes", edit, h.AddNote)
		appointments.DELETE("/:id", authz.RequirePermission("appointments.delete"), h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	var f model.AppointmentFilter
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

	appointment, err := h.svc.Get(c.Request.Context(), id, repository.GetOptions{Fail: true})
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, appointment)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	appointment, err := h.svc.Create(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, appointment)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	appointment, err := h.svc.Update(c.Request.Context(), id, req,
		repository.UpdateOptions{CheckExists: true}, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, appointment)
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

	appointment, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, appointment)
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
	httputil.OKMessage(c, nil, "appointment deleted")
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	appointment, err := h.svc.Cancel(c.Request.Context(), id, req.Reason, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, appointment)
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	appointment, err := h.svc.Complete(c.Request.Context(), id, req.Notes, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, appointment)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	appointment, err := h.svc.Reschedule(c.Request.Context(), id, req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, appointment)
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

func (h *Handler) Upcoming(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	upcoming, err := h.svc.Upcoming(c.Request.Context(), limit)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, upcoming)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, stats)
}
