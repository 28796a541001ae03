// Package customer exposes the customer endpoints: CRUD, status
// transitions, notes and aggregate stats.
package customer

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

// Service is the slice of the customer service this handler consumes.
type Service interface {
	List(ctx context.Context, f *model.CustomerFilter, opts query.Options) (*query.Result[model.CustomerResponse], error)
	Get(ctx context.Context, id int64, opts repository.GetOptions) (*model.CustomerResponse, error)
	Create(ctx context.Context, req model.CreateCustomerRequest, actor *model.Actor) (*model.CustomerResponse, error)
	Update(ctx context.Context, id int64, req model.UpdateCustomerRequest, opts repository.UpdateOptions, actor *model.Actor) (*model.CustomerResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string, actor *model.Actor) (*model.CustomerResponse, error)
	BulkUpdateStatus(ctx context.Context, ids []int64, status string, actor *model.Actor) (int64, error)
	Delete(ctx context.Context, id int64, opts crud.DeleteOptions, actor *model.Actor) error
	AddNote(ctx context.Context, customerID int64, content string, actor *model.Actor) (*model.CustomerNote, error)
	ListNotes(ctx context.Context, customerID int64) ([]model.CustomerNote, error)
	Stats(ctx context.Context) (*model.CustomerStats, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	view := authz.RequirePermission("customers.view")
	edit := authz.RequirePermission("customers.edit")

	customers := r.Group("/customers")
	{
		customers.GET("", view, h.List)
		customers.GET("/stats", view, h.Stats)
		customers.GET("/:id", view, h.Get)
		customers.GET("/:id/notes", view, h.ListNotes)
		customers.POST("", edit, h.Create)
		customers.PATCH("/:id", edit, h.Update)
		customers.PATCH("/:id/status", edit, h.UpdateStatus)
		customers.PATCH("/status", edit, h.BulkUpdateStatus)
		customers.POST("/:id/notes", edit, h.AddNote)
		customers.DELETE("/:id", authz.RequirePermission("customers.delete"), h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	var f model.CustomerFilter
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

	customer, err := h.svc.Get(c.Request.Context(), id, repository.GetOptions{Fail: true})
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, customer)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	customer, err := h.svc.Create(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, customer)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	customer, err := h.svc.Update(c.Request.Context(), id, req,
		repository.UpdateOptions{CheckExists: true}, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, customer)
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

	customer, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, customer)
}

func (h *Handler) BulkUpdateStatus(c *gin.Context) {
	var req model.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	updated, err := h.svc.BulkUpdateStatus(c.Request.Context(), req.IDs, req.Status, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"updated": updated})
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
	httputil.OKMessage(c, nil, "customer deleted")
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
