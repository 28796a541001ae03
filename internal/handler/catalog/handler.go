// Package catalog exposes the service catalog endpoints. The active
// list is public so the booking form can show what is offered.
package catalog

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

// Service is the slice of the catalog service this handler consumes.
type Service interface {
	List(ctx context.Context, f *model.ServiceFilter, opts query.Options) (*query.Result[model.ServiceResponse], error)
	ListActive(ctx context.Context) ([]model.ServiceResponse, error)
	Get(ctx context.Context, id int64, opts repository.GetOptions) (*model.ServiceResponse, error)
	Create(ctx context.Context, req model.CreateServiceRequest, actor *model.Actor) (*model.ServiceResponse, error)
	Update(ctx context.Context, id int64, req model.UpdateServiceRequest, opts repository.UpdateOptions, actor *model.Actor) (*model.ServiceResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string, actor *model.Actor) (*model.ServiceResponse, error)
	Delete(ctx context.Context, id int64, opts crud.DeleteOptions, actor *model.Actor) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts the read-only catalog for the public
// booking form. The path is a static sibling of /services/:id so it can
// live on an unauthenticated group without colliding with the
// protected listing.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/services/active", h.ListActive)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	view := authz.RequirePermission("services.view")
	edit := authz.RequirePermission("services.edit")

	services := r.Group("/services")
	{
		services.GET("", view, h.List)
		services.GET("/:id", view, h.Get)
		services.POST("", edit, h.Create)
		services.PATCH("/:id", edit, h.Update)
		services.PATCH("/:id/status", edit, h.UpdateStatus)
		services.DELETE("/:id", authz.RequirePermission("services.delete"), h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	var f model.ServiceFilter
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

func (h *Handler) ListActive(c *gin.Context) {
	services, err := h.svc.ListActive(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, services)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	service, err := h.svc.Get(c.Request.Context(), id, repository.GetOptions{Fail: true})
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, service)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	service, err := h.svc.Create(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, service)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	service, err := h.svc.Update(c.Request.Context(), id, req,
		repository.UpdateOptions{CheckExists: true}, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, service)
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

	service, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, service)
}

// Delete retires a service. The catalog keeps the row so existing
// projects and invoices stay resolvable.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, crud.DeleteOptions{}, middleware.ActorFrom(c)); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "service retired")
}
