// Package project exposes the project endpoints.
package project

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

// Service is the slice of the project service this handler consumes.
type Service interface {
	List(ctx context.Context, f *model.ProjectFilter, opts query.Options) (*query.Result[model.ProjectResponse], error)
	ListForCustomer(ctx context.Context, customerID int64) ([]model.ProjectResponse, error)
	Get(ctx context.Context, id int64, opts repository.GetOptions) (*model.ProjectResponse, error)
	Create(ctx context.Context, req model.CreateProjectRequest, actor *model.Actor) (*model.ProjectResponse, error)
	Update(ctx context.Context, id int64, req model.UpdateProjectRequest, opts repository.UpdateOptions, actor *model.Actor) (*model.ProjectResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string, actor *model.Actor) (*model.ProjectResponse, error)
	Delete(ctx context.Context, id int64, opts crud.DeleteOptions, actor *model.Actor) error
	Stats(ctx context.Context) (map[string]int64, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	view := authz.RequirePermission("projects.view")
	edit := authz.RequirePermission("projects.edit")

	projects := r.Group("/projects")
	{
		projects.GET("", view, h.List)
		projects.GET("/stats", view, h.Stats)
		projects.GET("/customer/:id", view, h.ListForCustomer)
		projects.GET("/:id", view, h.Get)
		projects.POST("", edit, h.Create)
		projects.PATCH("/:id", edit, h.Update)
		projects.PATCH("/:id/status", edit, h.UpdateStatus)
		projects.DELETE("/:id", authz.RequirePermission("projects.delete"), h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	var f model.ProjectFilter
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

func (h *Handler) ListForCustomer(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	projects, err := h.svc.ListForCustomer(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, projects)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	project, err := h.svc.Get(c.Request.Context(), id, repository.GetOptions{Fail: true})
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, project)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	project, err := h.svc.Create(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, project)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	project, err := h.svc.Update(c.Request.Context(), id, req,
		repository.UpdateOptions{CheckExists: true}, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, project)
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

	project, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, project)
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
	httputil.OKMessage(c, nil, "project deleted")
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, stats)
}
