// Package activity exposes the read side of the activity log.
package activity

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// Service is the slice of the activity service this handler consumes.
// Writes go through the entity services, never through HTTP.
type Service interface {
	List(ctx context.Context, f *model.ActivityFilter) (*query.Result[model.ActivityLog], error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	r.GET("/activity", authz.RequirePermission("activity.view"), h.List)
}

func (h *Handler) List(c *gin.Context) {
	var f model.ActivityFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		httputil.BindError(c, err)
		return
	}

	res, err := h.svc.List(c.Request.Context(), &f)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Paginated(c, res.Data, res.Pagination)
}
