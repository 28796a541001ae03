// Package dashboard exposes the aggregated stats endpoint.
package dashboard

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// Service is the slice of the dashboard service this handler consumes.
type Service interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	r.GET("/dashboard/stats", authz.RequirePermission("dashboard.view"), h.Stats)
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, stats)
}
