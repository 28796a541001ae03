// Package notification exposes the in-app notification endpoints. All
// read paths are scoped to the authenticated user; nobody can list or
// mark another user's notifications.
package notification

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// Service is the slice of the notification service this handler
// consumes.
type Service interface {
	ListForUser(ctx context.Context, userID int64, f *model.NotificationFilter) (*query.Result[model.Notification], error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	NotifyUser(ctx context.Context, userID int64, title, message, typ string, link *string) (*model.Notification, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PATCH("/:id/read", h.MarkRead)
		notifications.PATCH("/read-all", h.MarkAllRead)

		// Creating a notification for someone else is a privileged act.
		notifications.POST("", authz.RequirePermission("notifications.send"), h.Create)
	}
}

func (h *Handler) List(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		httputil.Error(c, apperrors.Unauthorized(""))
		return
	}

	var f model.NotificationFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		httputil.BindError(c, err)
		return
	}

	res, err := h.svc.ListForUser(c.Request.Context(), actor.UserID, &f)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Paginated(c, res.Data, res.Pagination)
}

func (h *Handler) UnreadCount(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		httputil.Error(c, apperrors.Unauthorized(""))
		return
	}

	count, err := h.svc.UnreadCount(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"count": count})
}

func (h *Handler) MarkRead(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		httputil.Error(c, apperrors.Unauthorized(""))
		return
	}

	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), id, actor.UserID); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "notification marked read")
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		httputil.Error(c, apperrors.Unauthorized(""))
		return
	}

	updated, err := h.svc.MarkAllRead(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, gin.H{"updated": updated})
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	typ := req.Type
	if typ == "" {
		typ = model.NotificationTypeInfo
	}

	n, err := h.svc.NotifyUser(c.Request.Context(), req.UserID, req.Title, req.Message, typ, req.Link)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, n)
}
