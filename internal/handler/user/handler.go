// Package user exposes staff account management endpoints.
package user

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/crud"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// Service is the slice of the user service this handler consumes.
type Service interface {
	List(ctx context.Context, f *model.UserFilter, opts query.Options) (*query.Result[model.UserResponse], error)
	Get(ctx context.Context, id int64, opts repository.GetOptions) (*model.UserResponse, error)
	Create(ctx context.Context, req model.CreateUserRequest, actor *model.Actor) (*model.UserResponse, error)
	Update(ctx context.Context, id int64, req model.UpdateUserRequest, opts repository.UpdateOptions, actor *model.Actor) (*model.UserResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string, actor *model.Actor) (*model.UserResponse, error)
	BulkUpdateStatus(ctx context.Context, ids []int64, status string, actor *model.Actor) (int64, error)
	Delete(ctx context.Context, id int64, opts crud.DeleteOptions, actor *model.Actor) error
	ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest, actor *model.Actor) error
	ResetPassword(ctx context.Context, userID int64, newPassword string, actor *model.Actor) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	view := authz.RequirePermission("users.view")
	edit := authz.RequirePermission("users.edit")

	users := r.Group("/users")
	{
		users.GET("", view, h.List)
		users.GET("/:id", view, h.Get)
		users.POST("", edit, h.Create)
		users.PATCH("/:id", edit, h.Update)
		users.PATCH("/:id/status", edit, h.UpdateStatus)
		users.PATCH("/status", edit, h.BulkUpdateStatus)
		users.POST("/:id/reset-password", edit, h.ResetPassword)
		users.DELETE("/:id", authz.RequirePermission("users.delete"), h.Delete)

		// Changing your own password needs no extra permission.
		users.PUT("/me/password", h.ChangePassword)
	}
}

func (h *Handler) List(c *gin.Context) {
	var f model.UserFilter
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

	user, err := h.svc.Get(c.Request.Context(), id, repository.GetOptions{Fail: true})
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, user)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	user, err := h.svc.Create(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, user)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	user, err := h.svc.Update(c.Request.Context(), id, req,
		repository.UpdateOptions{CheckExists: true}, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, user)
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

	user, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, user)
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
	httputil.OKMessage(c, nil, "user deleted")
}

// ChangePassword updates the authenticated user's own password.
func (h *Handler) ChangePassword(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		httputil.Error(c, apperrors.Unauthorized(""))
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), actor.UserID, req, actor); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "password changed")
}

// ResetPassword sets a new password for another account.
func (h *Handler) ResetPassword(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), id, req.NewPassword, middleware.ActorFrom(c)); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "password reset")
}
