// Package rbac exposes role and permission management endpoints.
package rbac

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// Service is the slice of the rbac service this handler consumes.
type Service interface {
	ListRoles(ctx context.Context) ([]model.RoleResponse, error)
	GetRole(ctx context.Context, id int64) (*model.RoleResponse, error)
	CreateRole(ctx context.Context, req model.CreateRoleRequest, actor *model.Actor) (*model.RoleResponse, error)
	UpdateRole(ctx context.Context, id int64, req model.UpdateRoleRequest, actor *model.Actor) (*model.RoleResponse, error)
	DeleteRole(ctx context.Context, id int64, actor *model.Actor) error
	ListPermissions(ctx context.Context) ([]model.Permission, error)
	SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64, actor *model.Actor) (*model.RoleResponse, error)
	AssignRole(ctx context.Context, userID, roleID int64, actor *model.Actor) error
	RemoveRole(ctx context.Context, userID, roleID int64, actor *model.Actor) error
	GetUserRoles(ctx context.Context, userID int64) ([]model.Role, error)
	ResolvePermissions(ctx context.Context, userID int64) ([]string, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	view := authz.RequirePermission("roles.view")
	edit := authz.RequirePermission("roles.edit")

	roles := r.Group("/roles")
	{
		roles.GET("", view, h.ListRoles)
		roles.GET("/:id", view, h.GetRole)
		roles.POST("", edit, h.CreateRole)
		roles.PATCH("/:id", edit, h.UpdateRole)
		roles.DELETE("/:id", edit, h.DeleteRole)
		roles.PUT("/:id/permissions", edit, h.SetRolePermissions)
	}

	r.GET("/permissions", view, h.ListPermissions)

	// Role assignments hang off the user resource.
	users := r.Group("/users")
	{
		users.GET("/:id/roles", view, h.GetUserRoles)
		users.POST("/:id/roles", edit, h.AssignRole)
		users.DELETE("/:id/roles/:roleId", edit, h.RemoveRole)
		users.GET("/:id/permissions", view, h.GetUserPermissions)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.svc.ListRoles(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, roles)
}

func (h *Handler) GetRole(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	role, err := h.svc.GetRole(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, role)
}

func (h *Handler) CreateRole(c *gin.Context) {
	var req model.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	role, err := h.svc.CreateRole(c.Request.Context(), req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.Created(c, role)
}

func (h *Handler) UpdateRole(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	role, err := h.svc.UpdateRole(c.Request.Context(), id, req, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, role)
}

func (h *Handler) DeleteRole(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteRole(c.Request.Context(), id, middleware.ActorFrom(c)); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "role deleted")
}

func (h *Handler) ListPermissions(c *gin.Context) {
	perms, err := h.svc.ListPermissions(c.Request.Context())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, perms)
}

func (h *Handler) SetRolePermissions(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.SetRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	role, err := h.svc.SetRolePermissions(c.Request.Context(), id, req.PermissionIDs, middleware.ActorFrom(c))
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, role)
}

func (h *Handler) AssignRole(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	var req model.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	if err := h.svc.AssignRole(c.Request.Context(), id, req.RoleID, middleware.ActorFrom(c)); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "role assigned")
}

func (h *Handler) RemoveRole(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}
	roleID, ok := httputil.IDParam(c, "roleId")
	if !ok {
		return
	}

	if err := h.svc.RemoveRole(c.Request.Context(), id, roleID, middleware.ActorFrom(c)); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "role removed")
}

func (h *Handler) GetUserRoles(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	roles, err := h.svc.GetUserRoles(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, roles)
}

// GetUserPermissions returns the flattened permission codes a user holds
// across all assigned roles.
func (h *Handler) GetUserPermissions(c *gin.Context) {
	id, ok := httputil.ID(c)
	if !ok {
		return
	}

	codes, err := h.svc.ResolvePermissions(c.Request.Context(), id)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, codes)
}
