// Package auth exposes login, token refresh and session endpoints.
package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// Service is the slice of the auth service this handler consumes.
type Service interface {
	Login(ctx context.Context, req model.LoginRequest, ip string) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID int64) error
	Me(ctx context.Context, userID int64) (*model.UserResponse, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes binds the endpoints a caller reaches before it
// holds a token.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
	}
}

// RegisterRoutes binds the endpoints that require an authenticated
// session.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.POST("/logout-all", h.LogoutAll)
		auth.GET("/me", h.Me)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, tokens)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, tokens)
}

// Logout revokes a single refresh token. The access token stays valid
// until it expires on its own.
func (h *Handler) Logout(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BindError(c, err)
		return
	}

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "logged out")
}

// LogoutAll revokes every refresh token the user holds, ending all
// of their sessions at once.
func (h *Handler) LogoutAll(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		httputil.Error(c, apperrors.Unauthorized(""))
		return
	}

	if err := h.svc.LogoutAll(c.Request.Context(), actor.UserID); err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OKMessage(c, nil, "all sessions revoked")
}

func (h *Handler) Me(c *gin.Context) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		httputil.Error(c, apperrors.Unauthorized(""))
		return
	}

	user, err := h.svc.Me(c.Request.Context(), actor.UserID)
	if err != nil {
		httputil.Error(c, err)
		return
	}
	httputil.OK(c, user)
}
