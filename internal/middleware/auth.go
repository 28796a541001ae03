package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/pkg/auth"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

// ContextActor is the gin context key holding the authenticated actor.
const ContextActor = "actor"

// Permission sets change rarely, so resolved codes are cached briefly
// instead of hitting the database on every request. Grants take up to
// this long to propagate to live sessions.
const permissionCacheTTL = time.Minute

// PermissionChecker resolves the effective permission codes of a user.
type PermissionChecker interface {
	ResolvePermissions(ctx context.Context, userID int64) ([]string, error)
}

// AuthMiddleware guards routes with access token validation and
// permission checks.
type AuthMiddleware struct {
	tokens *auth.TokenManager
	rbac   PermissionChecker
	perms  *gocache.Cache
}

func NewAuthMiddleware(tokens *auth.TokenManager, rbac PermissionChecker) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		rbac:   rbac,
		perms:  gocache.New(permissionCacheTTL, 2*permissionCacheTTL),
	}
}

// Authenticate validates the bearer token and stores the actor in the
// request context for handlers and activity logging.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.Abort(c, apperrors.Unauthorized("missing authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.Abort(c, apperrors.Unauthorized("invalid authorization header"))
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			httputil.Abort(c, apperrors.Unauthorized("invalid or expired token"))
			return
		}

		c.Set(ContextActor, &model.Actor{
			UserID: claims.UserID,
			Name:   claims.Name,
			IP:     c.ClientIP(),
		})
		c.Next()
	}
}

// RequirePermission rejects requests whose actor lacks the given
// permission code. Must run after Authenticate.
func (m *AuthMiddleware) RequirePermission(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			httputil.Abort(c, apperrors.Unauthorized("authentication required"))
			return
		}

		perms, err := m.permissions(c.Request.Context(), actor.UserID)
		if err != nil {
			httputil.Abort(c, err)
			return
		}

		for _, p := range perms {
			if p == code {
				c.Next()
				return
			}
		}
		httputil.Abort(c, apperrors.Forbidden("permission denied"))
	}
}

func (m *AuthMiddleware) permissions(ctx context.Context, userID int64) ([]string, error) {
	key := strconv.FormatInt(userID, 10)
	if cached, ok := m.perms.Get(key); ok {
		return cached.([]string), nil
	}

	perms, err := m.rbac.ResolvePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	m.perms.Set(key, perms, gocache.DefaultExpiration)
	return perms, nil
}

// ActorFrom returns the authenticated actor, or nil on public routes.
func ActorFrom(c *gin.Context) *model.Actor {
	if v, ok := c.Get(ContextActor); ok {
		if actor, ok := v.(*model.Actor); ok {
			return actor
		}
	}
	return nil
}
