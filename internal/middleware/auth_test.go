package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingbsm/bsm-api/pkg/auth"
	"github.com/risingbsm/bsm-api/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChecker struct {
	perms    []string
	resolved int
}

func (f *fakeChecker) ResolvePermissions(ctx context.Context, userID int64) ([]string, error) {
	f.resolved++
	return f.perms, nil
}

func testTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", "bsm-api-test", 15*time.Minute)
}

func protectedRouter(m *AuthMiddleware, permission string) *gin.Engine {
	r := gin.New()
	group := r.Group("/", m.Authenticate())
	if permission != "" {
		group.Use(m.RequirePermission(permission))
	}
	group.GET("/ping", func(c *gin.Context) {
		actor := ActorFrom(c)
		httputil.OK(c, gin.H{"name": actor.Name})
	})
	return r
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	m := NewAuthMiddleware(testTokens(), &fakeChecker{})
	r := protectedRouter(m, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"UNAUTHORIZED"`)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	m := NewAuthMiddleware(testTokens(), &fakeChecker{})
	r := protectedRouter(m, "")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateRejectsForgedToken(t *testing.T) {
	m := NewAuthMiddleware(testTokens(), &fakeChecker{})
	r := protectedRouter(m, "")

	forged, err := auth.NewTokenManager("other-secret", "bsm-api-test", time.Minute).
		Generate(1, "a@b.c", "A", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticateSetsActor(t *testing.T) {
	tokens := testTokens()
	m := NewAuthMiddleware(tokens, &fakeChecker{})
	r := protectedRouter(m, "")

	token, err := tokens.Generate(7, "jane@example.com", "Jane Admin", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Jane Admin")
}

func TestRequirePermissionDeniesMissingCode(t *testing.T) {
	tokens := testTokens()
	checker := &fakeChecker{perms: []string{"customers.view"}}
	m := NewAuthMiddleware(tokens, checker)
	r := protectedRouter(m, "users.edit")

	token, err := tokens.Generate(7, "jane@example.com", "Jane Admin", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"FORBIDDEN"`)
}

func TestRequirePermissionAllowsGrantedCode(t *testing.T) {
	tokens := testTokens()
	checker := &fakeChecker{perms: []string{"customers.view", "customers.edit"}}
	m := NewAuthMiddleware(tokens, checker)
	r := protectedRouter(m, "customers.view")

	token, err := tokens.Generate(7, "jane@example.com", "Jane Admin", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionCachesResolution(t *testing.T) {
	tokens := testTokens()
	checker := &fakeChecker{perms: []string{"customers.view"}}
	m := NewAuthMiddleware(tokens, checker)
	r := protectedRouter(m, "customers.view")

	token, err := tokens.Generate(7, "jane@example.com", "Jane Admin", "admin")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 1, checker.resolved)
}
