package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/risingbsm/bsm-api/internal/middleware"
	"github.com/risingbsm/bsm-api/internal/model"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeService struct {
	loginReq   *model.LoginRequest
	loginIP    string
	loginErr   error
	refreshed  string
	revoked    string
	revokedAll int64
}

func (f *fakeService) Login(_ context.Context, req model.LoginRequest, ip string) (*model.TokenResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.loginReq = &req
	f.loginIP = ip
	return &model.TokenResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		ExpiresIn:    900,
		User:         model.UserResponse{ID: 7, Name: "Jane Admin"},
	}, nil
}

func (f *fakeService) Refresh(_ context.Context, refreshToken string) (*model.TokenResponse, error) {
	f.refreshed = refreshToken
	return &model.TokenResponse{AccessToken: "rotated-access", RefreshToken: "rotated-refresh"}, nil
}

func (f *fakeService) Logout(_ context.Context, refreshToken string) error {
	f.revoked = refreshToken
	return nil
}

func (f *fakeService) LogoutAll(_ context.Context, userID int64) error {
	f.revokedAll = userID
	return nil
}

func (f *fakeService) Me(_ context.Context, userID int64) (*model.UserResponse, error) {
	return &model.UserResponse{ID: userID, Name: "Jane Admin"}, nil
}

func testRouter(h *Handler, withActor bool) *gin.Engine {
	r := gin.New()
	h.RegisterPublicRoutes(r.Group(""))

	api := r.Group("/api")
	if withActor {
		api.Use(func(c *gin.Context) {
			c.Set(middleware.ContextActor, &model.Actor{UserID: 7, Name: "Jane Admin", IP: "10.0.0.1"})
		})
	}
	h.RegisterRoutes(api)
	return r
}

func TestLoginReturnsTokenPair(t *testing.T) {
	svc := &fakeService{}
	r := testRouter(NewHandler(svc), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"jane@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.9:51000"
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accessToken":"access-token"`)
	require.NotNil(t, svc.loginReq)
	assert.Equal(t, "jane@example.com", svc.loginReq.Email)
	assert.Equal(t, "203.0.113.9", svc.loginIP)
}

func TestLoginFailureStaysGeneric(t *testing.T) {
	svc := &fakeService{loginErr: apperrors.Unauthorized("invalid credentials")}
	r := testRouter(NewHandler(svc), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"jane@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"UNAUTHORIZED"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLoginRequiresEmailAndPassword(t *testing.T) {
	r := testRouter(NewHandler(&fakeService{}), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"jane@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"errorCode":"VALIDATION_ERROR"`)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc := &fakeService{}
	r := testRouter(NewHandler(svc), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh",
		strings.NewReader(`{"refreshToken":"old-refresh"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "old-refresh", svc.refreshed)
	assert.Contains(t, w.Body.String(), `"accessToken":"rotated-access"`)
}

func TestLogoutAllUsesSessionUser(t *testing.T) {
	svc := &fakeService{}
	r := testRouter(NewHandler(svc), true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout-all", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), svc.revokedAll)
}

func TestMeRequiresActor(t *testing.T) {
	r := testRouter(NewHandler(&fakeService{}), false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeReturnsProfile(t *testing.T) {
	r := testRouter(NewHandler(&fakeService{}), true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Jane Admin"`)
}
