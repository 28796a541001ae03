package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	"github.com/risingbsm/bsm-api/pkg/auth"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
	"github.com/risingbsm/bsm-api/pkg/security"
)

var (
	_ repository.UserRepository  = (*fakeUserRepo)(nil)
	_ repository.TokenRepository = (*fakeTokenRepo)(nil)
)

type fakeUserRepo struct {
	nextID int64
	rows   map[int64]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[int64]*model.User{}}
}

func (r *fakeUserRepo) seed(u model.User) *model.User {
	r.nextID++
	u.ID = r.nextID
	r.rows[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) List(_ context.Context, _ *model.UserFilter, opts query.Options) (*query.Result[model.User], error) {
	opts = opts.Normalized()
	return query.NewResult([]model.User{}, query.NewPagination(opts.Page, opts.Limit, 0)), nil
}

func (r *fakeUserRepo) Get(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetOrFail(_ context.Context, id int64) (*model.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) (*model.User, error) {
	return r.seed(*u), nil
}

func (r *fakeUserRepo) Update(_ context.Context, id int64, _ map[string]interface{}, _ repository.UpdateOptions) (*model.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateMany(_ context.Context, _ []int64, _ map[string]interface{}) (int64, error) {
	return 0, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, _ int64, _ repository.DeleteOptions) error {
	return nil
}

func (r *fakeUserRepo) Count(_ context.Context, _ *model.UserFilter) (int64, error) {
	return int64(len(r.rows)), nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	if u, ok := r.rows[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, _ int64, _ string) error {
	return nil
}

type fakeTokenRepo struct {
	rows map[string]*model.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: map[string]*model.RefreshToken{}}
}

func (r *fakeTokenRepo) Store(_ context.Context, t *model.RefreshToken) error {
	cp := *t
	cp.CreatedAt = time.Now()
	r.rows[t.Token] = &cp
	return nil
}

func (r *fakeTokenRepo) Find(_ context.Context, token string) (*model.RefreshToken, error) {
	t, ok := r.rows[token]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTokenRepo) Revoke(_ context.Context, token string) error {
	if t, ok := r.rows[token]; ok {
		t.Revoked = true
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID int64) error {
	for _, t := range r.rows {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for token, t := range r.rows {
		if t.ExpiresAt.Before(before) {
			delete(r.rows, token)
			n++
		}
	}
	return n, nil
}

type memActivityRepo struct {
	entries []model.ActivityLog
}

func (r *memActivityRepo) Create(_ context.Context, entry *model.ActivityLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memActivityRepo) List(_ context.Context, _ *model.ActivityFilter) (*query.Result[model.ActivityLog], error) {
	return query.NewResult(r.entries, query.NewPagination(1, len(r.entries)+1, int64(len(r.entries)))), nil
}

func (r *memActivityRepo) DeleteBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	svc    *Service
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	logs   *memActivityRepo
	jwt    *auth.TokenManager
}

func newFixture() *fixture {
	f := &fixture{
		users:  newFakeUserRepo(),
		tokens: newFakeTokenRepo(),
		logs:   &memActivityRepo{},
		jwt:    auth.NewTokenManager("test-secret", "bsm-api-test", 15*time.Minute),
	}
	f.svc = NewService(f.users, f.tokens, f.jwt,
		security.NewBcryptHasher(bcrypt.MinCost), 24*time.Hour, activity.NewService(f.logs))
	return f
}

func (f *fixture) seedUser(t *testing.T, email, password, status string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return f.users.seed(model.User{
		Name:         "Jane Admin",
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.UserRoleAdmin,
		Status:       status,
	})
}

func TestLoginIssuesTokenPair(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusActive)

	pair, err := f.svc.Login(context.Background(), model.LoginRequest{
		Email:    "jane@example.test",
		Password: "s3cret-pass",
	}, "10.0.0.1")
	require.NoError(t, err)

	claims, err := f.jwt.Validate(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "jane@example.test", claims.Email)
	assert.Equal(t, model.UserRoleAdmin, claims.Role)

	assert.Equal(t, int64(900), pair.ExpiresIn)
	assert.Equal(t, user.ID, pair.User.ID)

	stored := f.tokens.rows[pair.RefreshToken]
	require.NotNil(t, stored, "refresh token must be persisted")
	assert.Equal(t, user.ID, stored.UserID)
	assert.False(t, stored.Revoked)

	assert.NotNil(t, f.users.rows[user.ID].LastLoginAt)

	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, model.ActivityActionLogin, f.logs.entries[0].Action)
	require.NotNil(t, f.logs.entries[0].IPAddress)
	assert.Equal(t, "10.0.0.1", *f.logs.entries[0].IPAddress)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusActive)

	_, err := f.svc.Login(context.Background(), model.LoginRequest{
		Email:    "jane@example.test",
		Password: "wrong",
	}, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.AsAppError(err).Code)
	assert.Equal(t, "invalid email or password", apperrors.AsAppError(err).Message)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Login(context.Background(), model.LoginRequest{
		Email:    "nobody@example.test",
		Password: "whatever",
	}, "")
	require.Error(t, err)
	assert.Equal(t, "invalid email or password", apperrors.AsAppError(err).Message,
		"unknown email and wrong password must be indistinguishable")
}

func TestLoginInactiveUserForbidden(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusSuspended)

	_, err := f.svc.Login(context.Background(), model.LoginRequest{
		Email:    "jane@example.test",
		Password: "s3cret-pass",
	}, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.AsAppError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusActive)
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, model.LoginRequest{Email: "jane@example.test", Password: "s3cret-pass"}, "")
	require.NoError(t, err)

	next, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.True(t, f.tokens.rows[pair.RefreshToken].Revoked, "used refresh token is revoked")

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err, "a refresh token works exactly once")
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.AsAppError(err).Code)
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusActive)
	ctx := context.Background()

	require.NoError(t, f.tokens.Store(ctx, &model.RefreshToken{
		Token:     "stale",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := f.svc.Refresh(ctx, "stale")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.AsAppError(err).Code)
}

func TestRefreshDeactivatedUserRejected(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusActive)
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, model.LoginRequest{Email: "jane@example.test", Password: "s3cret-pass"}, "")
	require.NoError(t, err)

	f.users.rows[user.ID].Status = model.UserStatusSuspended

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthorized, apperrors.AsAppError(err).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusActive)
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, model.LoginRequest{Email: "jane@example.test", Password: "s3cret-pass"}, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))
	assert.True(t, f.tokens.rows[pair.RefreshToken].Revoked)

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
}

func TestLogoutAllEndsEverySession(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusActive)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, model.LoginRequest{Email: "jane@example.test", Password: "s3cret-pass"}, "")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, model.LoginRequest{Email: "jane@example.test", Password: "s3cret-pass"}, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.LogoutAll(ctx, user.ID))
	assert.True(t, f.tokens.rows[first.RefreshToken].Revoked)
	assert.True(t, f.tokens.rows[second.RefreshToken].Revoked)
}

func TestMe(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "jane@example.test", "s3cret-pass", model.UserStatusActive)

	dto, err := f.svc.Me(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, dto.ID)
	assert.Equal(t, "jane@example.test", dto.Email)

	_, err = f.svc.Me(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.AsAppError(err).Code)
}
