// Package auth implements login, token refresh and logout on top of
// short-lived JWT access tokens and database-backed refresh tokens.
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	"github.com/risingbsm/bsm-api/pkg/auth"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
	"github.com/risingbsm/bsm-api/pkg/security"
)

type Service struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	jwt        *auth.TokenManager
	hasher     security.PasswordHasher
	refreshTTL time.Duration
	activity   *activity.Service
}

func NewService(users repository.UserRepository, tokens repository.TokenRepository,
	jwt *auth.TokenManager, hasher security.PasswordHasher, refreshTTL time.Duration,
	recorder *activity.Service) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		jwt:        jwt,
		hasher:     hasher,
		refreshTTL: refreshTTL,
		activity:   recorder,
	}
}

// Login verifies credentials and issues a token pair. The error is the
// same whether the email is unknown or the password wrong.
func (s *Service) Login(ctx context.Context, req model.LoginRequest, ip string) (*model.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if user.Status != model.UserStatusActive {
		return nil, apperrors.Forbidden("account is not active")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to update last login")
	}
	_ = s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityUser,
		EntityID:   user.ID,
		Action:     model.ActivityActionLogin,
		Actor:      &model.Actor{UserID: user.ID, Name: user.Name, IP: ip},
	})
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair. The used
// token is revoked so each refresh token works exactly once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	stored, err := s.tokens.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored == nil || !stored.Valid(time.Now()) {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	user, err := s.users.Get(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.Status != model.UserStatusActive {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return s.issueTokens(ctx, user)
}

// Logout revokes the refresh token. Revoking an unknown token is not
// an error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// LogoutAll revokes every refresh token of the user, ending all of
// their sessions.
func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// Me returns the profile of the authenticated user.
func (s *Service) Me(ctx context.Context, userID int64) (*model.UserResponse, error) {
	user, err := s.users.GetOrFail(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := model.NewUserResponse(user)
	return &dto, nil
}

func (s *Service) issueTokens(ctx context.Context, user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwt.Generate(user.ID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh := &model.RefreshToken{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := s.tokens.Store(ctx, refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh.Token,
		ExpiresIn:    int64(s.jwt.AccessTTL().Seconds()),
		User:         model.NewUserResponse(user),
	}, nil
}
