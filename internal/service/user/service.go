package user

import (
	"context"
	"fmt"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	"github.com/risingbsm/bsm-api/internal/service/crud"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
	"github.com/risingbsm/bsm-api/pkg/security"
)

// Service manages staff accounts. Passwords only exist here as bcrypt
// hashes, and destructive self-service is rejected before any
// repository call.
type Service struct {
	*crud.Service[model.User, *model.UserFilter, model.CreateUserRequest, model.UpdateUserRequest, model.UserResponse]

	repo     repository.UserRepository
	hasher   security.PasswordHasher
	activity *activity.Service
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, recorder *activity.Service) *Service {
	cfg := crud.Config[model.User, *model.UserFilter, model.CreateUserRequest, model.UpdateUserRequest, model.UserResponse]{
		Entity: model.EntityUser,
		// Create is overridden below; this hook only exists so the
		// shared core is fully wired.
		NewEntity: func(req model.CreateUserRequest) *model.User {
			return &model.User{
				Name:   req.Name,
				Email:  req.Email,
				Phone:  req.Phone,
				Role:   req.Role,
				Status: model.UserStatusActive,
			}
		},
		Patch: buildPatch,
		ToDTO: func(u *model.User) model.UserResponse {
			return model.NewUserResponse(u)
		},
		Statuses:      model.UserStatuses,
		Terminal:      []string{model.UserStatusDeleted},
		DeletedStatus: model.UserStatusDeleted,
	}

	return &Service{
		Service:  crud.NewService(repo, recorder, cfg),
		repo:     repo,
		hasher:   hasher,
		activity: recorder,
	}
}

func buildPatch(req model.UpdateUserRequest) map[string]interface{} {
	patch := map[string]interface{}{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Email != nil {
		patch["email"] = *req.Email
	}
	if req.Phone != nil {
		patch["phone"] = *req.Phone
	}
	if req.Role != nil {
		patch["role"] = *req.Role
	}
	return patch
}

// Create hashes the password and persists the account. Email addresses
// are unique across users.
func (s *Service) Create(ctx context.Context, req model.CreateUserRequest, actor *model.Actor) (*model.UserResponse, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("a user with this email already exists", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         req.Role,
		Status:       model.UserStatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityUser,
		EntityID:   created.ID,
		Action:     model.ActivityActionCreate,
		Actor:      actor,
	})

	dto := model.NewUserResponse(created)
	return &dto, nil
}

// Update applies profile changes. Users cannot change their own role,
// and email addresses stay unique.
func (s *Service) Update(ctx context.Context, id int64, req model.UpdateUserRequest, opts repository.UpdateOptions, actor *model.Actor) (*model.UserResponse, error) {
	if actor != nil && actor.UserID == id && req.Role != nil {
		return nil, apperrors.BadRequest("you cannot change your own role")
	}

	if req.Email != nil {
		existing, err := s.repo.GetByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apperrors.Conflict("a user with this email already exists", nil)
		}
	}

	return s.Service.Update(ctx, id, req, opts, actor)
}

// UpdateStatus rejects self-service status changes before touching the
// repository.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string, actor *model.Actor) (*model.UserResponse, error) {
	if actor != nil && actor.UserID == id {
		return nil, apperrors.BadRequest("you cannot change the status of your own account")
	}
	return s.Service.UpdateStatus(ctx, id, status, actor)
}

// Delete rejects self-deletion before touching the repository.
func (s *Service) Delete(ctx context.Context, id int64, opts crud.DeleteOptions, actor *model.Actor) error {
	if actor != nil && actor.UserID == id {
		return apperrors.BadRequest("you cannot delete your own account")
	}
	return s.Service.Delete(ctx, id, opts, actor)
}

// BulkUpdateStatus refuses batches that include the acting user.
func (s *Service) BulkUpdateStatus(ctx context.Context, ids []int64, status string, actor *model.Actor) (int64, error) {
	if actor != nil {
		for _, id := range ids {
			if id == actor.UserID {
				return 0, apperrors.BadRequest("you cannot change the status of your own account")
			}
		}
	}
	return s.Service.BulkUpdateStatus(ctx, ids, status, actor)
}

// ChangePassword verifies the current password before storing a new
// hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, req model.ChangePasswordRequest, actor *model.Actor) error {
	u, err := s.repo.GetOrFail(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityUser,
		EntityID:   userID,
		Action:     model.ActivityActionUpdate,
		Details:    "password changed",
		Actor:      actor,
	})
	return nil
}

// ResetPassword sets a new password for another account without
// knowing the old one. Route guards restrict it to admins.
func (s *Service) ResetPassword(ctx context.Context, userID int64, newPassword string, actor *model.Actor) error {
	if _, err := s.repo.GetOrFail(ctx, userID); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityUser,
		EntityID:   userID,
		Action:     model.ActivityActionUpdate,
		Details:    "password reset",
		Actor:      actor,
	})
	return nil
}
