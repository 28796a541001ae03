// Package rbac manages roles, permissions and their assignment to
// users. Permission checks for incoming requests resolve through
// ResolvePermissions, which the authorization middleware caches.
package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	"github.com/risingbsm/bsm-api/internal/service/activity"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

type Service struct {
	repo     repository.RBACRepository
	users    repository.UserRepository
	activity *activity.Service
}

func NewService(repo repository.RBACRepository, users repository.UserRepository, recorder *activity.Service) *Service {
	return &Service{repo: repo, users: users, activity: recorder}
}

// CreateRole adds a custom role. Roles created through the API are
// never system roles.
func (s *Service) CreateRole(ctx context.Context, req model.CreateRoleRequest, actor *model.Actor) (*model.RoleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("invalid role data", "name is required")
	}
	role, err := s.repo.CreateRole(ctx, &model.Role{
		Name:        name,
		Description: req.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	s.record(ctx, role.ID, model.ActivityActionCreate, "", actor)
	return &model.RoleResponse{Role: *role, Permissions: []model.Permission{}}, nil
}

// GetRole returns a role together with its permission set.
func (s *Service) GetRole(ctx context.Context, id int64) (*model.RoleResponse, error) {
	role, err := s.getRole(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.repo.GetRolePermissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	return &model.RoleResponse{Role: *role, Permissions: perms}, nil
}

// UpdateRole renames or redescribes a role. System roles keep their
// name; only the description may change.
func (s *Service) UpdateRole(ctx context.Context, id int64, req model.UpdateRoleRequest, actor *model.Actor) (*model.RoleResponse, error) {
	role, err := s.getRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.System && req.Name != nil && *req.Name != role.Name {
		return nil, apperrors.BadRequest("system roles cannot be renamed")
	}

	patch := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("invalid role data", "name is required")
		}
		patch["name"] = name
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if len(patch) > 0 {
		role, err = s.repo.UpdateRole(ctx, id, patch)
		if err != nil {
			return nil, fmt.Errorf("failed to update role: %w", err)
		}
		s.record(ctx, id, model.ActivityActionUpdate, "", actor)
	}

	perms, err := s.repo.GetRolePermissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load role permissions: %w", err)
	}
	return &model.RoleResponse{Role: *role, Permissions: perms}, nil
}

// DeleteRole removes a custom role and its assignments. System roles
// cannot be deleted.
func (s *Service) DeleteRole(ctx context.Context, id int64, actor *model.Actor) error {
	role, err := s.getRole(ctx, id)
	if err != nil {
		return err
	}
	if role.System {
		return apperrors.BadRequest("system roles cannot be deleted")
	}
	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	s.record(ctx, id, model.ActivityActionDelete, "deleted role "+role.Name, actor)
	return nil
}

// ListRoles returns all roles with their permission sets.
func (s *Service) ListRoles(ctx context.Context) ([]model.RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	out := make([]model.RoleResponse, 0, len(roles))
	for _, role := range roles {
		perms, err := s.repo.GetRolePermissions(ctx, role.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load role permissions: %w", err)
		}
		out = append(out, model.RoleResponse{Role: role, Permissions: perms})
	}
	return out, nil
}

// ListPermissions returns the full permission catalog.
func (s *Service) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return perms, nil
}

// SetRolePermissions replaces the role's permission set with exactly
// the given permission ids.
func (s *Service) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64, actor *model.Actor) (*model.RoleResponse, error) {
	if _, err := s.getRole(ctx, roleID); err != nil {
		return nil, err
	}
	if err := s.repo.SetRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return nil, fmt.Errorf("failed to set role permissions: %w", err)
	}
	s.record(ctx, roleID, model.ActivityActionUpdate, fmt.Sprintf("permissions replaced (%d granted)", len(permissionIDs)), actor)
	return s.GetRole(ctx, roleID)
}

// AssignRole grants a role to a user. Assigning an already held role
// is a no-op.
func (s *Service) AssignRole(ctx context.Context, userID, roleID int64, actor *model.Actor) error {
	if _, err := s.users.GetOrFail(ctx, userID); err != nil {
		return err
	}
	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.repo.AssignRoleToUser(ctx, userID, roleID); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	s.recordUser(ctx, userID, fmt.Sprintf("role %s assigned", role.Name), actor)
	return nil
}

// RemoveRole revokes a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleID int64, actor *model.Actor) error {
	role, err := s.getRole(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.repo.RemoveRoleFromUser(ctx, userID, roleID); err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	s.recordUser(ctx, userID, fmt.Sprintf("role %s removed", role.Name), actor)
	return nil
}

// GetUserRoles returns the roles assigned to a user.
func (s *Service) GetUserRoles(ctx context.Context, userID int64) ([]model.Role, error) {
	roles, err := s.repo.GetUserRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}
	return roles, nil
}

// ResolvePermissions returns the distinct permission codes a user
// holds through all assigned roles.
func (s *Service) ResolvePermissions(ctx context.Context, userID int64) ([]string, error) {
	codes, err := s.repo.ResolvePermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}
	return codes, nil
}

// HasPermission reports whether the user holds the permission code.
func (s *Service) HasPermission(ctx context.Context, userID int64, code string) (bool, error) {
	ok, err := s.repo.HasPermission(ctx, userID, code)
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return ok, nil
}

func (s *Service) getRole(ctx context.Context, id int64) (*model.Role, error) {
	role, err := s.repo.GetRole(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return nil, apperrors.NotFound("role", id)
	}
	return role, nil
}

func (s *Service) record(ctx context.Context, roleID int64, action, details string, actor *model.Actor) {
	if actor == nil {
		return
	}
	_ = s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityRole,
		EntityID:   roleID,
		Action:     action,
		Details:    details,
		Actor:      actor,
	})
}

func (s *Service) recordUser(ctx context.Context, userID int64, details string, actor *model.Actor) {
	if actor == nil {
		return
	}
	_ = s.activity.Record(ctx, activity.Entry{
		EntityType: model.EntityUser,
		EntityID:   userID,
		Action:     model.ActivityActionUpdate,
		Details:    details,
		Actor:      actor,
	})
}
