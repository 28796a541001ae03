package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/repository"
	apperrors "github.com/risingbsm/bsm-api/pkg/errors"
)

type rbacRepository struct {
	roles *Store[model.Role]
}

func NewRBACRepository(db *sqlx.DB) repository.RBACRepository {
	return &rbacRepository{
		roles: NewStore[model.Role](db, Meta{
			Table:  "roles",
			Entity: "role",
			Insert: []string{"name", "description", "system"},
			Updatable: map[string]bool{
				"name": true, "description": true,
			},
			Sortable:    map[string]bool{"id": true, "name": true},
			DefaultSort: "name ASC",
		}),
	}
}

func (r *rbacRepository) CreateRole(ctx context.Context, role *model.Role) (*model.Role, error) {
	return r.roles.Create(ctx, role)
}

func (r *rbacRepository) GetRole(ctx context.Context, id int64) (*model.Role, error) {
	return r.roles.FindByID(ctx, id)
}

func (r *rbacRepository) UpdateRole(ctx context.Context, id int64, patch map[string]interface{}) (*model.Role, error) {
	return r.roles.Update(ctx, id, patch, repository.UpdateOptions{CheckExists: true})
}

func (r *rbacRepository) DeleteRole(ctx context.Context, id int64) error {
	return r.roles.Delete(ctx, id, repository.DeleteOptions{})
}

func (r *rbacRepository) ListRoles(ctx context.Context) ([]model.Role, error) {
	q := `SELECT * FROM roles ORDER BY name ASC`

	roles := []model.Role{}
	if err := r.roles.db.SelectContext(ctx, &roles, q); err != nil {
		return nil, classify("list roles", err)
	}
	return roles, nil
}

func (r *rbacRepository) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	q := `SELECT * FROM permissions ORDER BY category ASC, code ASC`

	perms := []model.Permission{}
	if err := r.roles.db.SelectContext(ctx, &perms, q); err != nil {
		return nil, classify("list permissions", err)
	}
	return perms, nil
}

func (r *rbacRepository) GetRolePermissions(ctx context.Context, roleID int64) ([]model.Permission, error) {
	q := `
		SELECT p.* FROM permissions p
		JOIN role_permissions rp ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.category ASC, p.code ASC
	`

	perms := []model.Permission{}
	if err := r.roles.db.SelectContext(ctx, &perms, q, roleID); err != nil {
		return nil, classify("list role permissions", err)
	}
	return perms, nil
}

// SetRolePermissions replaces the role's permission set atomically.
func (r *rbacRepository) SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error {
	return r.roles.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return classify("set role permissions", err)
		}
		for _, pid := range permissionIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`,
				roleID, pid)
			if err != nil {
				return classify("set role permissions", err)
			}
		}
		return nil
	})
}

func (r *rbacRepository) AssignRoleToUser(ctx context.Context, userID, roleID int64) error {
	q := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`
	if _, err := r.roles.db.ExecContext(ctx, q, userID, roleID); err != nil {
		return classify("assign role", err)
	}
	return nil
}

func (r *rbacRepository) RemoveRoleFromUser(ctx context.Context, userID, roleID int64) error {
	q := `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`

	res, err := r.roles.db.ExecContext(ctx, q, userID, roleID)
	if err != nil {
		return classify("remove role", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return classify("remove role", err)
	}
	if rows == 0 {
		return apperrors.NotFoundMsg("role not assigned to user")
	}
	return nil
}

func (r *rbacRepository) GetUserRoles(ctx context.Context, userID int64) ([]model.Role, error) {
	q := `
		SELECT r.* FROM roles r
		JOIN user_roles ur ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name ASC
	`

	roles := []model.Role{}
	if err := r.roles.db.SelectContext(ctx, &roles, q, userID); err != nil {
		return nil, classify("list user roles", err)
	}
	return roles, nil
}

// ResolvePermissions returns the distinct permission codes a user
// holds through all assigned roles.
func (r *rbacRepository) ResolvePermissions(ctx context.Context, userID int64) ([]string, error) {
	q := `
		SELECT DISTINCT p.code FROM permissions p
		JOIN role_permissions rp ON p.id = rp.permission_id
		JOIN user_roles ur ON rp.role_id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY p.code ASC
	`

	codes := []string{}
	if err := r.roles.db.SelectContext(ctx, &codes, q, userID); err != nil {
		return nil, classify("resolve permissions", err)
	}
	return codes, nil
}

func (r *rbacRepository) HasPermission(ctx context.Context, userID int64, code string) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT 1 FROM user_roles ur
			JOIN role_permissions rp ON ur.role_id = rp.role_id
			JOIN permissions p ON rp.permission_id = p.id
			WHERE ur.user_id = $1
			AND p.code = $2
		)
	`

	var has bool
	if err := r.roles.db.GetContext(ctx, &has, q, userID, code); err != nil {
		return false, classify("check permission", err)
	}
	return has, nil
}
