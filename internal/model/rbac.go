package model

import "time"

// Role groups permissions for assignment to users.
type Role struct {
	Base
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	System      bool    `json:"system" db:"system"`
}

// Permission is a single grantable capability, identified by code
// ("customers.view", "requests.assign", ...).
type Permission struct {
	Base
	Code        string  `json:"code" db:"code"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Category    string  `json:"category" db:"category"`
}

// UserRole links a user to a role.
type UserRole struct {
	UserID    int64     `json:"userId" db:"user_id"`
	RoleID    int64     `json:"roleId" db:"role_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RolePermission links a role to a permission.
type RolePermission struct {
	RoleID       int64     `json:"roleId" db:"role_id"`
	PermissionID int64     `json:"permissionId" db:"permission_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// CreateRoleRequest represents role creation parameters
type CreateRoleRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// UpdateRoleRequest represents role update parameters
type UpdateRoleRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// SetRolePermissionsRequest replaces a role's permission set.
type SetRolePermissionsRequest struct {
	PermissionIDs []int64 `json:"permissionIds" binding:"required"`
}

// AssignRoleRequest grants a role to a user.
type AssignRoleRequest struct {
	RoleID int64 `json:"roleId" binding:"required"`
}

// RoleResponse is the wire shape for a role with its permissions.
type RoleResponse struct {
	Role
	Permissions []Permission `json:"permissions"`
}
