package model

import "time"

// User status values
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
	UserStatusDeleted   = "deleted"
)

// UserStatuses lists the values accepted by status updates; deleted is
// reachable only through soft delete.
var UserStatuses = []string{
	UserStatusActive,
	UserStatusInactive,
	UserStatusSuspended,
}

// User role values
const (
	UserRoleAdmin    = "admin"
	UserRoleManager  = "manager"
	UserRoleEmployee = "employee"
)

// User represents a system user
type User struct {
	Base
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Phone        *string    `json:"phone" db:"phone"`
	Role         string     `json:"role" db:"role"`
	Status       string     `json:"status" db:"status"`
	LastLoginAt  *time.Time `json:"lastLoginAt" db:"last_login_at"`
}

// GetStatus returns the current lifecycle status.
func (u User) GetStatus() string { return u.Status }

// UserFilter represents user search parameters
type UserFilter struct {
	BaseFilter
	Role string `json:"role" form:"role"`
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,password"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role" binding:"required,oneof=admin manager employee"`
}

// UpdateUserRequest represents user update parameters
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Phone *string `json:"phone"`
	Role  *string `json:"role" binding:"omitempty,oneof=admin manager employee"`
}

// ChangePasswordRequest carries a password change for the current user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,password"`
}

// ResetPasswordRequest sets a new password for another user (admin only).
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,password"`
}

// UserResponse is the wire shape for a user. The password hash never
// leaves the service layer.
type UserResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	StatusLabel string     `json:"statusLabel"`
	StatusClass string     `json:"statusClass"`
	Initials    string     `json:"initials"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewUserResponse projects a user to its response shape.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Status:      u.Status,
		StatusLabel: StatusLabel(u.Status),
		StatusClass: StatusClass(u.Status),
		Initials:    Initials(u.Name),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
