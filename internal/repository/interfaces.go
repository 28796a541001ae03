package repository

import (
	"context"
	"time"

	"github.com/risingbsm/bsm-api/internal/model"
	"github.com/risingbsm/bsm-api/internal/query"
)

// GetOptions controls read behavior.
type GetOptions struct {
	// Fail turns a missing row into a NotFound error instead of nil.
	Fail bool
}

// UpdateOptions controls write behavior.
type UpdateOptions struct {
	// CheckExists verifies the row exists before writing, so a missing
	// id surfaces as NotFound rather than a silent no-op.
	CheckExists bool
}

// DeleteOptions controls delete behavior.
type DeleteOptions struct {
	CheckExists bool
}

// Repository is the capability set every entity repository provides.
// Entity repositories satisfy it structurally; the generic service
// layer composes over it.
type Repository[E any, F any] interface {
	List(ctx context.Context, filter F, opts query.Options) (*query.Result[E], error)
	Get(ctx context.Context, id int64) (*E, error)
	GetOrFail(ctx context.Context, id int64) (*E, error)
	Create(ctx context.Context, entity *E) (*E, error)
	Update(ctx context.Context, id int64, patch map[string]interface{}, opts UpdateOptions) (*E, error)
	UpdateMany(ctx context.Context, ids []int64, patch map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id int64, opts DeleteOptions) error
	Count(ctx context.Context, filter F) (int64, error)
}

// All repository interfaces in one file
type (
	CustomerRepository interface {
		Repository[model.Customer, *model.CustomerFilter]
		CountByStatus(ctx context.Context) (map[string]int64, error)
		AddNote(ctx context.Context, note *model.CustomerNote) (*model.CustomerNote, error)
		ListNotes(ctx context.Context, customerID int64) ([]model.CustomerNote, error)
	}

	RequestRepository interface {
		Repository[model.Request, *model.RequestFilter]
		CountByStatus(ctx context.Context) (map[string]int64, error)
		AddNote(ctx context.Context, note *model.RequestNote) (*model.RequestNote, error)
		ListNotes(ctx context.Context, requestID int64) ([]model.RequestNote, error)
		// ConvertToAppointment atomically creates the appointment, links
		// it to the request and moves the request to in_progress.
		ConvertToAppointment(ctx context.Context, requestID int64, appt *model.Appointment) (*model.Appointment, error)
	}

	AppointmentRepository interface {
		Repository[model.Appointment, *model.AppointmentFilter]
		CountByStatus(ctx context.Context) (map[string]int64, error)
		AddNote(ctx context.Context, note *model.AppointmentNote) (*model.AppointmentNote, error)
		ListNotes(ctx context.Context, appointmentID int64) ([]model.AppointmentNote, error)
		ListUpcoming(ctx context.Context, from time.Time, limit int) ([]model.Appointment, error)
	}

	ProjectRepository interface {
		Repository[model.Project, *model.ProjectFilter]
		CountByStatus(ctx context.Context) (map[string]int64, error)
	}

	ServiceRepository interface {
		Repository[model.CatalogService, *model.ServiceFilter]
	}

	UserRepository interface {
		Repository[model.User, *model.UserFilter]
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
		UpdatePassword(ctx context.Context, id int64, hash string) error
	}

	RBACRepository interface {
		CreateRole(ctx context.Context, role *model.Role) (*model.Role, error)
		GetRole(ctx context.Context, id int64) (*model.Role, error)
		UpdateRole(ctx context.Context, id int64, patch map[string]interface{}) (*model.Role, error)
		DeleteRole(ctx context.Context, id int64) error
		ListRoles(ctx context.Context) ([]model.Role, error)
		ListPermissions(ctx context.Context) ([]model.Permission, error)
		GetRolePermissions(ctx context.Context, roleID int64) ([]model.Permission, error)
		// SetRolePermissions replaces the role's permission set in one
		// transaction.
		SetRolePermissions(ctx context.Context, roleID int64, permissionIDs []int64) error
		AssignRoleToUser(ctx context.Context, userID, roleID int64) error
		RemoveRoleFromUser(ctx context.Context, userID, roleID int64) error
		GetUserRoles(ctx context.Context, userID int64) ([]model.Role, error)
		// ResolvePermissions returns the distinct permission codes a
		// user holds through all assigned roles.
		ResolvePermissions(ctx context.Context, userID int64) ([]string, error)
		HasPermission(ctx context.Context, userID int64, code string) (bool, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
		ListForUser(ctx context.Context, userID int64, f *model.NotificationFilter) (*query.Result[model.Notification], error)
		MarkRead(ctx context.Context, id, userID int64) error
		MarkAllRead(ctx context.Context, userID int64) (int64, error)
		UnreadCount(ctx context.Context, userID int64) (int64, error)
		// NextUndispatched claims up to limit undispatched rows for the
		// worker, skipping rows locked by concurrent dispatchers.
		NextUndispatched(ctx context.Context, limit int) ([]model.Notification, error)
		MarkDispatched(ctx context.Context, ids []int64) error
		DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	}

	ActivityRepository interface {
		Create(ctx context.Context, entry *model.ActivityLog) error
		List(ctx context.Context, f *model.ActivityFilter) (*query.Result[model.ActivityLog], error)
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	TokenRepository interface {
		Store(ctx context.Context, t *model.RefreshToken) error
		Find(ctx context.Context, token string) (*model.RefreshToken, error)
		Revoke(ctx context.Context, token string) error
		RevokeAllForUser(ctx context.Context, userID int64) error
		DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	}
)
