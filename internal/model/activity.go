package model

import "time"

// Activity actions recorded against entities.
const (
	ActivityActionCreate       = "create"
	ActivityActionUpdate       = "update"
	ActivityActionStatusChange = "status_change"
	ActivityActionDelete       = "delete"
	ActivityActionNote         = "note"
	ActivityActionAssign       = "assign"
	ActivityActionConvert      = "convert"
	ActivityActionLogin        = "login"
)

// Entity types referenced by activity rows.
const (
	EntityCustomer    = "customer"
	EntityRequest     = "request"
	EntityAppointment = "appointment"
	EntityProject     = "project"
	EntityService     = "service"
	EntityUser        = "user"
	EntityRole        = "role"
)

// ActivityLog is an append-only audit row describing who did what to
// which entity.
type ActivityLog struct {
	ID         int64     `json:"id" db:"id"`
	EntityType string    `json:"entityType" db:"entity_type"`
	EntityID   int64     `json:"entityId" db:"entity_id"`
	Action     string    `json:"action" db:"action"`
	Details    *string   `json:"details" db:"details"`
	UserID     *int64    `json:"userId" db:"user_id"`
	UserName   string    `json:"userName" db:"user_name"`
	IPAddress  *string   `json:"ipAddress" db:"ip_address"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// ActivityFilter represents activity search parameters
type ActivityFilter struct {
	EntityType string `json:"entityType" form:"entityType"`
	EntityID   *int64 `json:"entityId" form:"entityId"`
	UserID     *int64 `json:"userId" form:"userId"`
	Action     string `json:"action" form:"action"`
	Page       int    `json:"page" form:"page"`
	Limit      int    `json:"limit" form:"limit"`
}
