package model

// Notification type values
const (
	NotificationTypeInfo    = "info"
	NotificationTypeWarning = "warning"
	NotificationTypeError   = "error"
	NotificationTypeSuccess = "success"
)

// ValidNotificationType reports whether typ is a known notification
// type.
func ValidNotificationType(typ string) bool {
	switch typ {
	case NotificationTypeInfo, NotificationTypeWarning, NotificationTypeError, NotificationTypeSuccess:
		return true
	}
	return false
}

// Notification is an in-app message for one user. Dispatched tracks
// whether the background worker has pushed it out by email.
type Notification struct {
	Base
	UserID     int64   `json:"userId" db:"user_id"`
	Title      string  `json:"title" db:"title"`
	Message    string  `json:"message" db:"message"`
	Type       string  `json:"type" db:"type"`
	Link       *string `json:"link" db:"link"`
	Read       bool    `json:"read" db:"read"`
	Dispatched bool    `json:"dispatched" db:"dispatched"`
}

// NotificationFilter represents notification search parameters
type NotificationFilter struct {
	UnreadOnly bool `json:"unreadOnly" form:"unreadOnly"`
	Page       int  `json:"page" form:"page"`
	Limit      int  `json:"limit" form:"limit"`
}

// CreateNotificationRequest creates a notification for a user.
type CreateNotificationRequest struct {
	UserID  int64   `json:"userId" binding:"required"`
	Title   string  `json:"title" binding:"required"`
	Message string  `json:"message" binding:"required"`
	Type    string  `json:"type" binding:"omitempty,oneof=info warning error success"`
	Link    *string `json:"link"`
}
