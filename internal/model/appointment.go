package model

import "time"

// Appointment status values
const (
	AppointmentStatusPlanned   = "planned"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusNoShow    = "no_show"
)

// AppointmentStatuses lists the values accepted by status updates.
var AppointmentStatuses = []string{
	AppointmentStatusPlanned,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
	AppointmentStatusCancelled,
	AppointmentStatusNoShow,
}

// Appointment represents a scheduled appointment
type Appointment struct {
	Base
	Title           string    `json:"title" db:"title"`
	CustomerID      *int64    `json:"customerId" db:"customer_id"`
	AppointmentDate time.Time `json:"appointmentDate" db:"appointment_date"`
	Duration        int       `json:"duration" db:"duration"`
	Location        *string   `json:"location" db:"location"`
	Description     *string   `json:"description" db:"description"`
	Status          string    `json:"status" db:"status"`
}

// GetStatus returns the current lifecycle status.
func (a Appointment) GetStatus() string { return a.Status }

// AppointmentFilter represents appointment search parameters
type AppointmentFilter struct {
	BaseFilter
	CustomerID *int64     `json:"customerId" form:"customerId"`
	From       *time.Time `json:"from" form:"from" time_format:"2006-01-02"`
	To         *time.Time `json:"to" form:"to" time_format:"2006-01-02"`
	Upcoming   bool       `json:"upcoming" form:"upcoming"`
}

// CreateAppointmentRequest represents appointment creation parameters
type CreateAppointmentRequest struct {
	Title           string    `json:"title" binding:"required"`
	CustomerID      *int64    `json:"customerId"`
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	Duration        int       `json:"duration" binding:"omitempty,min=1"`
	Location        *string   `json:"location"`
	Description     *string   `json:"description"`
}

// UpdateAppointmentRequest represents appointment update parameters
type UpdateAppointmentRequest struct {
	Title           *string    `json:"title"`
	CustomerID      *int64     `json:"customerId"`
	AppointmentDate *time.Time `json:"appointmentDate"`
	Duration        *int       `json:"duration" binding:"omitempty,min=1"`
	Location        *string    `json:"location"`
	Description     *string    `json:"description"`
}

// RescheduleAppointmentRequest moves an appointment to a new date.
type RescheduleAppointmentRequest struct {
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	Note            string    `json:"note"`
}

// CancelAppointmentRequest cancels an appointment with an optional
// reason, kept as a note.
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// CompleteAppointmentRequest closes out an appointment.
type CompleteAppointmentRequest struct {
	Notes string `json:"notes"`
}

// AppointmentResponse is the wire shape for an appointment, including
// the derived end time.
type AppointmentResponse struct {
	Appointment
	EndDate     time.Time `json:"endDate"`
	StatusLabel string    `json:"statusLabel"`
	StatusClass string    `json:"statusClass"`
}

// NewAppointmentResponse projects an appointment to its response shape.
func NewAppointmentResponse(a *Appointment) AppointmentResponse {
	return AppointmentResponse{
		Appointment: *a,
		EndDate:     a.AppointmentDate.Add(time.Duration(a.Duration) * time.Minute),
		StatusLabel: StatusLabel(a.Status),
		StatusClass: StatusClass(a.Status),
	}
}

// AppointmentNote is a note attached to an appointment.
type AppointmentNote struct {
	ID            int64     `json:"id" db:"id"`
	AppointmentID int64     `json:"appointmentId" db:"appointment_id"`
	UserID        *int64    `json:"userId" db:"user_id"`
	UserName      string    `json:"userName" db:"user_name"`
	Content       string    `json:"content" db:"content"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// AppointmentStats aggregates appointments per status.
type AppointmentStats struct {
	Total     int64 `json:"total"`
	Planned   int64 `json:"planned"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	NoShow    int64 `json:"noShow"`
}
