package model

import "time"

// Request status values
const (
	RequestStatusNew        = "new"
	RequestStatusInProgress = "in_progress"
	RequestStatusCompleted  = "completed"
	RequestStatusCancelled  = "cancelled"
)

// RequestStatuses lists the values accepted by status updates.
var RequestStatuses = []string{
	RequestStatusNew,
	RequestStatusInProgress,
	RequestStatusCompleted,
	RequestStatusCancelled,
}

// Request is an inbound contact/service request, submitted through the
// public form and processed by staff.
type Request struct {
	Base
	Name          string  `json:"name" db:"name"`
	Email         string  `json:"email" db:"email"`
	Phone         *string `json:"phone" db:"phone"`
	Service       *string `json:"service" db:"service"`
	Message       *string `json:"message" db:"message"`
	CustomerID    *int64  `json:"customerId" db:"customer_id"`
	ProcessorID   *int64  `json:"processorId" db:"processor_id"`
	AppointmentID *int64  `json:"appointmentId" db:"appointment_id"`
	Status        string  `json:"status" db:"status"`
}

// GetStatus returns the current lifecycle status.
func (r Request) GetStatus() string { return r.Status }

// RequestFilter represents request search parameters
type RequestFilter struct {
	BaseFilter
	ProcessorID *int64 `json:"processorId" form:"processorId"`
	CustomerID  *int64 `json:"customerId" form:"customerId"`
	Unassigned  bool   `json:"unassigned" form:"unassigned"`
}

// CreateRequestRequest is the public contact form payload.
type CreateRequestRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone"`
	Service *string `json:"service"`
	Message *string `json:"message"`
}

// UpdateRequestRequest represents request update parameters
type UpdateRequestRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone"`
	Service *string `json:"service"`
	Message *string `json:"message"`
}

// AssignRequestRequest assigns a processor to a request.
type AssignRequestRequest struct {
	ProcessorID int64 `json:"processorId" binding:"required"`
}

// ConvertRequestRequest creates an appointment from a request.
type ConvertRequestRequest struct {
	Title           string    `json:"title" binding:"required"`
	AppointmentDate time.Time `json:"appointmentDate" binding:"required"`
	Duration        int       `json:"duration"`
	Location        *string   `json:"location"`
	Note            string    `json:"note"`
}

// RequestResponse is the wire shape for a request.
type RequestResponse struct {
	Request
	StatusLabel string `json:"statusLabel"`
	StatusClass string `json:"statusClass"`
}

// NewRequestResponse projects a request to its response shape.
func NewRequestResponse(r *Request) RequestResponse {
	return RequestResponse{
		Request:     *r,
		StatusLabel: StatusLabel(r.Status),
		StatusClass: StatusClass(r.Status),
	}
}

// RequestNote is a processing note attached to a request.
type RequestNote struct {
	ID        int64     `json:"id" db:"id"`
	RequestID int64     `json:"requestId" db:"request_id"`
	UserID    *int64    `json:"userId" db:"user_id"`
	UserName  string    `json:"userName" db:"user_name"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RequestStats aggregates requests per status.
type RequestStats struct {
	Total      int64 `json:"total"`
	New        int64 `json:"new"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}
