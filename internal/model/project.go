package model

import "time"

// Project status values
const (
	ProjectStatusNew        = "new"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
)

// ProjectStatuses lists the values accepted by status updates.
var ProjectStatuses = []string{
	ProjectStatusNew,
	ProjectStatusInProgress,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
}

// Project represents a customer project
type Project struct {
	Base
	Name        string     `json:"name" db:"name"`
	CustomerID  int64      `json:"customerId" db:"customer_id"`
	ServiceID   *int64     `json:"serviceId" db:"service_id"`
	StartDate   *time.Time `json:"startDate" db:"start_date"`
	EndDate     *time.Time `json:"endDate" db:"end_date"`
	Amount      float64    `json:"amount" db:"amount"`
	Description *string    `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
}

// GetStatus returns the current lifecycle status.
func (p Project) GetStatus() string { return p.Status }

// ProjectFilter represents project search parameters
type ProjectFilter struct {
	BaseFilter
	CustomerID *int64 `json:"customerId" form:"customerId"`
	ServiceID  *int64 `json:"serviceId" form:"serviceId"`
}

// CreateProjectRequest represents project creation parameters
type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	CustomerID  int64      `json:"customerId" binding:"required"`
	ServiceID   *int64     `json:"serviceId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Amount      float64    `json:"amount" binding:"omitempty,min=0"`
	Description *string    `json:"description"`
}

// UpdateProjectRequest represents project update parameters
type UpdateProjectRequest struct {
	Name        *string    `json:"name"`
	ServiceID   *int64     `json:"serviceId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Amount      *float64   `json:"amount" binding:"omitempty,min=0"`
	Description *string    `json:"description"`
}

// ProjectResponse is the wire shape for a project.
type ProjectResponse struct {
	Project
	StatusLabel string `json:"statusLabel"`
	StatusClass string `json:"statusClass"`
}

// NewProjectResponse projects a project row to its response shape.
func NewProjectResponse(p *Project) ProjectResponse {
	return ProjectResponse{
		Project:     *p,
		StatusLabel: StatusLabel(p.Status),
		StatusClass: StatusClass(p.Status),
	}
}
