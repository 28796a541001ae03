package model

import "time"

// Customer status values
const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
	CustomerStatusLead     = "lead"
	CustomerStatusDeleted  = "deleted"
)

// CustomerStatuses lists the values accepted by status updates; deleted
// is reachable only through soft delete.
var CustomerStatuses = []string{
	CustomerStatusActive,
	CustomerStatusInactive,
	CustomerStatusLead,
}

// Customer represents a customer record
type Customer struct {
	Base
	Name       string  `json:"name" db:"name"`
	Email      *string `json:"email" db:"email"`
	Phone      *string `json:"phone" db:"phone"`
	Company    *string `json:"company" db:"company"`
	Address    *string `json:"address" db:"address"`
	City       *string `json:"city" db:"city"`
	PostalCode *string `json:"postalCode" db:"postal_code"`
	Country    *string `json:"country" db:"country"`
	Newsletter bool    `json:"newsletter" db:"newsletter"`
	Status     string  `json:"status" db:"status"`
}

// GetStatus returns the current lifecycle status.
func (c Customer) GetStatus() string { return c.Status }

// CustomerFilter represents customer search parameters
type CustomerFilter struct {
	BaseFilter
	City       string `json:"city" form:"city"`
	Country    string `json:"country" form:"country"`
	Newsletter *bool  `json:"newsletter" form:"newsletter"`
}

// CreateCustomerRequest represents customer creation parameters
type CreateCustomerRequest struct {
	Name       string  `json:"name" binding:"required"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Phone      *string `json:"phone"`
	Company    *string `json:"company"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
	Newsletter bool    `json:"newsletter"`
	Status     string  `json:"status" binding:"omitempty,oneof=active inactive lead"`
}

// UpdateCustomerRequest represents customer update parameters
type UpdateCustomerRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Phone      *string `json:"phone"`
	Company    *string `json:"company"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
	Newsletter *bool   `json:"newsletter"`
}

// CustomerResponse is the wire shape for a customer, including
// display-only fields derived from stored data.
type CustomerResponse struct {
	Customer
	StatusLabel string `json:"statusLabel"`
	StatusClass string `json:"statusClass"`
	Initials    string `json:"initials"`
}

// NewCustomerResponse projects a customer to its response shape.
func NewCustomerResponse(c *Customer) CustomerResponse {
	return CustomerResponse{
		Customer:    *c,
		StatusLabel: StatusLabel(c.Status),
		StatusClass: StatusClass(c.Status),
		Initials:    Initials(c.Name),
	}
}

// CustomerNote is a free-form note attached to a customer.
type CustomerNote struct {
	ID         int64     `json:"id" db:"id"`
	CustomerID int64     `json:"customerId" db:"customer_id"`
	UserID     *int64    `json:"userId" db:"user_id"`
	UserName   string    `json:"userName" db:"user_name"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// CreateNoteRequest carries the body for note endpoints.
type CreateNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// CustomerStats aggregates customers per status.
type CustomerStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Leads    int64 `json:"leads"`
}
