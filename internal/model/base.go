package model

import (
	"time"

	"github.com/risingbsm/bsm-api/internal/query"
)

// Base contains common fields for all persisted entities.
type Base struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// GetID returns the primary key.
func (b Base) GetID() int64 { return b.ID }

// JSONMap represents a generic JSON object
type JSONMap map[string]interface{}

// BaseFilter contains filter fields shared by every list endpoint.
type BaseFilter struct {
	Search         string `json:"search" form:"search"`
	Status         string `json:"status" form:"status"`
	Page           int    `json:"page" form:"page"`
	Limit          int    `json:"limit" form:"limit"`
	SortBy         string `json:"sortBy" form:"sortBy"`
	SortDirection  string `json:"sortDirection" form:"sortDirection"`
	IncludeDeleted bool   `json:"includeDeleted" form:"includeDeleted"`
}

// Options converts the bound filter fields into list options.
func (f BaseFilter) Options() query.Options {
	opts := query.Options{Page: f.Page, Limit: f.Limit, IncludeDeleted: f.IncludeDeleted}
	if f.SortBy != "" {
		opts = opts.WithSort(f.SortBy, query.ParseSortDir(f.SortDirection))
	}
	return opts
}

// UpdateStatusRequest carries the body for status endpoints.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BulkStatusRequest moves several entities to the same status.
type BulkStatusRequest struct {
	IDs    []int64 `json:"ids" binding:"required,min=1"`
	Status string  `json:"status" binding:"required"`
}
