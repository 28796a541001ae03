package query

import "strings"

// Pagination defaults and limits.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortDir is a sort direction.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ParseSortDir normalizes a direction string, defaulting to ascending.
func ParseSortDir(s string) SortDir {
	if strings.EqualFold(s, string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Sort names a column and direction. The column is validated against
// the repository's sortable whitelist before it reaches SQL.
type Sort struct {
	Field string
	Dir   SortDir
}

// Options carries pagination and sorting for list operations. Sort may
// hold several columns; an empty slice falls back to the store default.
type Options struct {
	Page           int
	Limit          int
	Sort           []Sort
	IncludeDeleted bool
}

// WithSort is a convenience for the common single-column case.
func (o Options) WithSort(field string, dir SortDir) Options {
	o.Sort = append(o.Sort, Sort{Field: field, Dir: dir})
	return o
}

// Normalized clamps page to >= 1 and limit to [1, MaxLimit],
// applying defaults for zero values.
func (o Options) Normalized() Options {
	if o.Page < 1 {
		o.Page = DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	for i := range o.Sort {
		o.Sort[i].Dir = ParseSortDir(string(o.Sort[i].Dir))
	}
	return o
}

// Offset returns the row offset for the normalized page.
func (o Options) Offset() int {
	n := o.Normalized()
	return (n.Page - 1) * n.Limit
}

// Pagination describes one page of a result set.
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	PageSize     int   `json:"pageSize"`
	TotalPages   int   `json:"totalPages"`
	TotalRecords int64 `json:"totalRecords"`
}

// NewPagination computes page metadata. TotalPages is ceil(total/size).
func NewPagination(page, size int, total int64) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultLimit
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	return Pagination{
		CurrentPage:  page,
		PageSize:     size,
		TotalPages:   totalPages,
		TotalRecords: total,
	}
}

// Result pairs a page of rows with its pagination metadata.
type Result[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewResult builds a Result, normalizing a nil slice to empty.
func NewResult[T any](data []T, p Pagination) *Result[T] {
	if data == nil {
		data = []T{}
	}
	return &Result[T]{Data: data, Pagination: p}
}
