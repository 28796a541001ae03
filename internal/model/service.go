package model

// Catalog service status values
const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

// ServiceStatuses lists the values accepted by status updates.
var ServiceStatuses = []string{
	ServiceStatusActive,
	ServiceStatusInactive,
}

// CatalogService is a billable service offered to customers.
type CatalogService struct {
	Base
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	VatRate     float64 `json:"vatRate" db:"vat_rate"`
	Unit        *string `json:"unit" db:"unit"`
	Status      string  `json:"status" db:"status"`
}

// GetStatus returns the current lifecycle status.
func (s CatalogService) GetStatus() string { return s.Status }

// ServiceFilter represents catalog search parameters
type ServiceFilter struct {
	BaseFilter
	MaxPrice *float64 `json:"maxPrice" form:"maxPrice"`
}

// CreateServiceRequest represents catalog creation parameters
type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	VatRate     float64 `json:"vatRate" binding:"min=0,max=100"`
	Unit        *string `json:"unit"`
}

// UpdateServiceRequest represents catalog update parameters
type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	VatRate     *float64 `json:"vatRate" binding:"omitempty,min=0,max=100"`
	Unit        *string  `json:"unit"`
}

// ServiceResponse is the wire shape for a catalog service, including
// the derived gross price.
type ServiceResponse struct {
	CatalogService
	PriceGross  float64 `json:"priceGross"`
	StatusLabel string  `json:"statusLabel"`
	StatusClass string  `json:"statusClass"`
}

// NewServiceResponse projects a catalog service to its response shape.
func NewServiceResponse(s *CatalogService) ServiceResponse {
	return ServiceResponse{
		CatalogService: *s,
		PriceGross:     s.Price * (1 + s.VatRate/100),
		StatusLabel:    StatusLabel(s.Status),
		StatusClass:    StatusClass(s.Status),
	}
}
