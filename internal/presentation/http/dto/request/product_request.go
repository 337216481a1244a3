package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name              string           `json:"name" binding:"required,min=1,max=255"`
	Quantity          int              `json:"quantity" binding:"min=0"`
	Rate              decimal.Decimal  `json:"rate"`
	CommissionPercent *decimal.Decimal `json:"commission_percent"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=1,max=255"`
	Quantity          *int             `json:"quantity" binding:"omitempty,min=0"`
	Rate              *decimal.Decimal `json:"rate"`
	CommissionPercent *decimal.Decimal `json:"commission_percent"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	LowStock  int    `form:"low_stock" binding:"min=0"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}
