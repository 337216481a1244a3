package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillItemRequest is one requested line
type BillItemRequest struct {
	ProductID         uuid.UUID        `json:"product_id" binding:"required"`
	Quantity          int              `json:"quantity"`
	CommissionPercent *decimal.Decimal `json:"commission_percent"`
	DealerName        string           `json:"dealer_name" binding:"max=255"`
}

// BillCustomerRequest is one customer's section
type BillCustomerRequest struct {
	CustomerName string            `json:"customer_name"`
	Items        []BillItemRequest `json:"items" binding:"dive"`
}

// CreateBillRequest represents a bill creation request.
// Counts and business rules are checked by the service so that each
// violation carries its own reason.
type CreateBillRequest struct {
	EmployeeID      uuid.UUID             `json:"employee_id" binding:"required"`
	Customers       []BillCustomerRequest `json:"customers" binding:"dive"`
	DiscountPercent decimal.Decimal       `json:"discount_percent"`
	Notes           string                `json:"notes"`
	Status          string                `json:"status" binding:"omitempty,oneof=draft completed cancelled"`
}

// BillFilterRequest represents bill filter parameters
type BillFilterRequest struct {
	Customer   string `form:"customer"`
	Dealer     string `form:"dealer"`
	Search     string `form:"search"`
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`

	// camelCase aliases used by existing clients
	StartDateAlias string `form:"startDate"`
	EndDateAlias   string `form:"endDate"`
}

// Start returns start_date, falling back to startDate
func (r *BillFilterRequest) Start() string {
	if r.StartDate != "" {
		return r.StartDate
	}
	return r.StartDateAlias
}

// End returns end_date, falling back to endDate
func (r *BillFilterRequest) End() string {
	if r.EndDate != "" {
		return r.EndDate
	}
	return r.EndDateAlias
}
