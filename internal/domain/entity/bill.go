package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/enum"
	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultDealerName is stored on lines that name no dealer
const DefaultDealerName = "N/A"

// Bill groups one or more customers' purchases issued by one employee.
// Every monetary field is derived from the line items.
type Bill struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillNumber      string          `gorm:"size:32;not null;uniqueIndex" json:"bill_number"`
	EmployeeID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"employee_id"`
	EmployeeName    string          `gorm:"size:100;not null;index" json:"employee_name"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`
	TotalCommission decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`
	TotalItems      int             `gorm:"not null" json:"total_items"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"-"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`
	FinalAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`
	Notes           string          `gorm:"size:500" json:"notes"`
	Status          enum.BillStatus `gorm:"not null" json:"status"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Customers []BillCustomer `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"customers"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// MarshalJSON renders monetary fields as JSON numbers
func (b Bill) MarshalJSON() ([]byte, error) {
	type Alias Bill
	return json.Marshal(&struct {
		Alias
		TotalAmount     float64 `json:"total_amount"`
		TotalCommission float64 `json:"total_commission"`
		DiscountPercent float64 `json:"discount_percent"`
		DiscountAmount  float64 `json:"discount_amount"`
		FinalAmount     float64 `json:"final_amount"`
	}{
		Alias:           Alias(b),
		TotalAmount:     money.Float(b.TotalAmount),
		TotalCommission: money.Float(b.TotalCommission),
		DiscountPercent: money.Float(b.DiscountPercent),
		DiscountAmount:  money.Float(b.DiscountAmount),
		FinalAmount:     money.Float(b.FinalAmount),
	})
}

// BillCustomer is one customer's section of a bill
type BillCustomer struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position     int             `gorm:"not null" json:"-"`
	CustomerName string          `gorm:"size:100;not null;index" json:"customer_name"`
	Subtotal     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`

	Items []BillItem `gorm:"foreignKey:BillCustomerID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new customer section
func (c *BillCustomer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillCustomer model
func (BillCustomer) TableName() string {
	return "bill_customers"
}

// MarshalJSON renders monetary fields as JSON numbers
func (c BillCustomer) MarshalJSON() ([]byte, error) {
	type Alias BillCustomer
	return json.Marshal(&struct {
		Alias
		Subtotal float64 `json:"subtotal"`
	}{
		Alias:    Alias(c),
		Subtotal: money.Float(c.Subtotal),
	})
}

// BillItem is a priced line on a customer section
type BillItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillCustomerID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position          int             `gorm:"not null" json:"-"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName       string          `gorm:"size:255;not null" json:"product_name"`
	DealerName        string          `gorm:"size:255;not null;index" json:"dealer_name"`
	Quantity          int             `gorm:"not null" json:"quantity"`
	Rate              decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`
	ItemAmount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`
	CommissionPercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"-"`
	CommissionAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`
	LineTotal         decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"-"`
}

// BeforeCreate generates a UUID before creating a new line item
func (i *BillItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}

// MarshalJSON renders monetary fields as JSON numbers
func (i BillItem) MarshalJSON() ([]byte, error) {
	type Alias BillItem
	return json.Marshal(&struct {
		Alias
		Rate              float64 `json:"rate"`
		ItemAmount        float64 `json:"item_amount"`
		CommissionPercent float64 `json:"commission_percent"`
		CommissionAmount  float64 `json:"commission_amount"`
		LineTotal         float64 `json:"line_total"`
	}{
		Alias:             Alias(i),
		Rate:              money.Float(i.Rate),
		ItemAmount:        money.Float(i.ItemAmount),
		CommissionPercent: money.Float(i.CommissionPercent),
		CommissionAmount:  money.Float(i.CommissionAmount),
		LineTotal:         money.Float(i.LineTotal),
	})
}
