package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultCommissionPercent applies when neither the bill line nor the product names one
var DefaultCommissionPercent = decimal.NewFromInt(3)

// Product is a stock-keeping item sold on bills
type Product struct {
	ID                uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	Name              string              `gorm:"size:255;not null;index" json:"name"`
	Quantity          int                 `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Rate              decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"-"`
	CommissionPercent decimal.NullDecimal `gorm:"type:numeric(5,2)" json:"-"` // NULL on rows imported without one
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// DefaultCommission is the product's commission percent, or the shop default
func (p *Product) DefaultCommission() decimal.Decimal {
	if p.CommissionPercent.Valid {
		return p.CommissionPercent.Decimal
	}
	return DefaultCommissionPercent
}

// StockValue returns quantity × rate
func (p *Product) StockValue() decimal.Decimal {
	return p.Rate.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// MarshalJSON renders monetary fields as JSON numbers
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Rate              float64 `json:"rate"`
		CommissionPercent float64 `json:"commission_percent"`
	}{
		Alias:             Alias(p),
		Rate:              money.Float(p.Rate),
		CommissionPercent: money.Float(p.DefaultCommission()),
	})
}
