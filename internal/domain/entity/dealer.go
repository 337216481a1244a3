package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dealer is a supplier contact managed by an employee
type Dealer struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name       string    `gorm:"size:255;not null;index" json:"name"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Employee *Employee `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"employee,omitempty"`
}

// BeforeCreate generates a UUID before creating a new dealer
func (d *Dealer) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Dealer model
func (Dealer) TableName() string {
	return "dealers"
}
