package entity

import "time"

// Sequence is a named monotonically increasing counter
type Sequence struct {
	Key        string    `gorm:"primaryKey;size:64"`
	CurrentVal int64     `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the Sequence model
func (Sequence) TableName() string {
	return "sys_sequences"
}
