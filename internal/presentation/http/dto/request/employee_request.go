package request

import "github.com/google/uuid"

// EmployeeRequest creates or renames an employee
type EmployeeRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// DealerRequest creates or updates a dealer
type DealerRequest struct {
	Name       string    `json:"name" binding:"required,max=255"`
	EmployeeID uuid.UUID `json:"employee_id" binding:"required"`
}
