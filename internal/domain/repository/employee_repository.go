package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
)

// EmployeeRepository defines the interface for employee data operations
type EmployeeRepository interface {
	Create(ctx context.Context, employee *entity.Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Employee, error)
	// GetByName matches case-insensitively, active or not
	GetByName(ctx context.Context, name string) (*entity.Employee, error)
	// Update saves all fields. Employees are deactivated rather than deleted
	// because bills keep a snapshot of their name.
	Update(ctx context.Context, employee *entity.Employee) error
	List(ctx context.Context, includeInactive bool) ([]entity.Employee, error)
}

// DealerRepository defines the interface for dealer data operations
type DealerRepository interface {
	Create(ctx context.Context, dealer *entity.Dealer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Dealer, error)
	Update(ctx context.Context, dealer *entity.Dealer) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, employeeID *uuid.UUID) ([]entity.Dealer, error)
}
