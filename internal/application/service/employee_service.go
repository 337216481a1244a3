package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
)

// EmployeeService handles employee-related operations
type EmployeeService struct {
	employeeRepo repository.EmployeeRepository
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(employeeRepo repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{employeeRepo: employeeRepo}
}

// CreateEmployee adds an employee. A deactivated employee with the same name
// is reactivated instead; an active one is a conflict.
// The second return value reports whether an existing record was reactivated.
func (s *EmployeeService) CreateEmployee(ctx context.Context, name string) (*entity.Employee, bool, error) {
	name = strings.TrimSpace(name)
	if err := validateEmployeeName(name); err != nil {
		return nil, false, err
	}

	existing, err := s.employeeRepo.GetByName(ctx, name)
	if err != nil {
		return nil, false, apperror.NewPersistenceError("load employee", err)
	}
	if existing != nil {
		if existing.IsActive {
			return nil, false, apperror.NewConflictError("Employee with this name already exists")
		}
		existing.IsActive = true
		if err := s.employeeRepo.Update(ctx, existing); err != nil {
			return nil, false, apperror.NewPersistenceError("reactivate employee", err)
		}
		return existing, true, nil
	}

	employee := &entity.Employee{Name: name, IsActive: true}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, false, apperror.NewPersistenceError("create employee", err)
	}
	return employee, false, nil
}

// GetEmployee returns an employee by id
func (s *EmployeeService) GetEmployee(ctx context.Context, id uuid.UUID) (*entity.Employee, error) {
	employee, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("load employee", err)
	}
	if employee == nil {
		return nil, apperror.NewNotFoundError("Employee")
	}
	return employee, nil
}

// ListEmployees returns employees ordered by name
func (s *EmployeeService) ListEmployees(ctx context.Context, includeInactive bool) ([]entity.Employee, error) {
	employees, err := s.employeeRepo.List(ctx, includeInactive)
	if err != nil {
		return nil, apperror.NewPersistenceError("list employees", err)
	}
	if employees == nil {
		employees = []entity.Employee{}
	}
	return employees, nil
}

// RenameEmployee changes an employee's name. Existing bills keep the old name.
func (s *EmployeeService) RenameEmployee(ctx context.Context, id uuid.UUID, name string) (*entity.Employee, error) {
	name = strings.TrimSpace(name)
	if err := validateEmployeeName(name); err != nil {
		return nil, err
	}
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	other, err := s.employeeRepo.GetByName(ctx, name)
	if err != nil {
		return nil, apperror.NewPersistenceError("load employee", err)
	}
	if other != nil && other.ID != employee.ID {
		return nil, apperror.NewConflictError("Employee with this name already exists")
	}

	employee.Name = name
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, apperror.NewPersistenceError("update employee", err)
	}
	return employee, nil
}

// DeactivateEmployee hides an employee from listings and bill creation
func (s *EmployeeService) DeactivateEmployee(ctx context.Context, id uuid.UUID) error {
	employee, err := s.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	if !employee.IsActive {
		return nil
	}
	employee.IsActive = false
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return apperror.NewPersistenceError("deactivate employee", err)
	}
	return nil
}

func validateEmployeeName(name string) error {
	if name == "" {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "is required"}})
	}
	if len([]rune(name)) > 100 {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "must be at most 100 characters"}})
	}
	return nil
}
