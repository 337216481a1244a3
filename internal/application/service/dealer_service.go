package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
)

// DealerService handles dealer-related operations
type DealerService struct {
	dealerRepo   repository.DealerRepository
	employeeRepo repository.EmployeeRepository
}

// NewDealerService creates a new dealer service
func NewDealerService(dealerRepo repository.DealerRepository, employeeRepo repository.EmployeeRepository) *DealerService {
	return &DealerService{dealerRepo: dealerRepo, employeeRepo: employeeRepo}
}

// DealerInput represents the create/update dealer input
type DealerInput struct {
	Name       string
	EmployeeID uuid.UUID
}

// CreateDealer adds a dealer managed by an existing employee
func (s *DealerService) CreateDealer(ctx context.Context, input *DealerInput) (*entity.Dealer, error) {
	dealer := &entity.Dealer{Name: strings.TrimSpace(input.Name), EmployeeID: input.EmployeeID}
	if err := s.validate(ctx, dealer); err != nil {
		return nil, err
	}
	if err := s.dealerRepo.Create(ctx, dealer); err != nil {
		return nil, apperror.NewPersistenceError("create dealer", err)
	}
	return dealer, nil
}

// GetDealer returns a dealer by id
func (s *DealerService) GetDealer(ctx context.Context, id uuid.UUID) (*entity.Dealer, error) {
	dealer, err := s.dealerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("load dealer", err)
	}
	if dealer == nil {
		return nil, apperror.NewNotFoundError("Dealer")
	}
	return dealer, nil
}

// UpdateDealer replaces a dealer's name and employee
func (s *DealerService) UpdateDealer(ctx context.Context, id uuid.UUID, input *DealerInput) (*entity.Dealer, error) {
	dealer, err := s.GetDealer(ctx, id)
	if err != nil {
		return nil, err
	}
	dealer.Name = strings.TrimSpace(input.Name)
	dealer.EmployeeID = input.EmployeeID
	dealer.Employee = nil
	if err := s.validate(ctx, dealer); err != nil {
		return nil, err
	}
	if err := s.dealerRepo.Update(ctx, dealer); err != nil {
		return nil, apperror.NewPersistenceError("update dealer", err)
	}
	return dealer, nil
}

// DeleteDealer removes a dealer
func (s *DealerService) DeleteDealer(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.dealerRepo.Delete(ctx, id)
	if err != nil {
		return apperror.NewPersistenceError("delete dealer", err)
	}
	if !deleted {
		return apperror.NewNotFoundError("Dealer")
	}
	return nil
}

// ListDealers returns all dealers, or those of one employee
func (s *DealerService) ListDealers(ctx context.Context, employeeID *uuid.UUID) ([]entity.Dealer, error) {
	dealers, err := s.dealerRepo.List(ctx, employeeID)
	if err != nil {
		return nil, apperror.NewPersistenceError("list dealers", err)
	}
	if dealers == nil {
		dealers = []entity.Dealer{}
	}
	return dealers, nil
}

func (s *DealerService) validate(ctx context.Context, dealer *entity.Dealer) error {
	if dealer.Name == "" {
		return apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "is required"}})
	}
	employee, err := s.employeeRepo.GetByID(ctx, dealer.EmployeeID)
	if err != nil {
		return apperror.NewPersistenceError("load employee", err)
	}
	if employee == nil {
		return apperror.NewNotFoundError("Employee").WithReason(apperror.ReasonEmployeeNotFound)
	}
	return nil
}
