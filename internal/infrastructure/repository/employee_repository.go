package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
	"gorm.io/gorm"
)

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *gorm.DB) domainRepo.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *entity.Employee) error {
	return translateError(conn(ctx, r.db).Create(employee).Error)
}

func (r *employeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Employee, error) {
	var employee entity.Employee
	err := conn(ctx, r.db).First(&employee, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &employee, err
}

func (r *employeeRepository) GetByName(ctx context.Context, name string) (*entity.Employee, error) {
	var employee entity.Employee
	err := conn(ctx, r.db).First(&employee, "LOWER(name) = LOWER(?)", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &employee, err
}

func (r *employeeRepository) Update(ctx context.Context, employee *entity.Employee) error {
	return translateError(conn(ctx, r.db).Omit("Dealers").Save(employee).Error)
}

func (r *employeeRepository) List(ctx context.Context, includeInactive bool) ([]entity.Employee, error) {
	var employees []entity.Employee
	query := conn(ctx, r.db).Model(&entity.Employee{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&employees).Error
	return employees, err
}

type dealerRepository struct {
	db *gorm.DB
}

// NewDealerRepository creates a new dealer repository
func NewDealerRepository(db *gorm.DB) domainRepo.DealerRepository {
	return &dealerRepository{db: db}
}

func (r *dealerRepository) Create(ctx context.Context, dealer *entity.Dealer) error {
	return translateError(conn(ctx, r.db).Omit("Employee").Create(dealer).Error)
}

func (r *dealerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Dealer, error) {
	var dealer entity.Dealer
	err := conn(ctx, r.db).
		Preload("Employee").
		First(&dealer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &dealer, err
}

func (r *dealerRepository) Update(ctx context.Context, dealer *entity.Dealer) error {
	return translateError(conn(ctx, r.db).Omit("Employee").Save(dealer).Error)
}

func (r *dealerRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).Delete(&entity.Dealer{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

func (r *dealerRepository) List(ctx context.Context, employeeID *uuid.UUID) ([]entity.Dealer, error) {
	var dealers []entity.Dealer
	query := conn(ctx, r.db).Model(&entity.Dealer{}).Preload("Employee")
	if employeeID != nil {
		query = query.Where("employee_id = ?", *employeeID)
	}
	err := query.Order("name ASC").Find(&dealers).Error
	return dealers, err
}
