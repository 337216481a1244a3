package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

// preloadSections loads customers and items in the order they were entered
func preloadSections(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customers", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Customers.Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// Create inserts the bill, its customer sections and their items
func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	return translateError(conn(ctx, r.db).Create(bill).Error)
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := conn(ctx, r.db).
		Scopes(preloadSections).
		First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

// Delete removes the bill. Sections and items go with it through ON DELETE CASCADE.
func (r *billRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := conn(ctx, r.db).Delete(&entity.Bill{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

const (
	customerExists = `EXISTS (SELECT 1 FROM bill_customers bc
		WHERE bc.bill_id = bills.id AND bc.customer_name %s)`
	itemExists = `EXISTS (SELECT 1 FROM bill_items bi
		JOIN bill_customers bc ON bc.id = bi.bill_customer_id
		WHERE bc.bill_id = bills.id AND bi.%s)`
)

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := conn(ctx, r.db).Model(&entity.Bill{})

	if params.EmployeeID != nil {
		query = query.Where("bills.employee_id = ?", *params.EmployeeID)
	}
	if params.StartDate != nil {
		query = query.Where("bills.created_at >= ?", *params.StartDate)
	}
	if end := params.EndExclusive(); end != nil {
		query = query.Where("bills.created_at < ?", *end)
	}
	if params.Customer != "" {
		query = query.Where(fmt.Sprintf(customerExists, "~* ?"), params.Customer)
	}
	if params.Dealer != "" {
		query = query.Where(fmt.Sprintf(itemExists, "dealer_name ~* ?"), params.Dealer)
	}
	if params.Search != "" {
		query = query.Where(
			"(bills.bill_number ILIKE @p OR bills.employee_name ILIKE @p OR "+
				fmt.Sprintf(customerExists, "ILIKE @p")+" OR "+
				fmt.Sprintf(itemExists, "product_name ILIKE @p")+")",
			sql.Named("p", "%"+escapeLike(params.Search)+"%"),
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Scopes(preloadSections).
		Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("bills.created_at DESC").
		Order("bills.bill_number DESC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) DistinctDealers(ctx context.Context) ([]string, error) {
	var dealers []string
	err := conn(ctx, r.db).Model(&entity.BillItem{}).
		Where("dealer_name NOT IN ?", []string{"", entity.DefaultDealerName}).
		Distinct().
		Order("dealer_name ASC").
		Pluck("dealer_name", &dealers).Error
	return dealers, err
}

func (r *billRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&entity.Bill{}).Count(&count).Error
	return count, err
}

func (r *billRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db).Model(&entity.Bill{}).
		Select("COALESCE(SUM(final_amount), 0)").
		Row().Scan(&total)
	return total, err
}

type sequenceRepository struct {
	db *gorm.DB
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *gorm.DB) domainRepo.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next increments the counter with a single UPSERT. The row lock it takes is
// held until the surrounding transaction ends, so numbers are handed out in
// commit order.
func (r *sequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	var next int64
	err := conn(ctx, r.db).Raw(`
		INSERT INTO sys_sequences (key, current_val, updated_at)
		VALUES (?, 1, NOW())
		ON CONFLICT (key) DO UPDATE
		SET current_val = sys_sequences.current_val + 1, updated_at = NOW()
		RETURNING current_val`, key).
		Row().Scan(&next)
	return next, err
}
