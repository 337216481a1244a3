package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/pkg/pagination"
	"github.com/shopspring/decimal"
)

// BillRepository defines the interface for bill data operations.
// Bills are returned with customers and items loaded in their original order.
type BillRepository interface {
	// Create inserts the bill with all customer sections and items.
	// Returns ErrDuplicate if the bill number is taken.
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
	// DistinctDealers returns every dealer name used on a bill line, excluding the placeholder
	DistinctDealers(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	// TotalRevenue returns Σ final amount over all bills
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

// BillFilterParams contains filtering parameters for bill queries
type BillFilterParams struct {
	Pagination *pagination.PaginationParams
	Customer   string // case-insensitive regular expression on customer names
	Dealer     string // case-insensitive regular expression on dealer names
	Search     string // substring of bill number, employee, customer or product name
	EmployeeID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time // inclusive of the whole day
}

// SequenceRepository allocates values from named counters
type SequenceRepository interface {
	// Next atomically increments the counter named key and returns the new value
	Next(ctx context.Context, key string) (int64, error)
}

// EndExclusive returns the first instant after the EndDate day, or nil.
func (p *BillFilterParams) EndExclusive() *time.Time {
	if p.EndDate == nil {
		return nil
	}
	y, m, d := p.EndDate.Date()
	end := time.Date(y, m, d+1, 0, 0, 0, 0, p.EndDate.Location())
	return &end
}
