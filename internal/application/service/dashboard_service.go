package service

import (
	"context"
	"encoding/json"

	"github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/shopspring/decimal"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	productRepo repository.ProductRepository
	billRepo    repository.BillRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(productRepo repository.ProductRepository, billRepo repository.BillRepository) *DashboardService {
	return &DashboardService{productRepo: productRepo, billRepo: billRepo}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalProducts  int64
	InventoryValue decimal.Decimal
	TotalBills     int64
	TotalRevenue   decimal.Decimal
}

func (d DashboardStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalProducts  int64   `json:"total_products"`
		InventoryValue float64 `json:"inventory_value"`
		TotalBills     int64   `json:"total_bills"`
		TotalRevenue   float64 `json:"total_revenue"`
	}{
		TotalProducts:  d.TotalProducts,
		InventoryValue: money.Float(d.InventoryValue),
		TotalBills:     d.TotalBills,
		TotalRevenue:   money.Float(d.TotalRevenue),
	})
}

// GetDashboardStats returns catalogue and sales totals
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, apperror.NewPersistenceError("count products", err)
	}
	if stats.InventoryValue, err = s.productRepo.InventoryValue(ctx); err != nil {
		return nil, apperror.NewPersistenceError("sum inventory", err)
	}
	if stats.TotalBills, err = s.billRepo.Count(ctx); err != nil {
		return nil, apperror.NewPersistenceError("count bills", err)
	}
	if stats.TotalRevenue, err = s.billRepo.TotalRevenue(ctx); err != nil {
		return nil, apperror.NewPersistenceError("sum revenue", err)
	}
	return stats, nil
}
