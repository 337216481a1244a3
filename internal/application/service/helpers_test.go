package service

import (
	"context"
	"testing"

	"github.com/sangkips/agrishop-billing/internal/config"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/internal/infrastructure/memory"
	"github.com/sangkips/agrishop-billing/pkg/invoice"
	"github.com/sangkips/agrishop-billing/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBilling = config.BillingConfig{
	NumberPrefix:   "AGR",
	NumberWidth:    6,
	MaxCustomers:   10,
	CreateAttempts: 3,
}

type fixture struct {
	store    *memory.Store
	billRepo repository.BillRepository
	bills    *BillService
	employee *entity.Employee
}

// newFixture wires a BillService over an in-memory store with one active employee.
// wrap, when given, decorates the bill repository.
func newFixture(t *testing.T, wrap func(repository.BillRepository) repository.BillRepository) *fixture {
	t.Helper()
	store := memory.NewStore()
	billRepo := store.Bills()
	if wrap != nil {
		billRepo = wrap(billRepo)
	}

	employee := &entity.Employee{Name: "Anil Kumar", IsActive: true}
	require.NoError(t, store.Employees().Create(context.Background(), employee))

	svc := NewBillService(
		NewPricingEngine(store.Products()),
		billRepo,
		store.Products(),
		store.Employees(),
		store.Sequences(),
		store.TxManager(),
		invoice.NewRenderer(invoice.DefaultBranding()),
		testBilling,
		logger.Nop(),
	)
	return &fixture{store: store, billRepo: billRepo, bills: svc, employee: employee}
}

func (f *fixture) product(t *testing.T, name string, qty int, rate string, commission *string) *entity.Product {
	t.Helper()
	p := &entity.Product{Name: name, Quantity: qty, Rate: decimal.RequireFromString(rate)}
	if commission != nil {
		p.CommissionPercent = decimal.NewNullDecimal(decimal.RequireFromString(*commission))
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, p *entity.Product) int {
	t.Helper()
	got, err := f.store.Products().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	return got.Quantity
}

func (f *fixture) billCount(t *testing.T) int64 {
	t.Helper()
	n, err := f.store.Bills().Count(context.Background())
	require.NoError(t, err)
	return n
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, decimal.RequireFromString(want).StringFixed(2), got.StringFixed(2))
}

// flakyBillRepo fails Create a set number of times before delegating.
type flakyBillRepo struct {
	repository.BillRepository
	duplicates int
	err        error
}

func (r *flakyBillRepo) Create(ctx context.Context, bill *entity.Bill) error {
	if r.duplicates > 0 {
		r.duplicates--
		return repository.ErrDuplicate
	}
	if r.err != nil {
		return r.err
	}
	return r.BillRepository.Create(ctx, bill)
}
