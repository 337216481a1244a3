package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/infrastructure/memory"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
	"github.com/sangkips/agrishop-billing/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	svc := NewProductService(memory.NewStore().Products())

	product, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		Name:     " Urea 50kg ",
		Quantity: 40,
		Rate:     decimal.RequireFromString("266.505"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Urea 50kg", product.Name)
	assertMoney(t, "266.51", product.Rate)
	assertMoney(t, "3", product.DefaultCommission())
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewProductService(memory.NewStore().Products())

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		Quantity:          -1,
		Rate:              decimal.NewFromInt(-5),
		CommissionPercent: decPtr("120"),
	})

	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	fields := make([]string, 0, len(appErr.Errors))
	for _, fe := range appErr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"name", "quantity", "rate", "commission_percent"}, fields)
}

func TestUpdateProduct(t *testing.T) {
	svc := NewProductService(memory.NewStore().Products())
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, &CreateProductInput{Name: "DAP", Quantity: 5, Rate: decimal.NewFromInt(1350)})
	require.NoError(t, err)

	qty := 25
	updated, err := svc.UpdateProduct(ctx, product.ID, &UpdateProductInput{Quantity: &qty, CommissionPercent: decPtr("4.5")})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Quantity)
	assert.Equal(t, "DAP", updated.Name)
	assertMoney(t, "4.5", updated.DefaultCommission())

	_, err = svc.UpdateProduct(ctx, uuid.New(), &UpdateProductInput{Quantity: &qty})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	require.NoError(t, svc.DeleteProduct(ctx, product.ID))
	assert.True(t, apperror.IsKind(svc.DeleteProduct(ctx, product.ID), apperror.KindNotFound))
}

func TestListProducts(t *testing.T) {
	svc := NewProductService(memory.NewStore().Products())
	ctx := context.Background()

	for _, p := range []struct {
		name string
		qty  int
	}{{"Urea", 40}, {"DAP", 3}, {"Potash", 8}} {
		_, err := svc.CreateProduct(ctx, &CreateProductInput{Name: p.name, Quantity: p.qty, Rate: decimal.NewFromInt(100)})
		require.NoError(t, err)
	}

	res, err := svc.ListProducts(ctx, &ListProductsInput{LowStock: 10, SortBy: "name", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "DAP", res.Items[0].Name)
	assert.Equal(t, "Potash", res.Items[1].Name)

	res, err = svc.ListProducts(ctx, &ListProductsInput{Search: "ure"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Pagination.Total)

	res, err = svc.ListProducts(ctx, &ListProductsInput{
		Pagination: &pagination.PaginationParams{Page: 2, PerPage: 2},
		SortBy:     "quantity; DROP TABLE products",
	})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 2, res.Pagination.TotalPages)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)
	f.product(t, "DAP", 4, "250", nil)

	_, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID:      f.employee.ID,
		Customers:       singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 2}),
		DiscountPercent: decimal.NewFromInt(50),
	})
	require.NoError(t, err)

	stats, err := NewDashboardService(f.store.Products(), f.store.Bills()).GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalProducts)
	assertMoney(t, "1800", stats.InventoryValue)
	assert.Equal(t, int64(1), stats.TotalBills)
	assertMoney(t, "103", stats.TotalRevenue)
}
