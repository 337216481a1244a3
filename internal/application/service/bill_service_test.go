package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/internal/domain/enum"
	"github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleCustomer(name string, items ...BillItemInput) []BillCustomerInput {
	return []BillCustomerInput{{CustomerName: name, Items: items}}
}

func TestCreateBill(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", strPtr("5"))
	ctx := context.Background()

	bill, err := f.bills.CreateBill(ctx, &CreateBillInput{
		EmployeeID:      f.employee.ID,
		Customers:       singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 3}),
		DiscountPercent: decimal.NewFromInt(10),
		Notes:           "  paid in cash ",
	})
	require.NoError(t, err)

	assert.Equal(t, "AGR-000001", bill.BillNumber)
	assert.Equal(t, "Anil Kumar", bill.EmployeeName)
	assert.Equal(t, "paid in cash", bill.Notes)
	assert.Equal(t, enum.BillStatusCompleted, bill.Status)
	assert.Equal(t, 3, bill.TotalItems)
	assertMoney(t, "315", bill.TotalAmount)
	assertMoney(t, "15", bill.TotalCommission)
	assertMoney(t, "31.5", bill.DiscountAmount)
	assertMoney(t, "283.5", bill.FinalAmount)
	assertMoney(t, "315", bill.Customers[0].Subtotal)
	assert.Equal(t, 7, f.stock(t, urea))

	stored, err := f.bills.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.BillNumber, stored.BillNumber)

	second, err := f.bills.CreateBill(ctx, &CreateBillInput{
		EmployeeID: f.employee.ID,
		Customers:  singleCustomer("Suresh", BillItemInput{ProductID: urea.ID, Quantity: 1}),
	})
	require.NoError(t, err)
	assert.Equal(t, "AGR-000002", second.BillNumber)
	assert.Equal(t, 6, f.stock(t, urea))
}

func TestCreateBillMultipleCustomers(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)
	dap := f.product(t, "DAP", 10, "50", strPtr("0"))

	bill, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID: f.employee.ID,
		Customers: []BillCustomerInput{
			{CustomerName: "Ramesh", Items: []BillItemInput{{ProductID: urea.ID, Quantity: 2}}},
			{CustomerName: "Suresh", Items: []BillItemInput{
				{ProductID: urea.ID, Quantity: 1},
				{ProductID: dap.ID, Quantity: 4},
			}},
		},
	})
	require.NoError(t, err)

	require.Len(t, bill.Customers, 2)
	assert.Equal(t, 1, bill.Customers[1].Position)
	assertMoney(t, "206", bill.Customers[0].Subtotal)
	assertMoney(t, "303", bill.Customers[1].Subtotal)
	assertMoney(t, "509", bill.TotalAmount)
	assertMoney(t, "9", bill.TotalCommission)
	assertMoney(t, "509", bill.FinalAmount)
	assert.Equal(t, 7, bill.TotalItems)
	assert.Equal(t, 7, f.stock(t, urea))
	assert.Equal(t, 6, f.stock(t, dap))
}

func TestCreateBillInsufficientStockLeavesNoTrace(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)

	_, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID: f.employee.ID,
		Customers:  singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 11}),
	})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock))
	assert.Equal(t, 10, f.stock(t, urea))
	assert.Equal(t, int64(0), f.billCount(t))
}

func TestCreateBillStockCheckedAcrossCustomers(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)

	_, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID: f.employee.ID,
		Customers: []BillCustomerInput{
			{CustomerName: "Ramesh", Items: []BillItemInput{{ProductID: urea.ID, Quantity: 6}}},
			{CustomerName: "Suresh", Items: []BillItemInput{{ProductID: urea.ID, Quantity: 6}}},
		},
	})

	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.KindInsufficientStock, appErr.Kind)
	assert.Equal(t, 12, appErr.Details["requested"])
	assert.Equal(t, 10, appErr.Details["available"])
	assert.Equal(t, []string{"Urea"}, appErr.Details["products"])
	assert.Equal(t, 10, f.stock(t, urea))
	assert.Equal(t, int64(0), f.billCount(t))
}

func TestCreateBillValidation(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)
	item := BillItemInput{ProductID: urea.ID, Quantity: 1}

	inactive := &entity.Employee{Name: "Gone", IsActive: false}
	require.NoError(t, f.store.Employees().Create(context.Background(), inactive))
	inactiveID := inactive.ID

	tooMany := make([]BillCustomerInput, 11)
	for i := range tooMany {
		tooMany[i] = BillCustomerInput{CustomerName: "C", Items: []BillItemInput{item}}
	}

	tests := []struct {
		name   string
		input  CreateBillInput
		kind   apperror.Kind
		reason string
	}{
		{"no customers", CreateBillInput{EmployeeID: f.employee.ID}, apperror.KindValidation, apperror.ReasonNoCustomers},
		{"too many customers", CreateBillInput{EmployeeID: f.employee.ID, Customers: tooMany}, apperror.KindValidation, apperror.ReasonNoCustomers},
		{"unknown employee", CreateBillInput{EmployeeID: uuid.New(), Customers: singleCustomer("R", item)}, apperror.KindNotFound, apperror.ReasonEmployeeNotFound},
		{"inactive employee", CreateBillInput{EmployeeID: inactiveID, Customers: singleCustomer("R", item)}, apperror.KindNotFound, apperror.ReasonEmployeeNotFound},
		{"empty customer", CreateBillInput{EmployeeID: f.employee.ID, Customers: singleCustomer("", item)}, apperror.KindValidation, apperror.ReasonEmptyCustomer},
		{"zero quantity", CreateBillInput{EmployeeID: f.employee.ID, Customers: singleCustomer("R", BillItemInput{ProductID: urea.ID})}, apperror.KindValidation, apperror.ReasonInvalidQuantity},
		{"unknown product", CreateBillInput{EmployeeID: f.employee.ID, Customers: singleCustomer("R", BillItemInput{ProductID: uuid.New(), Quantity: 1})}, apperror.KindNotFound, apperror.ReasonProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.bills.CreateBill(context.Background(), &input)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, tt.kind), "got %v", err)
			assert.True(t, apperror.HasReason(err, tt.reason), "got %v", err)
		})
	}

	assert.Equal(t, 10, f.stock(t, urea))
	assert.Equal(t, int64(0), f.billCount(t))
}

func TestCreateBillFieldErrors(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)

	_, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID:      f.employee.ID,
		Customers:       singleCustomer("R", BillItemInput{ProductID: urea.ID, Quantity: 1}),
		DiscountPercent: decimal.NewFromInt(150),
		Status:          enum.BillStatus(9),
	})

	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	require.Len(t, appErr.Errors, 2)
	assert.Equal(t, "discount_percent", appErr.Errors[0].Field)
	assert.Equal(t, "status", appErr.Errors[1].Field)
}

func TestCreateBillPersistenceFailureRollsBack(t *testing.T) {
	var flaky *flakyBillRepo
	f := newFixture(t, func(r repository.BillRepository) repository.BillRepository {
		flaky = &flakyBillRepo{BillRepository: r, err: errors.New("disk full")}
		return flaky
	})
	urea := f.product(t, "Urea", 10, "100", nil)
	input := &CreateBillInput{
		EmployeeID: f.employee.ID,
		Customers:  singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 4}),
	}

	_, err := f.bills.CreateBill(context.Background(), input)

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))
	assert.Equal(t, 10, f.stock(t, urea))

	flaky.err = nil
	bill, err := f.bills.CreateBill(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "AGR-000001", bill.BillNumber, "failed attempt must not consume a number")
}

func TestCreateBillRetriesTakenNumber(t *testing.T) {
	f := newFixture(t, func(r repository.BillRepository) repository.BillRepository {
		return &flakyBillRepo{BillRepository: r, duplicates: 1}
	})
	urea := f.product(t, "Urea", 10, "100", nil)

	bill, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID: f.employee.ID,
		Customers:  singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 2}),
	})

	require.NoError(t, err)
	assert.Equal(t, "AGR-000002", bill.BillNumber)
	assert.Equal(t, 8, f.stock(t, urea))
}

func TestCreateBillGivesUpAfterAttempts(t *testing.T) {
	f := newFixture(t, func(r repository.BillRepository) repository.BillRepository {
		return &flakyBillRepo{BillRepository: r, duplicates: 10}
	})
	urea := f.product(t, "Urea", 10, "100", nil)

	_, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID: f.employee.ID,
		Customers:  singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 2}),
	})

	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	assert.True(t, apperror.HasReason(err, apperror.ReasonBillNumberTaken))
	assert.Equal(t, 10, f.stock(t, urea))
}

func TestCreateBillConcurrentNeverOversells(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)

	const workers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
		short   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bill, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
				EmployeeID: f.employee.ID,
				Customers:  singleCustomer("Walk-in", BillItemInput{ProductID: urea.ID, Quantity: 1}),
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.True(t, apperror.IsKind(err, apperror.KindInsufficientStock), "got %v", err)
				short++
				return
			}
			assert.False(t, numbers[bill.BillNumber], "duplicate number %s", bill.BillNumber)
			numbers[bill.BillNumber] = true
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, 10)
	assert.Equal(t, workers-10, short)
	assert.Equal(t, 0, f.stock(t, urea))
}

func TestRenderInvoice(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)
	bill, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID: f.employee.ID,
		Customers:  singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 1}),
	})
	require.NoError(t, err)

	out, err := f.bills.RenderInvoice(context.Background(), bill.ID)
	require.NoError(t, err)

	assert.Equal(t, "invoice-AGR-000001.pdf", out.Filename)
	assert.True(t, bytes.HasPrefix(out.Content, []byte("%PDF-")))
	assert.NoError(t, out.Fallback)
	assert.Equal(t, 1, out.Pages)

	_, err = f.bills.RenderInvoice(context.Background(), uuid.New())
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestInvoiceSourceCarriesStoredTotals(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)
	bill, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID:      f.employee.ID,
		Customers:       singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 2, DealerName: "Sharma Agro"}),
		DiscountPercent: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	src := InvoiceSource(bill)

	assert.Equal(t, bill.ID.String(), src.BillID())
	assert.Equal(t, "completed", src.Status)
	require.Len(t, src.Customers, 1)
	assert.Equal(t, "Sharma Agro", src.Customers[0].Items[0].DealerName)
	assertMoney(t, bill.FinalAmount.String(), *src.FinalAmount)
}

func TestListBills(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 50, "100", nil)
	ctx := context.Background()

	for _, name := range []string{"Ramesh Patil", "Suresh", "Mahesh Patil"} {
		_, err := f.bills.CreateBill(ctx, &CreateBillInput{
			EmployeeID: f.employee.ID,
			Customers:  singleCustomer(name, BillItemInput{ProductID: urea.ID, Quantity: 1, DealerName: "Sharma Agro"}),
		})
		require.NoError(t, err)
	}

	res, err := f.bills.ListBills(ctx, &ListBillsInput{Customer: "patil$"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)

	res, err = f.bills.ListBills(ctx, &ListBillsInput{Search: "agr-000002"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Suresh", res.Items[0].Customers[0].CustomerName)

	dealers, err := f.bills.UniqueDealers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sharma Agro"}, dealers)
}

func TestListBillsRejectsBadFilters(t *testing.T) {
	f := newFixture(t, nil)
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := f.bills.ListBills(context.Background(), &ListBillsInput{Customer: "(["})
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))

	_, err = f.bills.ListBills(context.Background(), &ListBillsInput{StartDate: &start, EndDate: &end})
	assert.True(t, apperror.IsKind(err, apperror.KindBadRequest))
}

func TestDeleteBill(t *testing.T) {
	f := newFixture(t, nil)
	urea := f.product(t, "Urea", 10, "100", nil)
	ctx := context.Background()
	create := func() uuid.UUID {
		bill, err := f.bills.CreateBill(ctx, &CreateBillInput{
			EmployeeID: f.employee.ID,
			Customers:  singleCustomer("Ramesh", BillItemInput{ProductID: urea.ID, Quantity: 2}),
		})
		require.NoError(t, err)
		return bill.ID
	}

	kept := create()
	require.NoError(t, f.bills.DeleteBill(ctx, kept, false))
	assert.Equal(t, 8, f.stock(t, urea), "plain delete does not restock")
	assert.True(t, apperror.IsKind(f.bills.DeleteBill(ctx, kept, false), apperror.KindNotFound))

	restocked := create()
	assert.Equal(t, 6, f.stock(t, urea))
	require.NoError(t, f.bills.DeleteBill(ctx, restocked, true))
	assert.Equal(t, 8, f.stock(t, urea))
	assert.True(t, apperror.IsKind(f.bills.DeleteBill(ctx, uuid.New(), true), apperror.KindNotFound))
}

func TestFormatBillNumber(t *testing.T) {
	assert.Equal(t, "AGR-000042", FormatBillNumber("AGR", 6, 42))
	assert.Equal(t, "AGR-1234567", FormatBillNumber("AGR", 6, 1234567))
}

func TestCreateBillRejectsPercentsBeyondTwoDecimals(t *testing.T) {
	tests := []struct {
		name      string
		override  *decimal.Decimal
		discount  string
		wantField string
	}{
		{"commission override", decPtr("1.005"), "10", "items[0].commission_percent"},
		{"discount", nil, "10.005", "discount_percent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			seeds := f.product(t, "Seeds", 5, "1000", nil)

			_, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
				EmployeeID: f.employee.ID,
				Customers: singleCustomer("Ramesh", BillItemInput{
					ProductID:         seeds.ID,
					Quantity:          1,
					CommissionPercent: tt.override,
				}),
				DiscountPercent: decimal.RequireFromString(tt.discount),
			})

			appErr := apperror.GetAppError(err)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			require.Len(t, appErr.Errors, 1)
			assert.Equal(t, tt.wantField, appErr.Errors[0].Field)
			assert.Equal(t, 5, f.stock(t, seeds))
			assert.Zero(t, f.billCount(t))
		})
	}
}

func TestCreateBillTwoDecimalPercentsMatchStoredAmounts(t *testing.T) {
	f := newFixture(t, nil)
	seeds := f.product(t, "Seeds", 5, "1000", nil)

	bill, err := f.bills.CreateBill(context.Background(), &CreateBillInput{
		EmployeeID:      f.employee.ID,
		Customers:       singleCustomer("Ramesh", BillItemInput{ProductID: seeds.ID, Quantity: 1, CommissionPercent: decPtr("1.01")}),
		DiscountPercent: decimal.RequireFromString("10.01"),
	})
	require.NoError(t, err)

	item := bill.Customers[0].Items[0]
	assertMoney(t, "10.10", item.CommissionAmount)
	assertMoney(t, "1010.00", bill.TotalAmount)
	assertMoney(t, "101.10", bill.DiscountAmount)
	assert.True(t, bill.DiscountAmount.Equal(money.Round2(money.Percent(bill.TotalAmount, bill.DiscountPercent))))
}
