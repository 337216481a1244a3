package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	products := s.Products()

	p := &entity.Product{Name: "Urea", Quantity: 10, Rate: decimal.NewFromInt(100)}
	require.NoError(t, products.Create(ctx, p))

	boom := errors.New("boom")
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		failed, err := products.AtomicDecrementBatch(ctx, map[uuid.UUID]int{p.ID: 4})
		require.NoError(t, err)
		require.Empty(t, failed)
		_, err = s.Sequences().Next(ctx, "AGR")
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	n, err := s.Sequences().Next(ctx, "AGR")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRollbackKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	products := s.Products()

	created := &entity.Product{Name: "DAP", Quantity: 5, Rate: decimal.NewFromInt(1350)}
	done := make(chan error, 1)

	boom := errors.New("boom")
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		go func() { done <- products.Create(context.Background(), created) }()
		time.Sleep(20 * time.Millisecond)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, <-done)

	got, err := products.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "DAP", got.Name)
}

func TestAtomicDecrementBatchAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	products := s.Products()

	a := &entity.Product{Name: "A", Quantity: 5}
	b := &entity.Product{Name: "B", Quantity: 1}
	require.NoError(t, products.Create(ctx, a))
	require.NoError(t, products.Create(ctx, b))

	failed, err := products.AtomicDecrementBatch(ctx, map[uuid.UUID]int{a.ID: 2, b.ID: 2})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, failed)

	got, _ := products.GetByID(ctx, a.ID)
	assert.Equal(t, 5, got.Quantity)
}

func TestBillCreateRejectsDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	bills := NewStore().Bills()

	require.NoError(t, bills.Create(ctx, &entity.Bill{BillNumber: "AGR-000001"}))
	err := bills.Create(ctx, &entity.Bill{BillNumber: "AGR-000001"})
	assert.ErrorIs(t, err, domainRepo.ErrDuplicate)
}

func TestBillListFilters(t *testing.T) {
	ctx := context.Background()
	bills := NewStore().Bills()

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	mk := func(number, customer, dealer string, at time.Time) {
		require.NoError(t, bills.Create(ctx, &entity.Bill{
			BillNumber: number,
			CreatedAt:  at,
			Customers: []entity.BillCustomer{{
				CustomerName: customer,
				Items:        []entity.BillItem{{ProductName: "Urea", DealerName: dealer}},
			}},
		}))
	}
	mk("AGR-000001", "Ramesh Patil", "Sharma Agro", day.Add(9*time.Hour))
	mk("AGR-000002", "Suresh", "N/A", day.Add(23*time.Hour+59*time.Minute))
	mk("AGR-000003", "Mahesh", "Verma Traders", day.AddDate(0, 0, 1).Add(time.Hour))

	page := &pagination.PaginationParams{Page: 1, PerPage: 10}

	got, total, err := bills.List(ctx, &domainRepo.BillFilterParams{Pagination: page, Customer: "^r.*patil$"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "AGR-000001", got[0].BillNumber)

	_, total, err = bills.List(ctx, &domainRepo.BillFilterParams{Pagination: page, StartDate: &day, EndDate: &day})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	got, _, err = bills.List(ctx, &domainRepo.BillFilterParams{Pagination: page})
	require.NoError(t, err)
	assert.Equal(t, "AGR-000003", got[0].BillNumber)

	dealers, err := bills.DistinctDealers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sharma Agro", "Verma Traders"}, dealers)
}

func TestBillReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	bills := NewStore().Bills()

	bill := &entity.Bill{BillNumber: "AGR-000001", Customers: []entity.BillCustomer{{CustomerName: "A"}}}
	require.NoError(t, bills.Create(ctx, bill))

	got, err := bills.GetByID(ctx, bill.ID)
	require.NoError(t, err)
	got.Customers[0].CustomerName = "changed"

	again, _ := bills.GetByID(ctx, bill.ID)
	assert.Equal(t, "A", again.Customers[0].CustomerName)
}

func TestIdempotencyDeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Idempotency()

	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "k1", Endpoint: "POST /api/v1/bills", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, &entity.IdempotencyKey{Key: "k2", Endpoint: "POST /api/v1/bills", ExpiresAt: time.Now().Add(time.Hour)}))

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByKey(ctx, "k2", "POST /api/v1/bills")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
