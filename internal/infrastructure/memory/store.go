// Package memory is an in-process implementation of the domain repositories.
// It backs the server when DB_DRIVER=memory and is used by service and handler tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
)

// Store holds all records. Transactions are serialised and roll back by
// restoring a snapshot, so writes outside a transaction wait for it to finish.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	products    map[uuid.UUID]entity.Product
	employees   map[uuid.UUID]entity.Employee
	dealers     map[uuid.UUID]entity.Dealer
	bills       map[uuid.UUID]entity.Bill
	sequences   map[string]int64
	idempotency map[string]entity.IdempotencyKey

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		products:    map[uuid.UUID]entity.Product{},
		employees:   map[uuid.UUID]entity.Employee{},
		dealers:     map[uuid.UUID]entity.Dealer{},
		bills:       map[uuid.UUID]entity.Bill{},
		sequences:   map[string]int64{},
		idempotency: map[string]entity.IdempotencyKey{},
		now:         time.Now,
	}
}

func (s *Store) Products() domainRepo.ProductRepository { return &productRepository{s} }
func (s *Store) Employees() domainRepo.EmployeeRepository { return &employeeRepository{s} }
func (s *Store) Dealers() domainRepo.DealerRepository { return &dealerRepository{s} }
func (s *Store) Bills() domainRepo.BillRepository { return &billRepository{s} }
func (s *Store) Sequences() domainRepo.SequenceRepository { return &sequenceRepository{s} }
func (s *Store) Idempotency() domainRepo.IdempotencyRepository { return &idempotencyRepository{s} }
func (s *Store) TxManager() domainRepo.TxManager { return &txManager{s} }

type snapshot struct {
	products  map[uuid.UUID]entity.Product
	employees map[uuid.UUID]entity.Employee
	dealers   map[uuid.UUID]entity.Dealer
	bills     map[uuid.UUID]entity.Bill
	sequences map[string]int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		products:  copyMap(s.products),
		employees: copyMap(s.employees),
		dealers:   copyMap(s.dealers),
		bills:     copyMap(s.bills),
		sequences: copyMap(s.sequences),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.employees = snap.employees
	s.dealers = snap.dealers
	s.bills = snap.bills
	s.sequences = snap.sequences
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type txKey struct{}

// lockWrite locks the store for a write and returns the unlock func. Outside
// a transaction it also takes txMu so a rollback cannot discard the write.
func (s *Store) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

type txManager struct {
	s *Store
}

func (m *txManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	snap := m.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

type sequenceRepository struct {
	s *Store
}

func (r *sequenceRepository) Next(ctx context.Context, key string) (int64, error) {
	defer r.s.lockWrite(ctx)()
	r.s.sequences[key]++
	return r.s.sequences[key], nil
}
