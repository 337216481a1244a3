package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type productRepository struct {
	s *Store
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	defer r.s.lockWrite(ctx)()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := r.s.now()
	product.CreatedAt, product.UpdatedAt = now, now
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[uuid.UUID]bool, len(ids))
	products := []entity.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && !seen[id] {
			seen[id] = true
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	defer r.s.lockWrite(ctx)()
	product.UpdatedAt = r.s.now()
	r.s.products[product.ID] = *product
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	defer r.s.lockWrite(ctx)()
	if _, ok := r.s.products[id]; !ok {
		return false, nil
	}
	delete(r.s.products, id)
	return true, nil
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	r.s.mu.Lock()
	var matched []entity.Product
	search := strings.ToLower(params.Search)
	for _, p := range r.s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if params.LowStock > 0 && p.Quantity > params.LowStock {
			continue
		}
		matched = append(matched, p)
	}
	r.s.mu.Unlock()

	desc := !strings.EqualFold(params.SortOrder, "asc")
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch params.SortBy {
		case "name":
			less = a.Name < b.Name
		case "quantity":
			less = a.Quantity < b.Quantity
		case "rate":
			less = a.Rate.LessThan(b.Rate)
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if desc {
			return !less
		}
		return less
	})

	params.Pagination.Validate()
	return paginate(matched, params.Pagination.Offset(), params.Pagination.PerPage), int64(len(matched)), nil
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.products)), nil
}

func (r *productRepository) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.s.products {
		total = total.Add(p.StockValue())
	}
	return total, nil
}

func (r *productRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	defer r.s.lockWrite(ctx)()

	var failedIDs []uuid.UUID
	for id, amount := range decrements {
		p, ok := r.s.products[id]
		if !ok || p.Quantity < amount {
			failedIDs = append(failedIDs, id)
		}
	}
	if len(failedIDs) > 0 {
		sort.Slice(failedIDs, func(i, j int) bool { return failedIDs[i].String() < failedIDs[j].String() })
		return failedIDs, nil
	}

	for id, amount := range decrements {
		p := r.s.products[id]
		p.Quantity -= amount
		r.s.products[id] = p
	}
	return nil, nil
}

func (r *productRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	defer r.s.lockWrite(ctx)()
	for id, amount := range increments {
		if p, ok := r.s.products[id]; ok {
			p.Quantity += amount
			r.s.products[id] = p
		}
	}
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
