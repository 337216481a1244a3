package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
)

type idempotencyRepository struct {
	s *Store
}

func idempotencyKey(key, endpoint string) string {
	return endpoint + "|" + key
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key, endpoint string) (*entity.IdempotencyKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ikey, ok := r.s.idempotency[idempotencyKey(key, endpoint)]
	if !ok {
		return nil, nil
	}
	return &ikey, nil
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := idempotencyKey(ikey.Key, ikey.Endpoint)
	if _, ok := r.s.idempotency[k]; ok {
		return domainRepo.ErrDuplicate
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = r.s.now()
	}
	r.s.idempotency[k] = *ikey
	return nil
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	var n int64
	for k, ikey := range r.s.idempotency {
		if now.After(ikey.ExpiresAt) {
			delete(r.s.idempotency, k)
			n++
		}
	}
	return n, nil
}
