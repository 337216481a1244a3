package repository

import (
	"context"
	"errors"
)

// ErrDuplicate is returned when a write violates a unique constraint
var ErrDuplicate = errors.New("duplicate key")

// TxManager runs a function inside a single store transaction.
// Repository calls made with the ctx passed to fn join the transaction.
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
