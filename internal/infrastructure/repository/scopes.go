package repository

import (
	"context"
	"errors"
	"strings"

	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
	"gorm.io/gorm"
)

type ctxKey string

// txKey is the context key for the transaction opened by the TxManager
const txKey ctxKey = "gorm_tx"

// conn returns the transaction carried by ctx, or db.
// Every repository call goes through it so that it joins a running transaction.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// translateError maps driver errors to domain errors. Requires gorm.Config.TranslateError.
func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicate
	}
	return err
}

// ILikeScope matches term as a substring of any of columns
func ILikeScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			clauses[i] = col + " ILIKE ?"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// escapeLike escapes LIKE wildcards so that term matches literally
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
