package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInsufficientStockError(t *testing.T) {
	err := NewInsufficientStockError("Urea 50kg", 11, 10)

	assert.Equal(t, http.StatusUnprocessableEntity, err.Code)
	assert.Equal(t, KindInsufficientStock, err.Kind)
	assert.Contains(t, err.Message, "Urea 50kg")
	assert.Equal(t, 10, err.Details["available"])
	assert.True(t, HasReason(err, ReasonInsufficientStock))
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewPersistenceError("save bill", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to save bill: connection reset", err.Error())
	assert.True(t, IsKind(err, KindPersistence))
}

func TestGetAppError(t *testing.T) {
	wrapped := fmt.Errorf("create bill: %w", NewNotFoundError("Employee"))

	appErr := GetAppError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Employee not found", appErr.Message)

	plain := GetAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
	assert.Equal(t, KindInternal, plain.Kind)
}

func TestWithReasonDoesNotMutateShared(t *testing.T) {
	tagged := ErrNotFound.WithReason(ReasonProductNotFound)

	assert.Equal(t, ReasonProductNotFound, tagged.Reason)
	assert.Empty(t, ErrNotFound.Reason)
}

func TestNewRuleError(t *testing.T) {
	err := NewRuleError(ReasonNoCustomers, "customers", "At least one customer is required")

	assert.Equal(t, KindValidation, err.Kind)
	require.Len(t, err.Errors, 1)
	assert.Equal(t, "customers", err.Errors[0].Field)
}

func TestNewAppErrorKind(t *testing.T) {
	tests := []struct {
		code int
		want Kind
	}{
		{http.StatusNotFound, KindNotFound},
		{http.StatusConflict, KindConflict},
		{http.StatusBadRequest, KindBadRequest},
		{http.StatusInternalServerError, KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NewAppError(tt.code, "x").Kind)
	}
}
