package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{name: "validation", err: NewValidation("bad input"), code: CodeValidation, status: http.StatusBadRequest},
		{name: "not found", err: NewNotFound("product", "p1"), code: CodeNotFound, status: http.StatusNotFound},
		{name: "invalid operation", err: NewInvalidOperation("completed"), code: CodeInvalidOperation, status: http.StatusUnprocessableEntity},
		{name: "insufficient stock", err: NewInsufficientStock("p1", "5.000", "3.000"), code: CodeInsufficientStock, status: http.StatusUnprocessableEntity},
		{name: "concurrent modification", err: NewConcurrentModification("warehouse", "w1"), code: CodeConcurrentModification, status: http.StatusConflict},
		{name: "internal", err: NewInternal(errors.New("boom")), code: CodeInternal, status: http.StatusInternalServerError},
		{name: "conflict", err: NewConflict("taken"), code: CodeConflict, status: http.StatusConflict},
		{name: "duplicate", err: NewDuplicate("product", "code", "CANDLE"), code: CodeDuplicate, status: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
		})
	}
}

func TestGetHTTPStatusUnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}

func TestInsufficientStockDetails(t *testing.T) {
	err := NewInsufficientStock("p1", "5.000", "3.000")
	assert.Equal(t, "p1", err.Details["product_id"])
	assert.Equal(t, "5.000", err.Details["requested"])
	assert.Equal(t, "3.000", err.Details["available"])
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewValidation("bad").WithDetail("field", "qty").WithCause(cause)

	assert.Equal(t, "qty", err.Details["field"])
	assert.ErrorIs(t, err, cause)
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	inner := NewNotFound("warehouse", "w1")
	wrapped := fmt.Errorf("load warehouse: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, appErr.Code)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsInsufficientStock(wrapped))
	assert.True(t, IsAppError(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}
