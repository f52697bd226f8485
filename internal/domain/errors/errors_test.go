package errors

import (
	"net/http"
	"testing"

	"qimat/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestBaseError_WithDetailsKeepsIdentity(t *testing.T) {
	err := ErrValidationFailed.WithDetails("price must be positive")

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, "price must be positive", err.Details())
	assert.Equal(t, "Input validation failed: price must be positive", err.Error())
}

func TestBaseError_WrapMessageUnwrapsToAppError(t *testing.T) {
	err := ErrProductNotFound.WrapMessage("bulk update")

	var appErr AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode())
	assert.Equal(t, "PRODUCT_NOT_FOUND", appErr.ErrorCode())
}

func TestDatabaseExecuteError(t *testing.T) {
	err := NewDatabaseExecuteError(errors.New("connection reset"), "failed to upsert price")

	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode())
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", err.ErrorCode())
	assert.Equal(t, "failed to upsert price", err.Details())
	assert.Contains(t, err.Error(), "connection reset")
}
