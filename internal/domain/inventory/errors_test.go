package inventory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsufficientStockError(t *testing.T) {
	err := &InsufficientStockError{ProductID: 7, Available: 3, Requested: 5}

	assert.Equal(t, "insufficient stock for product 7: available 3, requested 5", err.Error())
	assert.True(t, IsInsufficientStock(err))
	assert.True(t, IsInsufficientStock(fmt.Errorf("applying adjustment: %w", err)))
	assert.False(t, IsInsufficientStock(errors.New("insufficient stock")))
	assert.False(t, IsInsufficientStock(nil))
}

func TestSentinelErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: restock", ErrInvalidAdjustmentType)
	assert.True(t, errors.Is(wrapped, ErrInvalidAdjustmentType))
	assert.False(t, errors.Is(wrapped, ErrZeroQuantityChange))
	assert.False(t, errors.Is(ErrRecordNotFound, ErrZeroQuantityChange))
}
