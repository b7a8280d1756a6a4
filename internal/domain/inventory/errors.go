// internal/domain/inventory/errors.go
package inventory

import (
	"errors"
	"fmt"
)

// Errors returned by the adjustment engine and inventory queries. The HTTP
// layer maps these to response codes; nothing here is logged and swallowed.
var (
	// ErrRecordNotFound means the inventory record (or its owning product)
	// does not exist or does not belong to the calling user.
	ErrRecordNotFound = errors.New("inventory record not found")

	// ErrInvalidAdjustmentType means the adjustment type is not one of the
	// enumerated kinds.
	ErrInvalidAdjustmentType = errors.New("invalid adjustment type")

	// ErrZeroQuantityChange means the requested change is zero.
	ErrZeroQuantityChange = errors.New("quantity change must not be zero")
)

// InsufficientStockError is returned when an adjustment would drive the
// quantity negative. No write happens when it is returned.
type InsufficientStockError struct {
	ProductID int
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
