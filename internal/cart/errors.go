package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrMissingVariant  = errors.New("variant id is required")
)

// InsufficientStockError rejects an Add that would put more units of an
// inventory-managed variant in the cart than are in stock.
type InsufficientStockError struct {
	VariantID string
	ItemName  string
	Available int
	InCart    int
	Requested int
}

// Remaining is how many more units could still be added.
func (e *InsufficientStockError) Remaining() int {
	if left := e.Available - e.InCart; left > 0 {
		return left
	}
	return 0
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d remaining", e.ItemName, e.Remaining())
}
