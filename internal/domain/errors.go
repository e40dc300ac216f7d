package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder          = errors.New("order must contain at least one item")
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrNotOrderOwner       = errors.New("not authorized for this order")
	ErrOrderNotCancellable = errors.New("only pending orders can be cancelled")
	ErrInvalidStatus       = errors.New("invalid order status")
)

// InsufficientStockError reports a quantity exceeding available stock.
// It carries the available amount so callers can render it.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
