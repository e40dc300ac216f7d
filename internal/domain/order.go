package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ParseOrderStatus validates a status string against the enumerated set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// CanCancel reports whether an order in this status may still be cancelled
// by its owner. Only orders that have not entered fulfilment qualify.
func (s OrderStatus) CanCancel() bool {
	return s == OrderStatusPending
}

// OrderLine is an immutable record of a purchased product. UnitPrice is
// captured at order time and is decoupled from later catalog price changes.
type OrderLine struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type Order struct {
	ID        uuid.UUID
	UserID    string
	Status    OrderStatus
	Total     float64
	Items     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}
