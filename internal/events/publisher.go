package events

import (
	"context"
	"time"

	"github.com/shopkit/storefront/internal/domain"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderCancelled = "order.cancelled"
)

type OrderEvent struct {
	Event      string             `json:"event"`
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	Status     string             `json:"status"`
	Total      float64            `json:"total"`
	Items      []domain.OrderLine `json:"items"`
	OccurredAt time.Time          `json:"occurred_at"`
}

// Publisher emits order lifecycle events. Publishing is best-effort; the
// order service logs failures and does not fail the operation.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

// NewOrderEvent builds the payload for an order in its current state.
func NewOrderEvent(name string, order *domain.Order) OrderEvent {
	return OrderEvent{
		Event:      name,
		OrderID:    order.ID.String(),
		UserID:     order.UserID,
		Status:     order.Status.String(),
		Total:      order.Total,
		Items:      order.Items,
		OccurredAt: time.Now(),
	}
}
