package order

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopkit/storefront/internal/catalog"
	"github.com/shopkit/storefront/internal/domain"
	"github.com/shopkit/storefront/internal/events"
)

// NewOrderLine is one requested line of a checkout.
type NewOrderLine struct {
	ProductID int64
	Quantity  int
}

// Requester identifies the caller of an order operation.
type Requester struct {
	UserID string
	Admin  bool
}

func (r Requester) canAccess(order *domain.Order) bool {
	return r.Admin || order.UserID == r.UserID
}

type Service struct {
	orders   OrderRepository
	products catalog.ProductRepository
	events   events.Publisher
}

func NewService(orders OrderRepository, products catalog.ProductRepository, publisher events.Publisher) *Service {
	return &Service{
		orders:   orders,
		products: products,
		events:   publisher,
	}
}

// CreateOrder converts a cart snapshot into a persisted PENDING order.
// Lines are processed in list order: lookup, then an atomic conditional
// stock decrement per line. When a later line fails, decrements already
// applied to earlier lines are left in place; the caller sees the error
// and the partial stock mutation persists.
func (s *Service) CreateOrder(ctx context.Context, userID string, lines []NewOrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	total := 0.0
	items := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		if err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			return nil, err
		}

		total += product.Price * float64(line.Quantity)
		items = append(items, domain.OrderLine{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
	}

	now := time.Now()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.OrderStatusPending,
		Total:     total,
		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventOrderCreated, order)
	return order, nil
}

// GetOrder returns the order when the requester owns it or is privileged.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID, requester Requester) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !requester.canAccess(order) {
		return nil, domain.ErrNotOrderOwner
	}
	return order, nil
}

// ListUserOrders returns the caller's orders, newest first.
func (s *Service) ListUserOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListOrdersByUserID(ctx, userID)
}

// ListAllOrders returns every order, newest first. Privileged callers only;
// the HTTP layer enforces the role.
func (s *Service) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.ListAllOrders(ctx)
}

// CancelOrder transitions a PENDING order to CANCELLED and restores stock
// for every line. Restock is unconditional once cancellation is accepted: a
// product deleted since purchase is skipped with a log line.
func (s *Service) CancelOrder(ctx context.Context, orderID uuid.UUID, requester Requester) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !requester.canAccess(order) {
		return nil, domain.ErrNotOrderOwner
	}
	if !order.Status.CanCancel() {
		return nil, domain.ErrOrderNotCancellable
	}

	if err := s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusCancelled); err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusCancelled

	for _, line := range order.Items {
		err := s.products.IncrementStock(ctx, line.ProductID, line.Quantity)
		if errors.Is(err, domain.ErrProductNotFound) {
			log.Printf("restock skipped, product %d no longer exists", line.ProductID)
			continue
		}
		if err != nil {
			log.Printf("restock failed for product %d: %v", line.ProductID, err)
		}
	}

	s.publish(ctx, events.EventOrderCancelled, order)
	return order, nil
}

// UpdateStatus overwrites the order status unconditionally after validating
// it against the enumerated set. Setting the current status again is a
// plain no-op overwrite. Privileged callers only; the HTTP layer enforces
// the role.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus string) (*domain.Order, error) {
	status, err := domain.ParseOrderStatus(newStatus)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return s.orders.GetOrderByID(ctx, orderID)
}

func (s *Service) publish(ctx context.Context, name string, order *domain.Order) {
	if err := s.events.Publish(ctx, events.NewOrderEvent(name, order)); err != nil {
		log.Printf("publish %s event for order %s failed: %v", name, order.ID, err)
	}
}
