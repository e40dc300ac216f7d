package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopkit/storefront/internal/domain"
)

// MemoryRepository is an in-memory OrderRepository for tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *MemoryRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := cloneOrder(order)
	m.orders[order.ID] = clone
	return nil
}

func (m *MemoryRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (m *MemoryRepository) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (m *MemoryRepository) ListAllOrders(_ context.Context) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(*domain.Order) bool { return true }), nil
}

func (m *MemoryRepository) listLocked(keep func(*domain.Order) bool) []*domain.Order {
	var orders []*domain.Order
	for _, order := range m.orders {
		if keep(order) {
			orders = append(orders, cloneOrder(order))
		}
	}
	// Newest first.
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = make([]domain.OrderLine, len(order.Items))
	copy(clone.Items, order.Items)
	return &clone
}
