package cart

import (
	"context"
	"sync"

	"github.com/shopkit/storefront/internal/domain"
)

// MemorySnapshotStore is an in-process SnapshotStore for tests and local runs.
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{carts: make(map[string]domain.Cart)}
}

func (m *MemorySnapshotStore) Load(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, ok := m.carts[userID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	snap := cart
	snap.Items = make([]domain.CartLine, len(cart.Items))
	copy(snap.Items, cart.Items)
	return &snap, nil
}

func (m *MemorySnapshotStore) Save(_ context.Context, userID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := *cart
	snap.Items = make([]domain.CartLine, len(cart.Items))
	copy(snap.Items, cart.Items)
	m.carts[userID] = snap
	return nil
}

func (m *MemorySnapshotStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}
