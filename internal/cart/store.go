package cart

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/shopkit/storefront/internal/domain"
)

// Store holds the authoritative client-side view of what will be ordered.
// It is scoped to one user session and mutated one UI event at a time, so
// it carries no internal locking. Every mutation recomputes the derived
// totals and writes the full snapshot through the injected SnapshotStore;
// persistence failures are logged and do not affect the in-memory state.
//
// The store performs no input validation. Callers reject malformed
// quantities before invoking it; the stock ceiling is enforced at checkout.
type Store struct {
	userID    string
	snapshots SnapshotStore
	cart      domain.Cart
}

// NewStore loads the persisted snapshot for userID, starting from an empty
// cart when none exists.
func NewStore(ctx context.Context, userID string, snapshots SnapshotStore) *Store {
	s := &Store{
		userID:    userID,
		snapshots: snapshots,
		cart:      domain.Cart{Items: []domain.CartLine{}},
	}

	snap, err := snapshots.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			log.Printf("cart snapshot load error: %v", err)
		}
		return s
	}
	if snap.Items == nil {
		snap.Items = []domain.CartLine{}
	}
	s.cart = *snap
	return s
}

// AddItem merges quantity into the existing line for the product, or
// appends a new line with a locally generated id.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int) {
	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID == product.ID {
			s.cart.Items[i].Quantity += quantity
			s.recompute(ctx)
			return
		}
	}

	s.cart.Items = append(s.cart.Items, domain.CartLine{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
		ImageURL:  product.ImageURL,
	})
	s.recompute(ctx)
}

// RemoveItem deletes the line for the product; no-op when absent.
func (s *Store) RemoveItem(ctx context.Context, productID int64) {
	for i, line := range s.cart.Items {
		if line.ProductID == productID {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			s.recompute(ctx)
			return
		}
	}
}

// UpdateQuantity overwrites the line's quantity. A quantity of zero or
// less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}

	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID == productID {
			s.cart.Items[i].Quantity = quantity
			s.recompute(ctx)
			return
		}
	}
}

// Clear resets to an empty line list and zero totals.
func (s *Store) Clear(ctx context.Context) {
	s.cart = domain.Cart{Items: []domain.CartLine{}}
	s.persist(ctx)
}

// Items returns a copy of the current line list.
func (s *Store) Items() []domain.CartLine {
	items := make([]domain.CartLine, len(s.cart.Items))
	copy(items, s.cart.Items)
	return items
}

func (s *Store) TotalItems() int {
	return s.cart.TotalItems
}

func (s *Store) TotalPrice() float64 {
	return s.cart.TotalPrice
}

// Snapshot returns a copy of the full persisted shape.
func (s *Store) Snapshot() domain.Cart {
	snap := s.cart
	snap.Items = s.Items()
	return snap
}

func (s *Store) recompute(ctx context.Context) {
	totalItems := 0
	totalPrice := 0.0
	for _, line := range s.cart.Items {
		totalItems += line.Quantity
		totalPrice += line.UnitPrice * float64(line.Quantity)
	}
	s.cart.TotalItems = totalItems
	s.cart.TotalPrice = totalPrice
	s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) {
	if err := s.snapshots.Save(ctx, s.userID, &s.cart); err != nil {
		log.Printf("cart snapshot save error: %v", err)
	}
}
