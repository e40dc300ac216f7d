package cart

import (
	"context"
	"errors"

	"github.com/shopkit/storefront/internal/domain"
)

var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// SnapshotStore persists the full cart snapshot under a per-user key so
// state survives process restarts.
type SnapshotStore interface {
	Load(ctx context.Context, userID string) (*domain.Cart, error)
	Save(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}
