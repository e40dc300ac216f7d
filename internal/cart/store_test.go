package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopkit/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	laptop = domain.Product{ID: 1, Name: "Laptop", Price: 1299.99, ImageURL: "laptop.png"}
	mouse  = domain.Product{ID: 2, Name: "Mouse", Price: 24.50}
)

type failingSnapshotStore struct{}

func (failingSnapshotStore) Load(context.Context, string) (*domain.Cart, error) {
	return nil, fmt.Errorf("storage unavailable")
}

func (failingSnapshotStore) Save(context.Context, string, *domain.Cart) error {
	return fmt.Errorf("storage unavailable")
}

func (failingSnapshotStore) Delete(context.Context, string) error {
	return fmt.Errorf("storage unavailable")
}

func TestAddItem_NewLine(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())

	sut.AddItem(ctx, laptop, 2)

	items := sut.Items()
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, "Laptop", items[0].Name)
	assert.Equal(t, 1299.99, items[0].UnitPrice)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "laptop.png", items[0].ImageURL)
	assert.Equal(t, 2, sut.TotalItems())
	assert.Equal(t, 2599.98, sut.TotalPrice())
}

func TestAddItem_MergesByProductID(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())

	sut.AddItem(ctx, laptop, 1)
	sut.AddItem(ctx, laptop, 3)

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, 4, sut.TotalItems())
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())
	sut.AddItem(ctx, laptop, 1)
	sut.AddItem(ctx, mouse, 2)

	sut.RemoveItem(ctx, laptop.ID)

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, mouse.ID, items[0].ProductID)
	assert.Equal(t, 2, sut.TotalItems())
	assert.Equal(t, 49.0, sut.TotalPrice())
}

func TestRemoveItem_MissingProductIsNoop(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())
	sut.AddItem(ctx, laptop, 1)

	sut.RemoveItem(ctx, 999)

	assert.Len(t, sut.Items(), 1)
	assert.Equal(t, 1, sut.TotalItems())
}

func TestUpdateQuantity_Overwrites(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())
	sut.AddItem(ctx, mouse, 2)

	sut.UpdateQuantity(ctx, mouse.ID, 5)

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, sut.TotalItems())
	assert.Equal(t, 122.5, sut.TotalPrice())
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())
	sut.AddItem(ctx, laptop, 1)
	sut.AddItem(ctx, mouse, 2)

	sut.UpdateQuantity(ctx, laptop.ID, 0)

	items := sut.Items()
	require.Len(t, items, 1)
	assert.Equal(t, mouse.ID, items[0].ProductID)
}

func TestUpdateQuantity_NegativeRemovesLine(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())
	sut.AddItem(ctx, mouse, 2)

	sut.UpdateQuantity(ctx, mouse.ID, -1)

	assert.Empty(t, sut.Items())
	assert.Equal(t, 0, sut.TotalItems())
	assert.Equal(t, 0.0, sut.TotalPrice())
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())
	sut.AddItem(ctx, laptop, 3)
	sut.AddItem(ctx, mouse, 1)

	sut.Clear(ctx)

	snap := sut.Snapshot()
	assert.Empty(t, snap.Items)
	assert.NotNil(t, snap.Items)
	assert.Equal(t, 0, snap.TotalItems)
	assert.Equal(t, 0.0, snap.TotalPrice)
}

func TestTotals_ConsistentAcrossMutationSequence(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", NewMemorySnapshotStore())

	sut.AddItem(ctx, laptop, 2)
	sut.AddItem(ctx, mouse, 4)
	sut.UpdateQuantity(ctx, laptop.ID, 1)
	sut.RemoveItem(ctx, mouse.ID)
	sut.AddItem(ctx, mouse, 1)

	wantItems := 0
	wantPrice := 0.0
	for _, line := range sut.Items() {
		wantItems += line.Quantity
		wantPrice += line.UnitPrice * float64(line.Quantity)
	}
	assert.Equal(t, wantItems, sut.TotalItems())
	assert.Equal(t, wantPrice, sut.TotalPrice())
}

func TestStore_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	snapshots := NewMemorySnapshotStore()

	sut := NewStore(ctx, "user-1", snapshots)
	sut.AddItem(ctx, laptop, 2)
	sut.AddItem(ctx, mouse, 1)

	// A fresh store for the same user sees the persisted state.
	restored := NewStore(ctx, "user-1", snapshots)
	assert.Equal(t, sut.Items(), restored.Items())
	assert.Equal(t, 3, restored.TotalItems())
	assert.InDelta(t, 2624.48, restored.TotalPrice(), 1e-9)
}

func TestStore_SnapshotsAreScopedPerUser(t *testing.T) {
	ctx := context.Background()
	snapshots := NewMemorySnapshotStore()

	first := NewStore(ctx, "user-1", snapshots)
	first.AddItem(ctx, laptop, 1)

	second := NewStore(ctx, "user-2", snapshots)
	assert.Empty(t, second.Items())
}

func TestStore_PersistenceFailureDoesNotBreakMutations(t *testing.T) {
	ctx := context.Background()
	sut := NewStore(ctx, "user-1", failingSnapshotStore{})

	sut.AddItem(ctx, laptop, 2)
	sut.UpdateQuantity(ctx, laptop.ID, 5)

	assert.Equal(t, 5, sut.TotalItems())
	assert.InDelta(t, 6499.95, sut.TotalPrice(), 1e-9)
}
