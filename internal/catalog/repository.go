package catalog

import (
	"context"

	"github.com/shopkit/storefront/internal/domain"
)

// ProductRepository is the catalog port. Stock is a shared mutable
// resource: DecrementStock is a single conditional update so a concurrent
// order can never observe stale stock between check and decrement.
type ProductRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	// DecrementStock atomically subtracts qty when stock >= qty, returning
	// *domain.InsufficientStockError (with the available amount) otherwise.
	DecrementStock(ctx context.Context, id int64, qty int) error

	// IncrementStock restores qty to the product's stock.
	IncrementStock(ctx context.Context, id int64, qty int) error
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

// ProductReader is the read-side lookup used by the HTTP layer. Implemented
// by CachedReader and PassthroughReader.
type ProductReader interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	Invalidate(ctx context.Context, id int64)
}
