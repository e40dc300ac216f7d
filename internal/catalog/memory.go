package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopkit/storefront/internal/domain"
)

// MemoryRepository implements ProductRepository and CategoryRepository with
// in-memory storage, for tests and local runs.
type MemoryRepository struct {
	mu             sync.RWMutex
	products       map[int64]*domain.Product
	categories     map[int64]*domain.Category
	nextProductID  int64
	nextCategoryID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		products:   make(map[int64]*domain.Product),
		categories: make(map[int64]*domain.Category),
	}
}

func (m *MemoryRepository) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	product, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (m *MemoryRepository) ListProducts(_ context.Context) ([]*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(*domain.Product) bool { return true }), nil
}

func (m *MemoryRepository) ListByCategory(_ context.Context, categoryID int64) ([]*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(func(p *domain.Product) bool { return p.CategoryID == categoryID }), nil
}

func (m *MemoryRepository) listLocked(keep func(*domain.Product) bool) []*domain.Product {
	var products []*domain.Product
	for _, product := range m.products {
		if keep(product) {
			clone := *product
			products = append(products, &clone)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (m *MemoryRepository) CreateProduct(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextProductID++
	product.ID = m.nextProductID
	product.CreatedAt = time.Now()
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *MemoryRepository) UpdateProduct(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	clone := *product
	m.products[product.ID] = &clone
	return nil
}

func (m *MemoryRepository) DeleteProduct(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MemoryRepository) DecrementStock(_ context.Context, id int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	if product.Stock < qty {
		return &domain.InsufficientStockError{ProductID: id, Requested: qty, Available: product.Stock}
	}
	product.Stock -= qty
	return nil
}

func (m *MemoryRepository) IncrementStock(_ context.Context, id int64, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.products[id]
	if !ok {
		return domain.ErrProductNotFound
	}
	product.Stock += qty
	return nil
}

func (m *MemoryRepository) ListCategories(_ context.Context) ([]*domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var categories []*domain.Category
	for _, category := range m.categories {
		clone := *category
		categories = append(categories, &clone)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

func (m *MemoryRepository) CreateCategory(_ context.Context, category *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextCategoryID++
	category.ID = m.nextCategoryID
	clone := *category
	m.categories[category.ID] = &clone
	return nil
}

func (m *MemoryRepository) DeleteCategory(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}
