package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopkit/storefront/internal/domain"
)

// MemoryRepository is an in-memory ReviewRepository for tests and local runs.
type MemoryRepository struct {
	mu      sync.RWMutex
	reviews []*domain.Review
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) AddReview(_ context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	review.CreatedAt = time.Now()
	clone := *review
	m.reviews = append(m.reviews, &clone)
	return nil
}

func (m *MemoryRepository) ListByProduct(_ context.Context, productID int64) ([]*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var reviews []*domain.Review
	for _, review := range m.reviews {
		if review.ProductID == productID {
			clone := *review
			reviews = append(reviews, &clone)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}
