package review

import (
	"context"

	"github.com/shopkit/storefront/internal/domain"
)

type ReviewRepository interface {
	AddReview(ctx context.Context, review *domain.Review) error
	ListByProduct(ctx context.Context, productID int64) ([]*domain.Review, error)
}
