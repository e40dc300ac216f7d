package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopkit/storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CachedReader is a read-through product cache. Concurrent misses for the
// same product are collapsed through singleflight. Cache failures are
// logged and the lookup falls through to the repository.
type CachedReader struct {
	repo    ProductRepository
	client  *redis.Client
	baseTTL time.Duration
	sfg     singleflight.Group
}

func NewCachedReader(repo ProductRepository, client *redis.Client) *CachedReader {
	return &CachedReader{
		repo:    repo,
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (c *CachedReader) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	key := productKey(id)

	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		data, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var product domain.Product
			if err := json.Unmarshal(data, &product); err == nil {
				return &product, nil
			}
			log.Printf("unmarshal cached product %d failed, falling through", id)
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("product cache get error: %v", err)
		}

		product, err := c.repo.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(product); err == nil {
			jitter := time.Duration(rand.Intn(5)) * time.Minute
			if err := c.client.Set(ctx, key, data, c.baseTTL+jitter).Err(); err != nil {
				log.Printf("product cache set error: %v", err)
			}
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// Invalidate drops the cached entry after a catalog write.
func (c *CachedReader) Invalidate(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		log.Printf("product cache invalidate error: %v", err)
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// PassthroughReader serves lookups straight from the repository, for
// deployments without redis and for tests.
type PassthroughReader struct {
	Repo ProductRepository
}

func (p PassthroughReader) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return p.Repo.GetProduct(ctx, id)
}

func (p PassthroughReader) Invalidate(context.Context, int64) {}
