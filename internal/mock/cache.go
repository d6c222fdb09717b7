package mock

import (
	"context"

	"github.com/nitesh/headline_scraper/internal/service"
)

var _ service.ListingCache = (*ListingCache)(nil)

// ListingCache is a mock implementation of service.ListingCache.
type ListingCache struct {
	GetFn        func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn        func(ctx context.Context, key string, body []byte) error
	InvalidateFn func(ctx context.Context) error
}

func (c *ListingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.GetFn(ctx, key)
}

func (c *ListingCache) Set(ctx context.Context, key string, body []byte) error {
	return c.SetFn(ctx, key, body)
}

func (c *ListingCache) Invalidate(ctx context.Context) error {
	return c.InvalidateFn(ctx)
}
