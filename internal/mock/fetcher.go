package mock

import (
	"context"

	"github.com/nitesh/headline_scraper/internal/service"
)

var _ service.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of service.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}
