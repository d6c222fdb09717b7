package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nitesh/headline_scraper/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live redis when REDIS_ADDR is set.
func TestListing(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	l, err := cache.NewListing(ctx, addr, time.Minute)
	require.NoError(t, err)
	defer l.Close()

	require.NoError(t, l.Invalidate(ctx))

	_, ok, err := l.Get(ctx, "all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Set(ctx, "all", []byte(`[]`)))
	body, ok, err := l.Get(ctx, "all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(body))

	require.NoError(t, l.Invalidate(ctx))
	_, ok, err = l.Get(ctx, "all")
	require.NoError(t, err)
	assert.False(t, ok)
}
