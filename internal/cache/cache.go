// Package cache keeps the rendered article listing in redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const listingKey = "headline_scraper:articles"

// Listing caches the JSON body of the article listing.
type Listing struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewListing connects to redis at addr.
func NewListing(ctx context.Context, addr string, ttl time.Duration) (*Listing, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Listing{rdb: rdb, ttl: ttl}, nil
}

// Get returns the cached listing. ok is false on a miss.
func (l *Listing) Get(ctx context.Context, key string) (body []byte, ok bool, err error) {
	b, err := l.rdb.Get(ctx, listingKey+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores a listing under key.
func (l *Listing) Set(ctx context.Context, key string, body []byte) error {
	return l.rdb.Set(ctx, listingKey+":"+key, body, l.ttl).Err()
}

// Invalidate drops every cached listing.
func (l *Listing) Invalidate(ctx context.Context) error {
	iter := l.rdb.Scan(ctx, 0, listingKey+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return l.rdb.Del(ctx, keys...).Err()
}

// Close releases the redis connection pool.
func (l *Listing) Close() error {
	return l.rdb.Close()
}
