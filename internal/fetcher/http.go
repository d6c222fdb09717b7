// Package fetcher retrieves listing page markup.
package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HTTPConfig tunes the HTTP fetcher.
type HTTPConfig struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	BackoffMin time.Duration
	BackoffMax time.Duration
	// RPS is the per-host request rate; zero disables limiting.
	RPS float64
}

// HTTP fetches static markup over plain HTTP with retries on transient
// failures.
type HTTP struct {
	client *http.Client
	cfg    HTTPConfig
	logger *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTP returns an HTTP fetcher.
func NewHTTP(cfg HTTPConfig, logger *slog.Logger) *HTTP {
	if cfg.BackoffMin <= 0 {
		cfg.BackoffMin = 250 * time.Millisecond
	}
	if cfg.BackoffMax < cfg.BackoffMin {
		cfg.BackoffMax = 4 * cfg.BackoffMin
	}
	return &HTTP{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cfg:      cfg,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch returns the body of the page at rawURL.
func (f *HTTP) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if err := f.wait(ctx, u.Host); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(f.backoff(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		body, status, err := f.fetchOnce(ctx, rawURL)
		if err != nil {
			lastErr = err
			f.logger.Warn("fetch attempt failed", "url", rawURL, "attempt", attempt+1, "error", err)
			continue
		}
		if status >= 500 || status == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP %d for %s", status, rawURL)
			f.logger.Warn("fetch attempt failed", "url", rawURL, "attempt", attempt+1, "status", status)
			continue
		}
		if status != http.StatusOK {
			return "", fmt.Errorf("HTTP %d for %s", status, rawURL)
		}
		f.logger.Debug("fetched page", "url", rawURL, "bytes", len(body))
		return body, nil
	}

	return "", fmt.Errorf("fetch failed after %d retries: %w", f.cfg.MaxRetries, lastErr)
}

func (f *HTTP) fetchOnce(ctx context.Context, rawURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", 0, err
	}
	if f.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", f.cfg.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	reader := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", resp.StatusCode, err
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(body), resp.StatusCode, nil
}

// backoff doubles from BackoffMin up to BackoffMax with ±20% jitter.
func (f *HTTP) backoff(attempt int) time.Duration {
	d := f.cfg.BackoffMin << uint(attempt-1)
	if d > f.cfg.BackoffMax || d <= 0 {
		d = f.cfg.BackoffMax
	}
	jitter := (rand.Float64() - 0.5) * 0.4 * float64(d)
	d += time.Duration(jitter)
	if d < f.cfg.BackoffMin {
		d = f.cfg.BackoffMin
	}
	return d
}

func (f *HTTP) wait(ctx context.Context, host string) error {
	if f.cfg.RPS <= 0 {
		return nil
	}
	f.mu.Lock()
	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.cfg.RPS), 1)
		f.limiters[host] = l
	}
	f.mu.Unlock()
	return l.Wait(ctx)
}

// Close releases idle connections.
func (f *HTTP) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
