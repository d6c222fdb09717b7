package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/nitesh/headline_scraper/internal/cache"
	"github.com/nitesh/headline_scraper/internal/config"
	"github.com/nitesh/headline_scraper/internal/fetcher"
	"github.com/nitesh/headline_scraper/internal/logging"
	"github.com/nitesh/headline_scraper/internal/service"
	"github.com/nitesh/headline_scraper/internal/store"
)

// app is the wired pipeline shared by serve and scrape.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	svc     *service.Service
	closers []io.Closer
}

// newApp wires the pipeline. On error everything opened so far is closed.
func newApp(ctx context.Context, deps *Dependencies) (*app, error) {
	cfg, err := config.LoadFrom(deps.Getenv)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.Log, deps.Stderr)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}
	ready := false
	defer func() {
		if !ready {
			a.Close()
		}
	}()

	db, err := store.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db)

	var listing service.ListingCache
	if cfg.RedisAddr != "" {
		c, err := cache.NewListing(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			logger.Warn("redis unavailable, listing cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			a.closers = append(a.closers, c)
			listing = c
		}
	}

	f, err := newFetcher(cfg, logger)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: FETCHER=rod needs Chrome or Chromium installed")
		return nil, err
	}
	a.closers = append(a.closers, f)

	a.svc = service.NewService(service.Config{
		URL:                cfg.ScrapeURL,
		Home:               cfg.ScrapeHome,
		Selectors:          cfg.Selectors,
		PersistConcurrency: cfg.PersistConcurrency,
	}, f, db, listing, logger)
	ready = true
	return a, nil
}

type fetchCloser interface {
	service.Fetcher
	io.Closer
}

func newFetcher(cfg *config.Config, logger *slog.Logger) (fetchCloser, error) {
	if cfg.Fetcher == config.FetcherRod {
		r, err := fetcher.NewRod(logger)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return fetcher.NewHTTP(fetcher.HTTPConfig{
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.FetchTimeout,
		MaxRetries: cfg.FetchRetries,
		RPS:        cfg.FetchRPS,
	}, logger), nil
}

// Close releases everything newApp opened, newest first.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
