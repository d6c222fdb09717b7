package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/nitesh/headline_scraper/internal/extract"
	"github.com/nitesh/headline_scraper/internal/store"
	"github.com/nitesh/headline_scraper/pkg/models"
)

// Fetcher returns the markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ArticleStore is the article collection the service writes to.
type ArticleStore interface {
	Create(ctx context.Context, in store.ArticleInput) (*models.Article, error)
	FindByID(ctx context.Context, id string, comments bool) (*models.Article, error)
	Find(ctx context.Context, f store.Filter) ([]*models.Article, error)
	AppendComment(ctx context.Context, id string, in models.CommentInput) (*models.Article, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// ListingCache holds encoded article listings between writes.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte) error
	Invalidate(ctx context.Context) error
}

// Config describes the page to scrape.
type Config struct {
	URL       string
	Home      string
	Selectors extract.Selectors
	// PersistConcurrency caps in-flight inserts per scrape; <= 0 is unlimited.
	PersistConcurrency int
}

// ScrapeResult counts the outcome of one scrape.
type ScrapeResult struct {
	Found  int
	Saved  int
	Failed int
}

type Service struct {
	cfg     Config
	fetcher Fetcher
	repo    ArticleStore
	cache   ListingCache
	logger  *slog.Logger

	// gen counts invalidations so a listing read that raced a write is not
	// left in the cache.
	gen atomic.Uint64
}

// NewService wires the scrape pipeline. cache may be nil.
func NewService(cfg Config, f Fetcher, repo ArticleStore, cache ListingCache, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, fetcher: f, repo: repo, cache: cache, logger: logger}
}

// Scrape fetches the listing, extracts records and stores each complete one.
// A record that fails to store is logged and counted; it never stops the
// batch. Fetch and parse failures are returned.
func (s *Service) Scrape(ctx context.Context) (ScrapeResult, error) {
	html, err := s.fetcher.Fetch(ctx, s.cfg.URL)
	if err != nil {
		return ScrapeResult{}, fmt.Errorf("fetch %s: %w", s.cfg.URL, err)
	}

	records, err := extract.ExtractHTML(html, s.cfg.Selectors, s.cfg.Home)
	if err != nil {
		return ScrapeResult{}, fmt.Errorf("extract: %w", err)
	}
	s.logger.Info("extracted records", "url", s.cfg.URL, "count", len(records))

	// inserts outlive a disconnected caller
	persistCtx := context.WithoutCancel(ctx)

	var saved, failed atomic.Int64
	g := new(errgroup.Group)
	if s.cfg.PersistConcurrency > 0 {
		g.SetLimit(s.cfg.PersistConcurrency)
	}
	for _, r := range records {
		item := r.Item()
		g.Go(func() error {
			a, err := s.repo.Create(persistCtx, store.ArticleInput{
				Headline: item.Headline,
				URL:      item.URL,
				User:     item.User,
				Likes:    item.Likes,
			})
			if err != nil {
				failed.Add(1)
				s.logger.Error("store article", "headline", item.Headline, "url", item.URL, "error", err)
				return nil
			}
			saved.Add(1)
			s.logger.Debug("stored article", "id", a.ID, "headline", a.Headline)
			return nil
		})
	}
	_ = g.Wait()

	res := ScrapeResult{Found: len(records), Saved: int(saved.Load()), Failed: int(failed.Load())}
	if res.Saved > 0 {
		s.invalidate(persistCtx)
	}
	s.logger.Info("scrape complete", "found", res.Found, "saved", res.Saved, "failed", res.Failed)
	return res, nil
}

// Articles returns the JSON-encoded listing, served from the cache when
// possible.
func (s *Service) Articles(ctx context.Context, f store.Filter) ([]byte, error) {
	key := f.User + "|" + strconv.Itoa(f.Limit)
	gen := s.gen.Load()
	if s.cache != nil {
		body, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("listing cache get", "error", err)
		} else if ok {
			return body, nil
		}
	}

	articles, err := s.repo.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(articles)
	if err != nil {
		return nil, fmt.Errorf("encode articles: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, body); err != nil {
			s.logger.Warn("listing cache set", "error", err)
		} else if s.gen.Load() != gen {
			s.invalidate(ctx)
		}
	}
	return body, nil
}

// Article returns one article with its comments.
func (s *Service) Article(ctx context.Context, id string) (*models.Article, error) {
	return s.repo.FindByID(ctx, id, true)
}

// AddComment attaches a comment to an article.
func (s *Service) AddComment(ctx context.Context, id string, in models.CommentInput) (*models.Article, error) {
	a, err := s.repo.AppendComment(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return a, nil
}

// DeleteAll removes every article and returns the count.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("deleted articles", "count", n)
	s.invalidate(ctx)
	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.gen.Add(1)
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("listing cache invalidate", "error", err)
	}
}
