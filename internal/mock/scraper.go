package mock

import (
	"context"

	"github.com/nitesh/headline_scraper/internal/api"
	"github.com/nitesh/headline_scraper/internal/service"
	"github.com/nitesh/headline_scraper/internal/store"
	"github.com/nitesh/headline_scraper/pkg/models"
)

var _ api.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of api.Scraper.
type Scraper struct {
	ScrapeFn     func(ctx context.Context) (service.ScrapeResult, error)
	ArticlesFn   func(ctx context.Context, f store.Filter) ([]byte, error)
	ArticleFn    func(ctx context.Context, id string) (*models.Article, error)
	AddCommentFn func(ctx context.Context, id string, in models.CommentInput) (*models.Article, error)
	DeleteAllFn  func(ctx context.Context) (int64, error)
}

func (s *Scraper) Scrape(ctx context.Context) (service.ScrapeResult, error) {
	return s.ScrapeFn(ctx)
}

func (s *Scraper) Articles(ctx context.Context, f store.Filter) ([]byte, error) {
	return s.ArticlesFn(ctx, f)
}

func (s *Scraper) Article(ctx context.Context, id string) (*models.Article, error) {
	return s.ArticleFn(ctx, id)
}

func (s *Scraper) AddComment(ctx context.Context, id string, in models.CommentInput) (*models.Article, error) {
	return s.AddCommentFn(ctx, id, in)
}

func (s *Scraper) DeleteAll(ctx context.Context) (int64, error) {
	return s.DeleteAllFn(ctx)
}
