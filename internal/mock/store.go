package mock

import (
	"context"

	"github.com/nitesh/headline_scraper/internal/service"
	"github.com/nitesh/headline_scraper/internal/store"
	"github.com/nitesh/headline_scraper/pkg/models"
)

var _ service.ArticleStore = (*ArticleStore)(nil)

// ArticleStore is a mock implementation of service.ArticleStore.
type ArticleStore struct {
	CreateFn        func(ctx context.Context, in store.ArticleInput) (*models.Article, error)
	FindByIDFn      func(ctx context.Context, id string, comments bool) (*models.Article, error)
	FindFn          func(ctx context.Context, f store.Filter) ([]*models.Article, error)
	AppendCommentFn func(ctx context.Context, id string, in models.CommentInput) (*models.Article, error)
	DeleteAllFn     func(ctx context.Context) (int64, error)
}

func (s *ArticleStore) Create(ctx context.Context, in store.ArticleInput) (*models.Article, error) {
	return s.CreateFn(ctx, in)
}

func (s *ArticleStore) FindByID(ctx context.Context, id string, comments bool) (*models.Article, error) {
	return s.FindByIDFn(ctx, id, comments)
}

func (s *ArticleStore) Find(ctx context.Context, f store.Filter) ([]*models.Article, error) {
	return s.FindFn(ctx, f)
}

func (s *ArticleStore) AppendComment(ctx context.Context, id string, in models.CommentInput) (*models.Article, error) {
	return s.AppendCommentFn(ctx, id, in)
}

func (s *ArticleStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.DeleteAllFn(ctx)
}
