package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nitesh/headline_scraper/pkg/models"
)

// ArticleInput is the data needed to create an article. Likes is the score
// as displayed on the page.
type ArticleInput struct {
	Headline string
	URL      string
	User     string
	Likes    string
}

// Filter narrows Find. Zero values match everything.
type Filter struct {
	User  string
	Limit int
}

type articleRow struct {
	ID        string `db:"id"`
	Headline  string `db:"headline"`
	URL       string `db:"url"`
	User      string `db:"user_name"`
	Likes     int64  `db:"likes"`
	CreatedAt int64  `db:"created_at"`
}

func (r articleRow) article() *models.Article {
	return &models.Article{
		ID:         r.ID,
		Headline:   r.Headline,
		URL:        r.URL,
		User:       r.User,
		Likes:      r.Likes,
		CreatedAt:  time.Unix(0, r.CreatedAt).UTC(),
		CommentIDs: []string{},
	}
}

type commentRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Body      string `db:"body"`
	CreatedAt int64  `db:"created_at"`
}

func (r commentRow) comment() *models.Comment {
	return &models.Comment{
		ID:        r.ID,
		Title:     r.Title,
		Body:      r.Body,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
}

const articleColumns = `id, headline, url, user_name, likes, created_at`

func validate(in ArticleInput) (int64, error) {
	required := []struct{ field, value string }{
		{"headline", in.Headline},
		{"url", in.URL},
		{"user", in.User},
		{"likes", in.Likes},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return 0, &ValidationError{Field: r.field, Reason: "is required"}
		}
	}
	likes, err := ParseLikes(in.Likes)
	if err != nil {
		return 0, &ValidationError{Field: "likes", Reason: err.Error()}
	}
	return likes, nil
}

// Create validates and inserts an article.
func (s *Store) Create(ctx context.Context, in ArticleInput) (*models.Article, error) {
	likes, err := validate(in)
	if err != nil {
		return nil, err
	}

	row := articleRow{
		ID:        uuid.New().String(),
		Headline:  in.Headline,
		URL:       in.URL,
		User:      in.User,
		Likes:     likes,
		CreatedAt: time.Now().UTC().UnixNano(),
	}
	query := s.db.Rebind(`INSERT INTO articles (` + articleColumns + `) VALUES (?,?,?,?,?,?)`)
	if _, err := s.db.ExecContext(ctx, query,
		row.ID, row.Headline, row.URL, row.User, row.Likes, row.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	return row.article(), nil
}

// FindByID loads one article. With comments set, the comment objects are
// loaded too.
func (s *Store) FindByID(ctx context.Context, id string, comments bool) (*models.Article, error) {
	var row articleRow
	query := s.db.Rebind(`SELECT ` + articleColumns + ` FROM articles WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find article: %w", err)
	}

	a := row.article()
	if err := s.attachCommentIDs(ctx, []*models.Article{a}, `SELECT id FROM articles WHERE id = ?`, []any{id}); err != nil {
		return nil, err
	}
	if comments {
		if err := s.populateComments(ctx, a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Find lists articles oldest first.
func (s *Store) Find(ctx context.Context, f Filter) ([]*models.Article, error) {
	from, args := listClause(f)

	rows := []articleRow{}
	query := s.db.Rebind(`SELECT ` + articleColumns + from)
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}

	out := make([]*models.Article, len(rows))
	for i, r := range rows {
		out[i] = r.article()
	}
	if err := s.attachCommentIDs(ctx, out, `SELECT id`+from, args); err != nil {
		return nil, err
	}
	return out, nil
}

// listClause is the FROM..LIMIT tail shared by Find and its comment lookup.
func listClause(f Filter) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString(` FROM articles`)
	if f.User != "" {
		b.WriteString(` WHERE user_name = ?`)
		args = append(args, f.User)
	}
	b.WriteString(` ORDER BY created_at ASC, id ASC`)
	if f.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, f.Limit)
	}
	return b.String(), args
}

// AppendComment stores a comment and adds it to the end of the article's
// comment list. The returned article has its comments loaded.
func (s *Store) AppendComment(ctx context.Context, id string, in models.CommentInput) (*models.Article, error) {
	if strings.TrimSpace(in.Body) == "" {
		return nil, &ValidationError{Field: "body", Reason: "is required"}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM articles WHERE id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	c := commentRow{
		ID:        uuid.New().String(),
		Title:     in.Title,
		Body:      in.Body,
		CreatedAt: time.Now().UTC().UnixNano(),
	}
	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO comments (id, title, body, created_at) VALUES (?,?,?,?)`),
		c.ID, c.Title, c.Body, c.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert comment id=%s: %w", c.ID, err)
	}

	var position int64
	if err := tx.GetContext(ctx, &position,
		tx.Rebind(`SELECT COALESCE(MAX(position) + 1, 0) FROM article_comments WHERE article_id = ?`), id); err != nil {
		return nil, fmt.Errorf("next comment position: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO article_comments (article_id, comment_id, position) VALUES (?,?,?)`),
		id, c.ID, position); err != nil {
		return nil, fmt.Errorf("link comment id=%s: %w", c.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id, true)
}

// DeleteAll removes every article along with its comments and returns how
// many articles were deleted.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE id IN (SELECT comment_id FROM article_comments)`); err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM article_comments`); err != nil {
		return 0, fmt.Errorf("delete comment links: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM articles`)
	if err != nil {
		return 0, fmt.Errorf("delete articles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// attachCommentIDs fills CommentIDs for articles. idQuery selects the same
// article ids, so the lookup binds only its arguments however many rows match.
func (s *Store) attachCommentIDs(ctx context.Context, articles []*models.Article, idQuery string, args []any) error {
	if len(articles) == 0 {
		return nil
	}
	byID := make(map[string]*models.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	query := s.db.Rebind(`SELECT article_id, comment_id FROM article_comments WHERE article_id IN (` +
		idQuery + `) ORDER BY article_id, position`)
	links := []struct {
		ArticleID string `db:"article_id"`
		CommentID string `db:"comment_id"`
	}{}
	if err := s.db.SelectContext(ctx, &links, query, args...); err != nil {
		return fmt.Errorf("load comment ids: %w", err)
	}
	for _, l := range links {
		if a, ok := byID[l.ArticleID]; ok {
			a.CommentIDs = append(a.CommentIDs, l.CommentID)
		}
	}
	return nil
}

func (s *Store) populateComments(ctx context.Context, a *models.Article) error {
	rows := []commentRow{}
	query := s.db.Rebind(`
SELECT c.id, c.title, c.body, c.created_at
FROM comments c
JOIN article_comments ac ON ac.comment_id = c.id
WHERE ac.article_id = ?
ORDER BY ac.position`)
	if err := s.db.SelectContext(ctx, &rows, query, a.ID); err != nil {
		return fmt.Errorf("load comments: %w", err)
	}
	a.Comments = make([]*models.Comment, len(rows))
	for i, r := range rows {
		a.Comments[i] = r.comment()
	}
	return nil
}
