// Package store persists articles and their comments through sqlx, on
// postgres or sqlite.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// connect retry budget while the database container is still starting
const (
	pingAttempts = 10
	pingWait     = 2 * time.Second
)

// Store is the article collection.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to the database, waiting for it to come up, and runs the
// migrations.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if driver == DriverSQLite {
		// one writer; also keeps a :memory: database on a single connection
		db.SetMaxOpenConns(1)
	}

	for i := 0; i < pingAttempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logger.Warn("waiting for db", "attempt", i+1, "error", err)
		select {
		case <-time.After(pingWait):
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to db: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// RunMigrations creates the tables if they don't exist. The schema sticks to
// types both drivers understand; timestamps are unix nanoseconds.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS articles(
  id TEXT PRIMARY KEY,
  headline TEXT NOT NULL,
  url TEXT NOT NULL,
  user_name TEXT NOT NULL,
  likes BIGINT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS comments(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  body TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS article_comments(
  article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
  comment_id TEXT NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
  position BIGINT NOT NULL,
  PRIMARY KEY (article_id, comment_id)
);

CREATE INDEX IF NOT EXISTS idx_articles_created ON articles(created_at);
CREATE INDEX IF NOT EXISTS idx_articles_user ON articles(user_name);
CREATE INDEX IF NOT EXISTS idx_article_comments_position ON article_comments(article_id, position);
`
	_, err := db.ExecContext(ctx, initSQL)
	return err
}

// Close disconnects from the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
