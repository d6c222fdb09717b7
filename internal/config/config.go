// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nitesh/headline_scraper/internal/extract"
)

const (
	FetcherHTTP = "http"
	FetcherRod  = "rod"

	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

type Config struct {
	Port string

	DBDriver    string
	DatabaseURL string

	RedisAddr string
	CacheTTL  time.Duration

	ScrapeURL          string
	ScrapeHome         string
	ScrapeCron         string
	PersistConcurrency int
	Selectors          extract.Selectors

	Fetcher      string
	FetchTimeout time.Duration
	FetchRetries int
	FetchRPS     float64
	UserAgent    string

	Log LogConfig
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with an explicit environment lookup.
func LoadFrom(getenv func(string) string) (*Config, error) {
	get := func(key, d string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return d
	}

	var errs []error
	dur := func(key, d string) time.Duration {
		v, err := time.ParseDuration(get(key, d))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}
	num := func(key, d string) int {
		v, err := strconv.Atoi(get(key, d))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return v
	}

	cfg := &Config{
		Port:               get("PORT", "3000"),
		DBDriver:           get("DB_DRIVER", "postgres"),
		RedisAddr:          getenv("REDIS_ADDR"),
		CacheTTL:           dur("CACHE_TTL", "60s"),
		ScrapeURL:          get("SCRAPE_URL", "https://www.reddit.com/r/webdev/"),
		ScrapeHome:         get("SCRAPE_HOME", "https://www.reddit.com"),
		ScrapeCron:         getenv("SCRAPE_CRON"),
		PersistConcurrency: num("PERSIST_CONCURRENCY", "8"),
		Fetcher:            strings.ToLower(get("FETCHER", FetcherHTTP)),
		FetchTimeout:       dur("FETCH_TIMEOUT", "15s"),
		FetchRetries:       num("FETCH_RETRIES", "2"),
		UserAgent:          get("USER_AGENT", defaultUserAgent),
		Log: LogConfig{
			Level:      get("LOG_LEVEL", "info"),
			File:       getenv("LOG_FILE"),
			MaxSizeMB:  num("LOG_MAX_SIZE_MB", "50"),
			MaxBackups: num("LOG_MAX_BACKUPS", "3"),
			MaxAgeDays: num("LOG_MAX_AGE_DAYS", "28"),
		},
	}

	rps, err := strconv.ParseFloat(get("FETCH_RPS", "1"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("FETCH_RPS: %w", err))
	}
	cfg.FetchRPS = rps

	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDSN(cfg.DBDriver, get)
	}

	cfg.Selectors = extract.DefaultSelectors()
	if path := getenv("SELECTORS_FILE"); path != "" {
		sel, err := LoadSelectors(path)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Selectors = sel
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return cfg, nil
}

func defaultDSN(driver string, get func(string, string) string) string {
	if driver == "sqlite3" {
		return "file:headlines.db"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(get("DB_USER", "scraper"), get("DB_PASS", "scraper")),
		Host:     get("DB_HOST", "localhost") + ":" + get("DB_PORT", "5432"),
		Path:     "/" + get("DB_NAME", "headlines"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.Fetcher {
	case FetcherHTTP, FetcherRod:
	default:
		return fmt.Errorf("unsupported FETCHER %q", c.Fetcher)
	}
	u, err := url.Parse(c.ScrapeURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid SCRAPE_URL %q", c.ScrapeURL)
	}
	if c.FetchRetries < 0 {
		return errors.New("FETCH_RETRIES must not be negative")
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return c.Selectors.Validate()
}
