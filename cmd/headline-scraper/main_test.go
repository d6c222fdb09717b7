package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	main "github.com/nitesh/headline_scraper/cmd/headline-scraper"
	"github.com/nitesh/headline_scraper/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listing uses the built-in reddit selectors. The second post shows the
// hidden-score placeholder.
const listing = `<html><body>
<div class="_1poyrkZ7g36PawDueRza-J"></div>
<div class="_1poyrkZ7g36PawDueRza-J"></div>
<div class="_1poyrkZ7g36PawDueRza-J"></div>
<a class="_2tbHP6ZydRpjI44J3syuqC" href="/user/alice/">u/alice</a>
<a class="_2tbHP6ZydRpjI44J3syuqC" href="/user/bob">u/bob</a>
<a class="_2tbHP6ZydRpjI44J3syuqC" href="/user/carol">u/carol</a>
<h2 class="s5kz2p-0">First</h2>
<h2 class="s5kz2p-0">Second</h2>
<h2 class="s5kz2p-0">Third</h2>
<div class="_1rZYMD_4xY3gRcSS3p8ODO">12</div><div class="_1rZYMD_4xY3gRcSS3p8ODO">12</div>
<div class="_1rZYMD_4xY3gRcSS3p8ODO">•</div><div class="_1rZYMD_4xY3gRcSS3p8ODO">•</div>
<div class="_1rZYMD_4xY3gRcSS3p8ODO">1.2k</div><div class="_1rZYMD_4xY3gRcSS3p8ODO">1.2k</div>
<a class="SQnoC3ObvgnGjWt90zD9Z" href="/r/webdev/comments/1">1</a>
<a class="SQnoC3ObvgnGjWt90zD9Z" href="/r/webdev/comments/2">2</a>
<a class="SQnoC3ObvgnGjWt90zD9Z" href="/r/webdev/comments/3">3</a>
</body></html>`

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newMain(stdin string, env map[string]string) *main.Main {
	m := main.NewMain()
	m.Stdin = strings.NewReader(stdin)
	m.Getenv = envFrom(env)
	return m
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := newMain("", nil)
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "headline-scraper")
	assert.Contains(t, stdout.String(), "serve")
	assert.Contains(t, stdout.String(), "extract")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := newMain("", nil)
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_UnknownCommand(t *testing.T) {
	t.Parallel()

	m := newMain("", nil)
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"crawl"}, &stdout, &stderr)

	assert.Error(t, err)
}

func decodeItems(t *testing.T, b []byte) []extract.Item {
	t.Helper()
	var items []extract.Item
	require.NoError(t, json.Unmarshal(b, &items))
	return items
}

func TestExtractCmd(t *testing.T) {
	t.Parallel()

	t.Run("reads stdin and keeps complete records", func(t *testing.T) {
		t.Parallel()

		m := newMain(listing, nil)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"extract", "-", "--home", "https://example.com"}, &stdout, &stderr)
		require.NoError(t, err)

		items := decodeItems(t, stdout.Bytes())
		assert.Equal(t, []extract.Item{
			{Headline: "Second", User: "bob", Likes: "•", URL: "https://example.com/r/webdev/comments/2"},
			{Headline: "Third", User: "carol", Likes: "1.2k", URL: "https://example.com/r/webdev/comments/3"},
		}, items)
	})

	t.Run("all prints incomplete records", func(t *testing.T) {
		t.Parallel()

		m := newMain(listing, nil)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"extract", "-", "--all"}, &stdout, &stderr)
		require.NoError(t, err)

		items := decodeItems(t, stdout.Bytes())
		require.Len(t, items, 3)
		assert.Empty(t, items[0].User)
		assert.Equal(t, "12", items[0].Likes)
	})

	t.Run("reads file with custom selectors", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		page := filepath.Join(dir, "page.html")
		require.NoError(t, os.WriteFile(page, []byte(`<article></article>
<a class="u" href="/u/dana">dana</a><h3>Only</h3><span class="s">4</span><a class="l" href="/p/1">p</a>`), 0o600))
		selectors := filepath.Join(dir, "selectors.yaml")
		require.NoError(t, os.WriteFile(selectors, []byte(`
container: {selector: article}
user_link: {selector: a.u}
headline_text: {selector: h3}
likes_text: {selector: span.s, transform: identity}
href_link: {selector: a.l}
`), 0o600))

		m := newMain("", nil)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"extract", page, "-s", selectors, "--home", "https://x.test"}, &stdout, &stderr)
		require.NoError(t, err)

		assert.Equal(t, []extract.Item{
			{Headline: "Only", User: "dana", Likes: "4", URL: "https://x.test/p/1"},
		}, decodeItems(t, stdout.Bytes()))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		m := newMain("", nil)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"extract", filepath.Join(t.TempDir(), "none.html")}, &stdout, &stderr)
		assert.Error(t, err)
	})
}

func scrapeEnv(srvURL string) map[string]string {
	return map[string]string{
		"DB_DRIVER":    "sqlite3",
		"DATABASE_URL": ":memory:",
		"SCRAPE_URL":   srvURL + "/r/webdev/",
		"SCRAPE_HOME":  srvURL,
		"FETCH_RPS":    "0",
		"LOG_LEVEL":    "error",
		"GIN_MODE":     "test",
	}
}

func listingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listing)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapeCmd(t *testing.T) {
	t.Parallel()

	t.Run("stores complete records and reports counts", func(t *testing.T) {
		t.Parallel()

		srv := listingServer(t)
		m := newMain("", scrapeEnv(srv.URL))
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"scrape"}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Equal(t, "found=2 saved=1 failed=1\n", stdout.String())
	})

	t.Run("fetch failure is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)

		m := newMain("", scrapeEnv(srv.URL))
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"scrape"}, &stdout, &stderr)
		assert.Error(t, err)
	})

	t.Run("unreachable database is an error", func(t *testing.T) {
		t.Parallel()

		env := scrapeEnv("http://127.0.0.1")
		env["DB_DRIVER"] = "postgres"
		env["DATABASE_URL"] = "postgres://u:p@127.0.0.1:1/db?sslmode=disable"
		m := newMain("", env)
		var stdout, stderr bytes.Buffer

		// cancelled so the connect retries give up at once
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var err error
		assert.NotPanics(t, func() {
			err = m.Run(ctx, []string{"scrape"}, &stdout, &stderr)
		})
		assert.Error(t, err)
		assert.Empty(t, stdout.String())
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()

		env := scrapeEnv("http://127.0.0.1")
		env["FETCHER"] = "curl"
		m := newMain("", env)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"scrape"}, &stdout, &stderr)
		assert.Error(t, err)
	})
}

func TestServeCmd(t *testing.T) {
	t.Parallel()

	t.Run("serves until cancelled then drains", func(t *testing.T) {
		t.Parallel()

		srv := listingServer(t)
		env := scrapeEnv(srv.URL)
		env["PORT"] = "0"
		m := newMain("", env)
		addrc := make(chan net.Addr, 1)
		m.Listening = func(addr net.Addr) { addrc <- addr }
		var stdout, stderr bytes.Buffer

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan error, 1)
		go func() {
			done <- m.Run(ctx, []string{"serve"}, &stdout, &stderr)
		}()

		var addr net.Addr
		select {
		case addr = <-addrc:
		case err := <-done:
			t.Fatalf("serve returned before listening: %v", err)
		case <-time.After(10 * time.Second):
			t.Fatal("serve did not start listening")
		}

		resp, err := http.Get("http://" + addr.String() + "/articles")
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `[]`, string(body))

		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("serve did not stop")
		}
	})

	t.Run("cancel during startup returns an error", func(t *testing.T) {
		t.Parallel()

		srv := listingServer(t)
		env := scrapeEnv(srv.URL)
		env["PORT"] = "0"
		m := newMain("", env)
		m.Listening = func(net.Addr) { t.Error("serve should not start listening") }
		var stdout, stderr bytes.Buffer

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var err error
		assert.NotPanics(t, func() {
			err = m.Run(ctx, []string{"serve"}, &stdout, &stderr)
		})
		assert.Error(t, err)
	})
}
