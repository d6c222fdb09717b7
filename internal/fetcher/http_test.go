package fetcher_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nitesh/headline_scraper/internal/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(retries int) *fetcher.HTTP {
	return fetcher.NewHTTP(fetcher.HTTPConfig{
		UserAgent:  "test-agent",
		Timeout:    5 * time.Second,
		MaxRetries: retries,
		BackoffMin: time.Millisecond,
		BackoffMax: 5 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHTTP_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body and sends user agent", func(t *testing.T) {
		t.Parallel()

		var ua string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("<html>ok</html>"))
		}))
		defer srv.Close()

		body, err := newTestFetcher(0).Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html>ok</html>", body)
		assert.Equal(t, "test-agent", ua)
	})

	t.Run("retries server errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte("third time"))
		}))
		defer srv.Close()

		body, err := newTestFetcher(2).Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "third time", body)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after retries", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestFetcher(1).Fetch(context.Background(), srv.URL)
		assert.Error(t, err)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := newTestFetcher(3).Fetch(context.Background(), srv.URL)
		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("decodes gzip bodies", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var buf bytes.Buffer
			gz := gzip.NewWriter(&buf)
			_, _ = gz.Write([]byte("zipped"))
			_ = gz.Close()
			w.Header().Set("Content-Encoding", "gzip")
			_, _ = w.Write(buf.Bytes())
		}))
		defer srv.Close()

		body, err := newTestFetcher(0).Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Equal(t, "zipped", body)
	})
}
