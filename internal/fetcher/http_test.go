package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func testFetcherConfig() *config.FetcherConfig {
	cfg := config.DefaultConfig().Fetcher
	cfg.Type = "http"
	cfg.PageTimeout = 5 * time.Second
	return &cfg
}

func TestHTTPFetcherBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "br")
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		_, _ = bw.Write([]byte("<html><body>postliste</body></html>"))
		_ = bw.Close()
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	defer f.Close()

	html, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html><body>postliste</body></html>", html)
	assert.Equal(t, "http", f.Type())
}

func TestHTTPFetcherStatusIsNavigationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testFetcherConfig(), testLogger)
	_, err := f.Fetch(context.Background(), srv.URL)

	var nav *types.NavigationError
	require.True(t, errors.As(err, &nav))
	assert.Equal(t, http.StatusServiceUnavailable, nav.StatusCode)
	assert.Equal(t, srv.URL, nav.URL)
}

func TestOpenerSelectsHTTP(t *testing.T) {
	open := NewOpener(testFetcherConfig(), testLogger)
	f, err := open(context.Background())
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "http", f.Type())
}

func TestHTTPFetcherRejectsOversizedBody(t *testing.T) {
	page := "<html><body><ul>" + strings.Repeat("<li>sak</li>", 15) + "</ul>" +
		`<ul class="pagination"><li><a class="content-link" href="/innsyn.aspx?startrow=11">2</a></li></ul></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	cfg := testFetcherConfig()
	cfg.MaxBodySize = 64
	f := NewHTTPFetcher(cfg, testLogger)
	defer f.Close()

	html, err := f.Fetch(context.Background(), srv.URL)
	assert.Empty(t, html)
	var nav *types.NavigationError
	require.True(t, errors.As(err, &nav))
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	cfg.MaxBodySize = int64(len(page))
	html, err = NewHTTPFetcher(cfg, testLogger).Fetch(context.Background(), srv.URL)
	require.NoError(t, err, "a body exactly at the limit is complete")
	assert.Equal(t, page, html)
}
