package fetcher

import (
	"context"
	"log/slog"

	"github.com/IshaanNene/postwatch/internal/config"
)

// Fetcher returns the fully rendered HTML of a page.
type Fetcher interface {
	// Fetch loads the URL and returns its HTML once the page has settled.
	Fetch(ctx context.Context, rawURL string) (string, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// Opener acquires a fetcher for the duration of one walk. The caller owns
// the returned Fetcher and must Close it.
type Opener func(ctx context.Context) (Fetcher, error)

// NewOpener returns an Opener for the configured fetcher type.
func NewOpener(cfg *config.FetcherConfig, logger *slog.Logger) Opener {
	if cfg.Type == "http" {
		return func(ctx context.Context) (Fetcher, error) {
			return NewHTTPFetcher(cfg, logger), nil
		}
	}
	return func(ctx context.Context) (Fetcher, error) {
		return NewBrowserFetcher(ctx, cfg, logger)
	}
}
