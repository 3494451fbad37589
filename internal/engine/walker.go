package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/postwatch/internal/fetcher"
	"github.com/IshaanNene/postwatch/internal/observability"
	"github.com/IshaanNene/postwatch/internal/parser"
	"github.com/IshaanNene/postwatch/internal/types"
)

// Walker follows a paginated listing from its first page to the end,
// aggregating entries in visitation order.
type Walker struct {
	open      fetcher.Opener
	extractor parser.Extractor
	maxPages  int
	pageDelay time.Duration
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// WalkerOption configures the Walker.
type WalkerOption func(*Walker)

// WithMaxPages bounds the number of pages fetched per walk (0 = unlimited).
func WithMaxPages(n int) WalkerOption {
	return func(w *Walker) { w.maxPages = n }
}

// WithPageDelay sets a pause between consecutive page fetches.
func WithPageDelay(d time.Duration) WalkerOption {
	return func(w *Walker) { w.pageDelay = d }
}

// WithMetrics records walk counters into m.
func WithMetrics(m *observability.Metrics) WalkerOption {
	return func(w *Walker) { w.metrics = m }
}

// NewWalker creates a Walker that acquires one fetcher per walk from open.
func NewWalker(open fetcher.Opener, extractor parser.Extractor, logger *slog.Logger, opts ...WalkerOption) *Walker {
	w := &Walker{
		open:      open,
		extractor: extractor,
		logger:    logger.With("component", "walker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk fetches startURL and every following page until a page has no next
// link or the next link was already visited. Any fetch failure aborts the
// walk and discards what was collected so far.
func (w *Walker) Walk(ctx context.Context, startURL string) ([]types.Entry, error) {
	if startURL == "" {
		return nil, types.ErrEmptyURL
	}
	w.count(func(m *observability.Metrics) { m.WalksTotal.Add(1) })

	f, err := w.open(ctx)
	if err != nil {
		return nil, &types.NavigationError{URL: startURL, Err: fmt.Errorf("open fetcher: %w", err)}
	}
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn("fetcher close error", "type", f.Type(), "error", err)
		}
	}()

	start := time.Now()
	visited := newVisitedSet()
	result := make([]types.Entry, 0)
	current := startURL

	for current != "" && !visited.Has(current) {
		if w.maxPages > 0 && visited.Len() >= w.maxPages {
			return nil, fmt.Errorf("%w: stopped at %d pages, next %s", types.ErrPageLimit, visited.Len(), current)
		}
		if visited.Len() > 0 && w.pageDelay > 0 {
			if err := sleepCtx(ctx, w.pageDelay); err != nil {
				return nil, &types.NavigationError{URL: current, Err: err}
			}
		}

		visited.Add(current)
		w.logger.Debug("fetching page", "page", visited.Len(), "url", current)

		html, err := f.Fetch(ctx, current)
		if err != nil {
			w.count(func(m *observability.Metrics) { m.PagesFailed.Add(1) })
			var nav *types.NavigationError
			if !errors.As(err, &nav) {
				err = &types.NavigationError{URL: current, Err: err}
			}
			return nil, err
		}
		w.count(func(m *observability.Metrics) { m.PagesFetched.Add(1) })

		entries := w.extractor.Extract(html)
		result = append(result, entries...)
		w.count(func(m *observability.Metrics) { m.EntriesExtracted.Add(int64(len(entries))) })

		next, ok := w.extractor.NextPageURL(html)
		if !ok {
			break
		}
		if visited.Has(next) {
			w.logger.Debug("pagination cycle detected, walk complete", "next", next)
			w.count(func(m *observability.Metrics) { m.CyclesDetected.Add(1) })
			break
		}
		current = next
	}

	w.logger.Info("walk complete",
		"start", startURL,
		"pages", visited.Len(),
		"entries", len(result),
		"duration", time.Since(start),
	)
	return result, nil
}

func (w *Walker) count(fn func(*observability.Metrics)) {
	if w.metrics != nil {
		fn(w.metrics)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
