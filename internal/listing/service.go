// Package listing answers "what was published on this date" and decides when
// a listing is worth a notification.
package listing

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/postwatch/internal/notify"
	"github.com/IshaanNene/postwatch/internal/observability"
	"github.com/IshaanNene/postwatch/internal/storage"
	"github.com/IshaanNene/postwatch/internal/types"
)

// Walker fetches every page of a listing starting at a URL.
type Walker interface {
	Walk(ctx context.Context, startURL string) ([]types.Entry, error)
}

// Service is the entry point for listing queries.
type Service struct {
	searchURL string
	walker    Walker
	notifier  notify.Notifier
	archive   storage.Archive
	gate      *Gate
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithNotifier sets the notifier fired for newly seen non-empty dates.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithArchive stores every successful listing.
func WithArchive(a storage.Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithMetrics records service counters into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service querying searchURL through walker.
func NewService(searchURL string, walker Walker, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		searchURL: searchURL,
		walker:    walker,
		gate:      NewGate(),
		logger:    logger.With("component", "listing"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Gate exposes the notification gate.
func (s *Service) Gate() *Gate { return s.gate }

// GetListing returns every entry published on date, in site order.
//
// A malformed date fails with *types.InvalidDateError before any network
// activity. Any page failure fails the whole query with
// *types.FetchFailedError; a partial listing is never returned.
func (s *Service) GetListing(ctx context.Context, date string) ([]types.Entry, error) {
	q, err := types.ParseQuery(date)
	if err != nil {
		s.count(func(m *observability.Metrics) { m.InvalidDates.Add(1) })
		s.logger.Warn("rejected listing query", "date", date, "error", err)
		return nil, err
	}
	s.count(func(m *observability.Metrics) { m.ListingsRequested.Add(1) })

	start := time.Now()
	entries, err := s.walker.Walk(ctx, BuildQueryURL(s.searchURL, q.Date))
	if err != nil {
		s.count(func(m *observability.Metrics) { m.ListingsFailed.Add(1) })
		s.logger.Error("listing fetch failed", "date", q.Date, "error", err)
		return nil, &types.FetchFailedError{Date: q.Date, Err: err}
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	s.logger.Info("listing fetched", "date", q.Date, "entries", len(entries), "duration", time.Since(start))

	s.store(ctx, q.Date, entries)
	s.notify(ctx, q.Date, entries)
	return entries, nil
}

func (s *Service) store(ctx context.Context, date string, entries []types.Entry) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Store(ctx, date, entries); err != nil {
		s.count(func(m *observability.Metrics) { m.ArchiveErrors.Add(1) })
		s.logger.Error("archive failed", "backend", s.archive.Name(), "date", date, "error", err)
		return
	}
	s.count(func(m *observability.Metrics) { m.ArchiveWrites.Add(1) })
}

// notify delivers entries at most once per date. The gate only advances after
// the notifier confirms delivery.
func (s *Service) notify(ctx context.Context, date string, entries []types.Entry) {
	if len(entries) == 0 {
		s.logger.Info("no entries for date", "date", date)
		return
	}
	if s.notifier == nil {
		return
	}
	if !s.gate.Claim(date) {
		s.count(func(m *observability.Metrics) { m.NotificationsSkipped.Add(1) })
		s.logger.Debug("date already notified", "date", date)
		return
	}

	if err := s.notifier.Notify(ctx, date, entries); err != nil {
		s.gate.Release(date)
		s.count(func(m *observability.Metrics) { m.NotificationsFailed.Add(1) })
		nerr := &types.NotifyError{Notifier: s.notifier.Name(), Date: date, Err: err}
		s.logger.Error("notification failed", "error", nerr)
		return
	}
	s.gate.Commit(date)
	s.count(func(m *observability.Metrics) { m.NotificationsSent.Add(1) })
}

func (s *Service) count(fn func(*observability.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}
