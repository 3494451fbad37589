package observability

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational counters for listing fetches.
type Metrics struct {
	// Listing metrics
	ListingsRequested atomic.Int64
	ListingsFailed    atomic.Int64
	InvalidDates      atomic.Int64

	// Walk metrics
	WalksTotal       atomic.Int64
	PagesFetched     atomic.Int64
	PagesFailed      atomic.Int64
	EntriesExtracted atomic.Int64
	CyclesDetected   atomic.Int64

	// Notification metrics
	NotificationsSent    atomic.Int64
	NotificationsFailed  atomic.Int64
	NotificationsSkipped atomic.Int64

	// Storage metrics
	ArchiveWrites atomic.Int64
	ArchiveErrors atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"postwatch_listings_requested_total", "Total listing queries", m.ListingsRequested.Load()},
		{"postwatch_listings_failed_total", "Total listing queries that failed to fetch", m.ListingsFailed.Load()},
		{"postwatch_invalid_dates_total", "Total queries rejected for an invalid date", m.InvalidDates.Load()},
		{"postwatch_walks_total", "Total pagination walks started", m.WalksTotal.Load()},
		{"postwatch_pages_fetched_total", "Total listing pages fetched", m.PagesFetched.Load()},
		{"postwatch_pages_failed_total", "Total listing pages that failed to load", m.PagesFailed.Load()},
		{"postwatch_entries_extracted_total", "Total entries extracted", m.EntriesExtracted.Load()},
		{"postwatch_cycles_detected_total", "Total walks ended by a pagination cycle", m.CyclesDetected.Load()},
		{"postwatch_notifications_sent_total", "Total notifications delivered", m.NotificationsSent.Load()},
		{"postwatch_notifications_failed_total", "Total notifications that failed", m.NotificationsFailed.Load()},
		{"postwatch_notifications_skipped_total", "Total non-empty listings already notified", m.NotificationsSkipped.Load()},
		{"postwatch_archive_writes_total", "Total listings archived", m.ArchiveWrites.Load()},
		{"postwatch_archive_errors_total", "Total archive failures", m.ArchiveErrors.Load()},
	}

	var buf bytes.Buffer
	for _, metric := range metrics {
		fmt.Fprintf(&buf, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(&buf, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(&buf, "%s %d\n", metric.name, metric.value)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		m.logger.Warn("metrics write failed", "remote", r.RemoteAddr, "error", err)
	}
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"listings_requested":    m.ListingsRequested.Load(),
		"listings_failed":       m.ListingsFailed.Load(),
		"invalid_dates":         m.InvalidDates.Load(),
		"walks_total":           m.WalksTotal.Load(),
		"pages_fetched":         m.PagesFetched.Load(),
		"pages_failed":          m.PagesFailed.Load(),
		"entries_extracted":     m.EntriesExtracted.Load(),
		"cycles_detected":       m.CyclesDetected.Load(),
		"notifications_sent":    m.NotificationsSent.Load(),
		"notifications_failed":  m.NotificationsFailed.Load(),
		"notifications_skipped": m.NotificationsSkipped.Load(),
		"archive_writes":        m.ArchiveWrites.Load(),
		"archive_errors":        m.ArchiveErrors.Load(),
	}
}
