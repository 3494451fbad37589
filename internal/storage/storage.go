package storage

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/types"
)

// Archive is the interface for all listing archive backends.
type Archive interface {
	// Store persists the listing fetched for date.
	Store(ctx context.Context, date string, entries []types.Entry) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the backend identifier.
	Name() string
}

// Record is one archived listing.
type Record struct {
	Date      string        `json:"date"      bson:"_id"`
	FetchedAt time.Time     `json:"fetchedAt" bson:"fetchedAt"`
	Count     int           `json:"count"     bson:"count"`
	Entries   []types.Entry `json:"entries"   bson:"entries"`
}

func newRecord(date string, entries []types.Entry) Record {
	if entries == nil {
		entries = []types.Entry{}
	}
	return Record{
		Date:      date,
		FetchedAt: time.Now().UTC(),
		Count:     len(entries),
		Entries:   entries,
	}
}

// New builds the archive selected by cfg.Type. A comma separated type fans out
// to every named backend. It returns nil when no backend is named.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Archive, error) {
	names, err := cfg.Backends()
	if err != nil {
		return nil, &types.StorageError{Backend: cfg.Type, Err: err}
	}

	var backends []Archive
	for _, typ := range names {
		var a Archive
		switch typ {
		case "jsonl":
			a, err = NewJSONLArchive(cfg.OutputPath, logger)
		case "csv":
			a, err = NewCSVArchive(strings.TrimSuffix(cfg.OutputPath, ".jsonl")+".csv", logger)
		case "mongodb":
			a, err = NewMongoArchive(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
		}
		if err != nil {
			for _, b := range backends {
				b.Close()
			}
			return nil, &types.StorageError{Backend: typ, Err: err}
		}
		backends = append(backends, a)
	}

	switch len(backends) {
	case 0:
		return nil, nil
	case 1:
		return backends[0], nil
	default:
		return NewMultiArchive(backends, logger), nil
	}
}
