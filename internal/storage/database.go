package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/postwatch/internal/types"
)

// MongoArchive keeps the latest listing per date in a MongoDB collection.
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoArchive connects to MongoDB and verifies the connection.
func NewMongoArchive(uri, database, collection string, logger *slog.Logger) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoArchive{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_archive"),
	}, nil
}

func (s *MongoArchive) Name() string { return "mongodb" }

// Store replaces the document for date, so re-fetching a day keeps one record.
func (s *MongoArchive) Store(ctx context.Context, date string, entries []types.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": date},
		newRecord(date, entries),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongodb upsert: %w", err)
	}

	s.count++
	s.logger.Debug("listing stored in mongodb", "date", date, "entries", len(entries))
	return nil
}

func (s *MongoArchive) Close() error {
	s.logger.Info("mongodb archive closing", "listings", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// --- Multi-Archive Fan-Out ---

// MultiArchive writes listings to multiple backends.
type MultiArchive struct {
	backends []Archive
	logger   *slog.Logger
}

// NewMultiArchive creates an archive that fans out to multiple backends.
func NewMultiArchive(backends []Archive, logger *slog.Logger) *MultiArchive {
	return &MultiArchive{
		backends: backends,
		logger:   logger.With("component", "multi_archive"),
	}
}

func (s *MultiArchive) Name() string { return "multi" }

// Store writes to every backend and joins their errors.
func (s *MultiArchive) Store(ctx context.Context, date string, entries []types.Entry) error {
	var errs []error
	for _, backend := range s.backends {
		if err := backend.Store(ctx, date, entries); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			errs = append(errs, &types.StorageError{Backend: backend.Name(), Err: err})
		}
	}
	return errors.Join(errs...)
}

func (s *MultiArchive) Close() error {
	var errs []error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
