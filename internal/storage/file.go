package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/postwatch/internal/types"
)

// --- JSONL Archive ---

// JSONLArchive appends one JSON record per listing to a file.
type JSONLArchive struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLArchive opens outputPath for appending, creating parent directories.
func NewJSONLArchive(outputPath string, logger *slog.Logger) (*JSONLArchive, error) {
	f, err := openAppend(outputPath)
	if err != nil {
		return nil, err
	}

	return &JSONLArchive{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_archive"),
	}, nil
}

func (s *JSONLArchive) Name() string { return "jsonl" }

func (s *JSONLArchive) Store(_ context.Context, date string, entries []types.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(newRecord(date, entries)); err != nil {
		return fmt.Errorf("encode JSONL: %w", err)
	}
	s.count++
	s.logger.Debug("listing archived", "date", date, "entries", len(entries), "path", s.path)
	return nil
}

func (s *JSONLArchive) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	s.logger.Info("JSONL archive closed", "path", s.path, "listings", s.count)
	err := s.file.Close()
	s.file = nil
	return err
}

// --- CSV Archive ---

var csvHeader = []string{"query_date", "date", "title", "unit", "archive_link", "document_link"}

// CSVArchive appends one row per entry.
type CSVArchive struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewCSVArchive opens outputPath for appending and writes the header when the
// file is new.
func NewCSVArchive(outputPath string, logger *slog.Logger) (*CSVArchive, error) {
	f, err := openAppend(outputPath)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write CSV header: %w", err)
		}
		w.Flush()
	}

	return &CSVArchive{
		path:   outputPath,
		file:   f,
		writer: w,
		logger: logger.With("component", "csv_archive"),
	}, nil
}

func (s *CSVArchive) Name() string { return "csv" }

func (s *CSVArchive) Store(_ context.Context, date string, entries []types.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		row := []string{date, e.Date, e.Title, e.Unit, e.Archive(), e.Document()}
		if err := s.writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		s.count++
	}
	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVArchive) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	s.writer.Flush()
	s.logger.Info("CSV archive closed", "path", s.path, "rows", s.count)
	err := s.file.Close()
	s.file = nil
	return err
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return f, nil
}
