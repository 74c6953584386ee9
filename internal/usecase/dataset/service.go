// Package dataset bulk-imports restaurants from JSON files into the store.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/restaurant"
)

// DefaultBatchSize is the number of restaurants written per Save call.
const DefaultBatchSize = 500

// Rejection is a record that failed validation.
type Rejection struct {
	Index int
	ID    int64
	Err   error
}

// Report summarizes a load.
type Report struct {
	Loaded   int
	Rejected []Rejection
}

// Service imports restaurant datasets with per-record error reporting.
type Service struct {
	repo      Saver
	batchSize int
	logger    *zap.Logger
}

// New creates a dataset service.
func New(repo Saver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, batchSize: DefaultBatchSize, logger: logger}
}

// WithBatchSize configures the write batch size.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// LoadFile imports the JSON array at path.
func (s *Service) LoadFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Report{}, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return s.Load(ctx, f)
}

// Load imports a JSON array of records. Invalid records are skipped and
// reported; a storage failure aborts the load.
func (s *Service) Load(ctx context.Context, r io.Reader) (Report, error) {
	records, err := Decode(r)
	if err != nil {
		return Report{}, err
	}

	var report Report
	valid := make([]restaurant.Restaurant, 0, len(records))
	seen := make(map[int64]int, len(records))
	for i, rec := range records {
		rest, err := rec.Restaurant()
		if err != nil {
			report.Rejected = append(report.Rejected, Rejection{Index: i, ID: rec.ID, Err: err})
			continue
		}
		// Later duplicates win, as they would on an upsert.
		if j, dup := seen[rest.ID()]; dup {
			valid[j] = rest
			continue
		}
		seen[rest.ID()] = len(valid)
		valid = append(valid, rest)
	}

	for start := 0; start < len(valid); start += s.batchSize {
		end := min(start+s.batchSize, len(valid))
		if err := s.repo.Save(ctx, valid[start:end]); err != nil {
			return report, fmt.Errorf("save restaurants %d-%d: %w", start, end-1, err)
		}
		report.Loaded = end
	}

	for _, rej := range report.Rejected {
		s.logger.Warn("Dataset record rejected",
			zap.Int("index", rej.Index),
			zap.Int64("id", rej.ID),
			zap.Error(rej.Err),
		)
	}
	s.logger.Info("Dataset loaded",
		zap.Int("loaded", report.Loaded),
		zap.Int("rejected", len(report.Rejected)),
	)
	return report, nil
}

// Decode parses a JSON array of records.
func Decode(r io.Reader) ([]Record, error) {
	var records []Record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, nil
}
