package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

// FileStore keeps one JSON file per topic under a data directory. This is
// the default backend: a flat file per topic is all the workflow deployment
// needs, and the files double as a human-readable discovery history.
type FileStore struct {
	dir string
}

var _ ports.LedgerStore = (*FileStore)(nil)

// NewFileStore roots the store at dir; the directory is created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Load reads the topic's history. A missing file is an empty history, not an
// error; any other read or parse failure is domain.ErrLedgerCorrupt.
func (s *FileStore) Load(_ context.Context, topic string) ([]domain.ListingRecord, error) {
	path := s.path(topic)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrLedgerCorrupt, path, err)
	}

	var records []domain.ListingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrLedgerCorrupt, path, err)
	}
	return records, nil
}

// Save writes the full updated history for the topic.
func (s *FileStore) Save(_ context.Context, topic string, records []domain.ListingRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history for %s: %w", topic, err)
	}
	if err := os.WriteFile(s.path(topic), raw, 0o644); err != nil {
		return fmt.Errorf("write history for %s: %w", topic, err)
	}
	return nil
}

func (s *FileStore) path(topic string) string {
	return filepath.Join(s.dir, topic+".json")
}
