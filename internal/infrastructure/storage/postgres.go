package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

// PostgresStore keeps each topic's history as a single JSON document row:
//
//	CREATE TABLE topic_listings (
//	    topic      TEXT PRIMARY KEY,
//	    history    JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// One row per topic preserves the per-topic partition isolation of the file
// backend while surviving ephemeral runner filesystems.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.LedgerStore = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// OpenPostgresStore opens a lib/pq connection for the DSN and verifies it.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(db), nil
}

// Load reads the topic's history row. A missing row is an empty history;
// every other failure is domain.ErrLedgerCorrupt so stale state is never
// silently discarded.
func (s *PostgresStore) Load(ctx context.Context, topic string) ([]domain.ListingRecord, error) {
	query, args, err := s.builder.
		Select("history").
		From("topic_listings").
		Where(sq.Eq{"topic": topic}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var raw []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load history for %q: %v", domain.ErrLedgerCorrupt, topic, err)
	}

	var records []domain.ListingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: parse history for %q: %v", domain.ErrLedgerCorrupt, topic, err)
	}
	return records, nil
}

// Save upserts the full updated history for the topic.
func (s *PostgresStore) Save(ctx context.Context, topic string, records []domain.ListingRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history for %q: %w", topic, err)
	}

	query, args, err := s.builder.
		Insert("topic_listings").
		Columns("topic", "history").
		Values(topic, raw).
		Suffix("ON CONFLICT (topic) DO UPDATE SET history = EXCLUDED.history, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build history upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert history for %q: %w", topic, err)
	}
	return nil
}
