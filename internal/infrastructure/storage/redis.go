package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

const defaultKeyPrefix = "listingradar:topic:"

// RedisStore keeps each topic's history as one JSON value under a prefixed
// key. Entries never expire; the ledger is append-only by contract.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ ports.LedgerStore = (*RedisStore)(nil)

// NewRedisStore wires a go-redis client; an empty prefix gets the default.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Load reads the topic's history. A missing key is an empty history; any
// other failure is domain.ErrLedgerCorrupt.
func (s *RedisStore) Load(ctx context.Context, topic string) ([]domain.ListingRecord, error) {
	raw, err := s.client.Get(ctx, s.key(topic)).Bytes()
	if errors.Is(err, redis.Nil) {
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

// Save writes the full updated history for the topic.
func (s *RedisStore) Save(ctx context.Context, topic string, records []domain.ListingRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history for %q: %w", topic, err)
	}
	if err := s.client.Set(ctx, s.key(topic), raw, 0).Err(); err != nil {
		return fmt.Errorf("write history for %q: %w", topic, err)
	}
	return nil
}

func (s *RedisStore) key(topic string) string {
	return s.prefix + topic
}
