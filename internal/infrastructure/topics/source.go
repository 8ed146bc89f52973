package topics

import (
	"context"
	"encoding/json"
	"fmt"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

// StaticSource serves a fixed topic list taken from the config file.
type StaticSource struct {
	topics []domain.TopicConfig
}

var _ ports.TopicSource = (*StaticSource)(nil)

// NewStaticSource copies the given topic list.
func NewStaticSource(topics []domain.TopicConfig) *StaticSource {
	copied := make([]domain.TopicConfig, len(topics))
	copy(copied, topics)
	return &StaticSource{topics: copied}
}

// Topics returns a fresh copy so callers cannot mutate the source.
func (s *StaticSource) Topics(_ context.Context) ([]domain.TopicConfig, error) {
	out := make([]domain.TopicConfig, len(s.topics))
	copy(out, s.topics)
	return out, nil
}

// JSONSource parses the topic list from the JSON document the hosted
// administration surface publishes (injected as an environment variable by
// the workflow that runs the scanner). The expected shape is an array of
// {"topic": ..., "url": ..., "disabled": ...} objects.
type JSONSource struct {
	raw string
}

var _ ports.TopicSource = (*JSONSource)(nil)

// NewJSONSource wraps the raw JSON document.
func NewJSONSource(raw string) *JSONSource {
	return &JSONSource{raw: raw}
}

// Topics decodes the document on every call.
func (s *JSONSource) Topics(_ context.Context) ([]domain.TopicConfig, error) {
	var topics []domain.TopicConfig
	if err := json.Unmarshal([]byte(s.raw), &topics); err != nil {
		return nil, fmt.Errorf("parse topics JSON: %w", err)
	}
	return topics, nil
}
