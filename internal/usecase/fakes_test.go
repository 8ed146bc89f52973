package usecase

import (
	"context"
	"fmt"
	"sync"

	"ListingRadar/internal/domain"
)

// memStore is an in-memory LedgerStore shared by the usecase tests.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]domain.ListingRecord
	loadErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]domain.ListingRecord{}}
}

func (s *memStore) Load(_ context.Context, topic string) ([]domain.ListingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	records := s.data[topic]
	out := make([]domain.ListingRecord, len(records))
	copy(out, records)
	return out, nil
}

func (s *memStore) Save(_ context.Context, topic string, records []domain.ListingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]domain.ListingRecord, len(records))
	copy(stored, records)
	s.data[topic] = stored
	s.saves++
	return nil
}

func (s *memStore) history(topic string) []domain.ListingRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[topic]
}

type memSignal struct {
	mu     sync.Mutex
	raised int
}

func (s *memSignal) Raise(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raised++
	return nil
}

func (s *memSignal) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raised
}

// memMessenger records every message sent during a scan.
type memMessenger struct {
	mu       sync.Mutex
	messages []string
	sendErr  error
}

func (m *memMessenger) SendText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages, text)
	return nil
}

func (m *memMessenger) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.messages))
	copy(out, m.messages)
	return out
}

// stubFetcher serves canned pages per URL and counts its calls.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *stubFetcher) Fetch(_ context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageURL)
	f.mu.Unlock()
	page, ok := f.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("fetch %s: no canned page", pageURL)
	}
	return page, nil
}

func (f *stubFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// stubExtractor maps page text to extraction results.
type stubExtractor struct {
	records map[string][]domain.ListingRecord
	errs    map[string]error
}

func (e *stubExtractor) Extract(html string) ([]domain.ListingRecord, error) {
	if err, ok := e.errs[html]; ok {
		return nil, err
	}
	return e.records[html], nil
}

func listings(ids ...string) []domain.ListingRecord {
	out := make([]domain.ListingRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.ListingRecord{
			ID:    id,
			Title: "listing " + id,
			Link:  "https://www.yad2.co.il/vehicles/item/" + id,
		})
	}
	return out
}

func idsOf(records []domain.ListingRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}
