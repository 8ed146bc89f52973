package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"ListingRadar/internal/domain"
)

func newTestHarness(fetcher *stubFetcher, extractor *stubExtractor) (*Orchestrator, *memStore, *memMessenger) {
	store := newMemStore()
	messenger := &memMessenger{}
	announcer := NewAnnouncer(messenger, 0, nil)
	pipeline := NewPipeline(PipelineDeps{
		Fetcher:   fetcher,
		Extractor: extractor,
		Ledger:    NewLedger(store, &memSignal{}, nil),
		Announcer: announcer,
	})
	return NewOrchestrator(pipeline, announcer, nil), store, messenger
}

func TestOrchestratorFirstScanAnnouncesEverything(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{"https://example.org/a": "page-a"}}
	extractor := &stubExtractor{records: map[string][]domain.ListingRecord{"page-a": listings("1", "2", "3")}}
	orch, store, messenger := newTestHarness(fetcher, extractor)

	outcomes := orch.Run(context.Background(), []domain.TopicConfig{
		{Topic: "alpha", URL: "https://example.org/a"},
	})

	if len(outcomes) != 1 || outcomes[0].Err != nil || outcomes[0].New != 3 {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
	if !reflect.DeepEqual(idsOf(store.history("alpha")), []string{"1", "2", "3"}) {
		t.Fatalf("unexpected history: %v", idsOf(store.history("alpha")))
	}

	// Scan-start note, summary, three details.
	sent := messenger.sent()
	if len(sent) != 5 {
		t.Fatalf("expected 5 messages, got %d: %v", len(sent), sent)
	}
	if !strings.Contains(sent[1], "Found 3 new alpha listings") {
		t.Fatalf("unexpected summary: %s", sent[1])
	}
}

func TestOrchestratorSecondScanAnnouncesOnlyDelta(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{"https://example.org/a": "page-a"}}
	extractor := &stubExtractor{records: map[string][]domain.ListingRecord{"page-a": listings("2", "3", "4")}}
	orch, store, messenger := newTestHarness(fetcher, extractor)
	store.data["alpha"] = listings("1", "2", "3")

	outcomes := orch.Run(context.Background(), []domain.TopicConfig{
		{Topic: "alpha", URL: "https://example.org/a"},
	})

	if outcomes[0].New != 1 {
		t.Fatalf("expected delta of 1, got %d", outcomes[0].New)
	}
	if !reflect.DeepEqual(idsOf(store.history("alpha")), []string{"1", "2", "3", "4"}) {
		t.Fatalf("unexpected history: %v", idsOf(store.history("alpha")))
	}

	sent := messenger.sent()
	if len(sent) != 3 {
		t.Fatalf("expected start + summary + 1 detail, got %d: %v", len(sent), sent)
	}
	for _, msg := range sent[2:] {
		if strings.Contains(msg, "listing 2") || strings.Contains(msg, "listing 3") {
			t.Fatalf("already-seen listing re-announced: %s", msg)
		}
	}
}

func TestOrchestratorSkipsDisabledTopics(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{}}
	extractor := &stubExtractor{}
	orch, store, messenger := newTestHarness(fetcher, extractor)

	outcomes := orch.Run(context.Background(), []domain.TopicConfig{
		{Topic: "paused", URL: "https://example.org/p", Disabled: true},
	})

	if !outcomes[0].Skipped {
		t.Fatalf("expected skipped outcome, got %+v", outcomes[0])
	}
	if len(fetcher.fetched()) != 0 {
		t.Fatal("disabled topic was fetched")
	}
	if store.saves != 0 {
		t.Fatal("disabled topic touched the ledger")
	}
	if len(messenger.sent()) != 0 {
		t.Fatal("disabled topic produced messages")
	}
}

func TestOrchestratorIsolatesTopicFailures(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.org/a": "captcha-page",
		"https://example.org/b": "page-b",
	}}
	extractor := &stubExtractor{
		records: map[string][]domain.ListingRecord{"page-b": listings("7", "8")},
		errs:    map[string]error{"captcha-page": domain.ErrCaptchaDetected},
	}
	orch, store, messenger := newTestHarness(fetcher, extractor)

	outcomes := orch.Run(context.Background(), []domain.TopicConfig{
		{Topic: "blocked", URL: "https://example.org/a"},
		{Topic: "healthy", URL: "https://example.org/b"},
	})

	if !errors.Is(outcomes[0].Err, domain.ErrCaptchaDetected) {
		t.Fatalf("expected captcha failure for first topic, got %v", outcomes[0].Err)
	}
	if outcomes[1].Err != nil || outcomes[1].New != 2 {
		t.Fatalf("healthy topic affected by neighbor failure: %+v", outcomes[1])
	}
	if !reflect.DeepEqual(idsOf(store.history("healthy")), []string{"7", "8"}) {
		t.Fatalf("unexpected history for healthy topic: %v", idsOf(store.history("healthy")))
	}
	if len(store.history("blocked")) != 0 {
		t.Fatal("failed topic persisted state")
	}

	failures := 0
	for _, msg := range messenger.sent() {
		if strings.Contains(msg, "Scan failed for blocked") {
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one failure message, got %d", failures)
	}
}

func TestOrchestratorRunsTopicsConcurrently(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.org/a": "page-a",
		"https://example.org/b": "page-b",
		"https://example.org/c": "page-c",
	}}
	extractor := &stubExtractor{records: map[string][]domain.ListingRecord{
		"page-a": listings("a1"),
		"page-b": listings("b1"),
		"page-c": listings("c1"),
	}}
	orch, store, _ := newTestHarness(fetcher, extractor)

	outcomes := orch.Run(context.Background(), []domain.TopicConfig{
		{Topic: "a", URL: "https://example.org/a"},
		{Topic: "b", URL: "https://example.org/b"},
		{Topic: "c", URL: "https://example.org/c"},
	})

	for _, out := range outcomes {
		if out.Err != nil || out.New != 1 {
			t.Fatalf("unexpected outcome: %+v", out)
		}
	}
	for _, topic := range []string{"a", "b", "c"} {
		if len(store.history(topic)) != 1 {
			t.Fatalf("topic %s history not isolated: %v", topic, store.history(topic))
		}
	}
}
