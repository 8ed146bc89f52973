package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

// PipelineDeps wires all driven adapters into the single-topic pipeline.
type PipelineDeps struct {
	Fetcher   ports.Fetcher
	Extractor ports.Extractor
	Ledger    *Ledger
	Announcer *Announcer
	// PrefetchDelay is slept before the fetch to stay inside the source
	// site's implicit rate tolerance.
	PrefetchDelay time.Duration
	Logger        *slog.Logger
}

// Pipeline runs one topic through fetch, extract, reconcile, and notify.
// The four stages are strictly sequential; history is persisted only after
// extraction succeeded, so a failed run never corrupts prior state.
type Pipeline struct {
	fetcher       ports.Fetcher
	extractor     ports.Extractor
	ledger        *Ledger
	announcer     *Announcer
	prefetchDelay time.Duration
	logger        *slog.Logger
}

// NewPipeline constructs the per-topic workflow.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher:       deps.Fetcher,
		extractor:     deps.Extractor,
		ledger:        deps.Ledger,
		announcer:     deps.Announcer,
		prefetchDelay: deps.PrefetchDelay,
		logger:        deps.Logger,
	}
}

// ScanTopic executes one full scan for the topic and returns the newly
// observed delta. Any stage error aborts this topic's run; the next
// scheduled pass is the retry mechanism.
func (p *Pipeline) ScanTopic(ctx context.Context, topic domain.TopicConfig) ([]domain.ListingRecord, error) {
	p.info("starting scan", "topic", topic.Topic, "url", topic.URL)
	if p.announcer != nil {
		p.announcer.ScanStarted(ctx, topic.Topic)
	}

	if p.prefetchDelay > 0 {
		select {
		case <-time.After(p.prefetchDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	html, err := p.fetcher.Fetch(ctx, topic.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch topic %q: %w", topic.Topic, err)
	}

	records, err := p.extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("extract topic %q: %w", topic.Topic, err)
	}

	delta, err := p.ledger.Reconcile(ctx, topic.Topic, records)
	if err != nil {
		return nil, fmt.Errorf("reconcile topic %q: %w", topic.Topic, err)
	}

	p.info("scan finished", "topic", topic.Topic, "seen", len(records), "new", len(delta))
	if p.announcer != nil {
		p.announcer.Results(ctx, topic.Topic, topic.URL, len(records), delta)
	}
	return delta, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
