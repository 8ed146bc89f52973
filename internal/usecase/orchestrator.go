package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"ListingRadar/internal/domain"
)

// Orchestrator fans one pass out over all configured topics. Topics run
// concurrently and fully isolated: each owns its own history partition, so
// one topic's failure never touches another's run or persisted state.
type Orchestrator struct {
	pipeline  *Pipeline
	announcer *Announcer
	logger    *slog.Logger
}

// NewOrchestrator wires the per-topic pipeline and the failure channel.
func NewOrchestrator(pipeline *Pipeline, announcer *Announcer, log *slog.Logger) *Orchestrator {
	return &Orchestrator{pipeline: pipeline, announcer: announcer, logger: log}
}

// Run scans every enabled topic concurrently and reports one outcome per
// topic, in input order. Disabled topics are reported skipped without any
// fetch, history access, or notification. A failed topic yields exactly one
// failure message naming the topic, its URL, and the cause.
func (o *Orchestrator) Run(ctx context.Context, topics []domain.TopicConfig) []domain.TopicOutcome {
	runID := uuid.NewString()
	log := o.logger
	if log != nil {
		log = log.With("run_id", runID)
		log.Info("orchestration pass starting", "topics", len(topics))
	}

	outcomes := make([]domain.TopicOutcome, len(topics))
	var wg sync.WaitGroup
	for i, topic := range topics {
		if topic.Disabled {
			if log != nil {
				log.Info("topic disabled, skipping", "topic", topic.Topic)
			}
			outcomes[i] = domain.TopicOutcome{Topic: topic.Topic, URL: topic.URL, Skipped: true}
			continue
		}

		wg.Add(1)
		go func(i int, topic domain.TopicConfig) {
			defer wg.Done()

			delta, err := o.pipeline.ScanTopic(ctx, topic)
			if err != nil {
				if log != nil {
					log.Error("topic scan failed", "topic", topic.Topic, "error", err)
				}
				if o.announcer != nil {
					o.announcer.Failure(ctx, topic.Topic, topic.URL, err)
				}
			}
			outcomes[i] = domain.TopicOutcome{Topic: topic.Topic, URL: topic.URL, New: len(delta), Err: err}
		}(i, topic)
	}
	wg.Wait()

	if log != nil {
		log.Info("orchestration pass finished", "topics", len(topics), "failed", countFailed(outcomes))
	}
	return outcomes
}
