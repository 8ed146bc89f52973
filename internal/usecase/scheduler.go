package usecase

import (
	"context"
	"log/slog"
	"time"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

// Scheduler wires the cron-like driver with the orchestrator so each tick
// runs one full pass over the current topic set.
type Scheduler struct {
	driver       ports.Scheduler
	orchestrator *Orchestrator
	topics       ports.TopicSource
	logger       *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring passes.
func NewScheduler(driver ports.Scheduler, orch *Orchestrator, topics ports.TopicSource, log *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, orchestrator: orch, topics: topics, logger: log}
}

// Start registers the orchestration pass with the driver. The topic set is
// re-read on every tick so administration edits apply between runs.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.orchestrator == nil {
		return nil
	}

	job := func(trigger time.Time) {
		topics, err := s.topics.Topics(ctx)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("topic set not loaded, pass skipped", "error", err)
			}
			return
		}
		outcomes := s.orchestrator.Run(ctx, topics)
		if s.logger != nil {
			s.logger.Info("scheduled pass complete",
				"trigger", trigger.Format(time.RFC3339),
				"failed", countFailed(outcomes))
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}

func countFailed(outcomes []domain.TopicOutcome) int {
	failed := 0
	for _, out := range outcomes {
		if out.Failed() {
			failed++
		}
	}
	return failed
}
