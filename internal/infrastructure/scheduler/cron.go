package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"ListingRadar/internal/ports"
)

// CronScheduler drives recurring orchestration passes from a cron
// expression. Overlapping ticks are skipped rather than queued: two
// concurrent passes over the same topic would race on its history partition.
type CronScheduler struct {
	spec string
	loc  *time.Location
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler for the expression in the given
// timezone; a nil location means UTC.
func NewCronScheduler(spec string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, loc: loc}
}

// Start registers the job and begins ticking. Starting twice is a no-op.
func (c *CronScheduler) Start(_ context.Context, job func(time.Time)) error {
	if job == nil || c.cron != nil {
		return nil
	}

	runner := cron.New(
		cron.WithLocation(c.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := runner.AddFunc(c.spec, func() { job(time.Now().In(c.loc)) }); err != nil {
		return fmt.Errorf("register cron %q: %w", c.spec, err)
	}

	runner.Start()
	c.cron = runner
	return nil
}

// Stop halts ticking and waits for an in-flight pass to drain, bounded by
// the caller's context.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.cron == nil {
		return nil
	}

	drained := c.cron.Stop()
	c.cron = nil

	select {
	case <-drained.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
