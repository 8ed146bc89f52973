package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ListingRadar/internal/domain"
	"ListingRadar/internal/ports"
)

// Ledger computes the newly observed delta of a fresh extraction against a
// topic's persisted history and appends it. Identity is the listing id
// alone; the other fields are informational and never affect membership.
type Ledger struct {
	store  ports.LedgerStore
	signal ports.ChangeSignal
	logger *slog.Logger
}

// NewLedger wires the persistence backend and the change-pending signal.
func NewLedger(store ports.LedgerStore, signal ports.ChangeSignal, log *slog.Logger) *Ledger {
	return &Ledger{store: store, signal: signal, logger: log}
}

// Reconcile returns the records whose ids are not yet in the topic's history
// and persists the grown history (previous set plus the delta, in
// first-observed order). The persisted set only ever grows and never holds
// two entries with the same id. A non-empty delta also raises the
// change-pending signal; signal failure is logged, not fatal, since the
// history itself is already durable.
func (l *Ledger) Reconcile(ctx context.Context, topic string, fresh []domain.ListingRecord) ([]domain.ListingRecord, error) {
	saved, err := l.store.Load(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("load history for %q: %w", topic, err)
	}

	seen := make(map[string]struct{}, len(saved))
	for _, rec := range saved {
		seen[rec.ID] = struct{}{}
	}

	all := saved
	var delta []domain.ListingRecord
	for _, rec := range fresh {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		all = append(all, rec)
		delta = append(delta, rec)
	}

	if len(delta) == 0 {
		return nil, nil
	}

	if err := l.store.Save(ctx, topic, all); err != nil {
		return nil, fmt.Errorf("persist history for %q: %w", topic, err)
	}

	if l.signal != nil {
		if err := l.signal.Raise(ctx); err != nil && l.logger != nil {
			l.logger.Warn("change signal not raised", "topic", topic, "error", err)
		}
	}

	if l.logger != nil {
		l.logger.Info("history grew", "topic", topic, "new", len(delta), "total", len(all))
	}
	return delta, nil
}
