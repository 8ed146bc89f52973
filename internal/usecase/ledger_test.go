package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"ListingRadar/internal/domain"
)

func TestLedgerFirstUseTreatsAllAsNew(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	signal := &memSignal{}
	ledger := NewLedger(store, signal, nil)

	delta, err := ledger.Reconcile(ctx, "alpha", listings("1", "2", "3"))
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if !reflect.DeepEqual(idsOf(delta), []string{"1", "2", "3"}) {
		t.Fatalf("unexpected delta: %v", idsOf(delta))
	}
	if !reflect.DeepEqual(idsOf(store.history("alpha")), []string{"1", "2", "3"}) {
		t.Fatalf("unexpected history: %v", idsOf(store.history("alpha")))
	}
	if signal.count() != 1 {
		t.Fatalf("expected 1 change signal, got %d", signal.count())
	}
}

func TestLedgerReportsOnlyUnseenIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	store.data["alpha"] = listings("1", "2", "3")
	ledger := NewLedger(store, &memSignal{}, nil)

	delta, err := ledger.Reconcile(ctx, "alpha", listings("2", "3", "4"))
	if err != nil {
		t.Fatalf("Reconcile error: %v", err)
	}
	if !reflect.DeepEqual(idsOf(delta), []string{"4"}) {
		t.Fatalf("unexpected delta: %v", idsOf(delta))
	}
	if !reflect.DeepEqual(idsOf(store.history("alpha")), []string{"1", "2", "3", "4"}) {
		t.Fatalf("history lost discovery order: %v", idsOf(store.history("alpha")))
	}
}

func TestLedgerReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	signal := &memSignal{}
	ledger := NewLedger(store, signal, nil)

	fresh := listings("1", "2", "3")
	if _, err := ledger.Reconcile(ctx, "alpha", fresh); err != nil {
		t.Fatalf("first Reconcile error: %v", err)
	}
	savesAfterFirst := store.saves

	delta, err := ledger.Reconcile(ctx, "alpha", fresh)
	if err != nil {
		t.Fatalf("second Reconcile error: %v", err)
	}
	if len(delta) != 0 {
		t.Fatalf("expected empty delta, got %v", idsOf(delta))
	}
	if store.saves != savesAfterFirst {
		t.Fatal("history rewritten despite no change")
	}
	if signal.count() != 1 {
		t.Fatalf("signal raised again without a delta: %d", signal.count())
	}
}

func TestLedgerHistoryIsMonotoneAndIDUnique(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newMemStore()
	ledger := NewLedger(store, &memSignal{}, nil)

	// Fresh sets drop and re-add ids across passes; the history only grows.
	passes := [][]string{{"1", "2"}, {"2", "3"}, {"1", "3", "3", "4"}}
	for _, ids := range passes {
		if _, err := ledger.Reconcile(ctx, "alpha", listings(ids...)); err != nil {
			t.Fatalf("Reconcile error: %v", err)
		}
	}

	history := idsOf(store.history("alpha"))
	if !reflect.DeepEqual(history, []string{"1", "2", "3", "4"}) {
		t.Fatalf("unexpected history: %v", history)
	}
}

func TestLedgerCorruptHistoryAborts(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.loadErr = fmt.Errorf("%w: parse data/alpha.json", domain.ErrLedgerCorrupt)
	ledger := NewLedger(store, &memSignal{}, nil)

	_, err := ledger.Reconcile(context.Background(), "alpha", listings("1"))
	if !errors.Is(err, domain.ErrLedgerCorrupt) {
		t.Fatalf("expected ErrLedgerCorrupt, got %v", err)
	}
	if store.saves != 0 {
		t.Fatal("history written despite corrupt prior state")
	}
}
