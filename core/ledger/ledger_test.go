package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"import-planner/core/types"
	"import-planner/internal/errors"
)

func newTestLedger() *Ledger {
	return New(NewMemoryStore())
}

func TestRecordIdempotent(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()
	fetched := time.Now()

	first, err := l.Record(ctx, "netbird_group.eng", "grp-1", fetched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.Record(ctx, "netbird_group.eng", "grp-1", fetched.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("idempotent record returned a new binding: %s vs %s", first.ID, second.ID)
	}

	history, err := l.History(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1 (no duplicate entries)", len(history))
	}
}

func TestRecordConflict(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	original, err := l.Record(ctx, "netbird_group.eng", "grp-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = l.Record(ctx, "netbird_group.eng", "grp-2", time.Now())
	if err == nil {
		t.Fatal("expected conflict for different external id")
	}
	if !errors.IsType(err, errors.TypeDuplicateAddress) {
		t.Fatalf("error type = %v, want DUPLICATE_ADDRESS", err)
	}

	// both ids must be reported so the operator can decide
	var derr *errors.Error
	if !asError(err, &derr) {
		t.Fatalf("error is not a domain error: %v", err)
	}
	if derr.Context["existing_id"] != "grp-1" || derr.Context["requested_id"] != "grp-2" {
		t.Errorf("conflict context = %v", derr.Context)
	}

	// original binding intact
	current, err := l.Current(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current == nil || current.ID != original.ID || current.ExternalID != "grp-1" {
		t.Errorf("original binding disturbed: %+v", current)
	}
}

func TestUnbindAndRebind(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	first, err := l.Record(ctx, "netbird_group.eng", "grp-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Unbind(ctx, "netbird_group.eng"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current, err := l.Current(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current != nil {
		t.Errorf("address still bound after unbind: %+v", current)
	}

	// rebinding to a different id is allowed after unbind
	second, err := l.Record(ctx, "netbird_group.eng", "grp-2", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Error("rebind reused the retired binding id")
	}

	history, err := l.History(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].State != types.BindingRetired || history[0].RetiredAt == nil {
		t.Errorf("first generation = %+v, want retired with timestamp", history[0])
	}
	if history[1].State != types.BindingBound {
		t.Errorf("second generation = %+v, want bound", history[1])
	}
}

func TestUnbindUnboundAddress(t *testing.T) {
	l := newTestLedger()
	err := l.Unbind(context.Background(), "netbird_group.nothing")
	if !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestConcurrentRecordSameAddress(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	const n = 50
	var wg sync.WaitGroup
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Record(ctx, "netbird_group.eng", "grp-1", time.Now())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d failed: %v", i, err)
		}
	}

	history, err := l.History(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want exactly 1 (no lost updates)", len(history))
	}
}

func TestConcurrentRecordConflictingIDs(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger()

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			id := types.ExternalID("grp-1")
			if i%2 == 1 {
				id = "grp-2"
			}
			_, errs[i] = l.Record(ctx, "netbird_group.eng", id, time.Now())
		}(i)
	}
	wg.Wait()

	// exactly one id won; every loser failed with DUPLICATE_ADDRESS
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.IsType(err, errors.TypeDuplicateAddress) {
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if succeeded == 0 {
		t.Error("no request succeeded")
	}

	history, err := l.History(ctx, "netbird_group.eng")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want exactly 1 binding recorded", len(history))
	}
}

func asError(err error, target **errors.Error) bool {
	e, ok := err.(*errors.Error)
	if ok {
		*target = e
	}
	return ok
}
