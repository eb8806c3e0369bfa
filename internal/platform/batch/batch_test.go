package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_ProcessesEveryItemOnce(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	var mu sync.Mutex
	seen := make(map[int]int)

	outcome, err := Run(context.Background(), items, 3, func(_ context.Context, item int) error {
		mu.Lock()
		seen[item]++
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if outcome.Attempted != 10 || outcome.Succeeded != 10 || outcome.Failed != 0 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	for _, item := range items {
		if seen[item] != 1 {
			t.Fatalf("item %d processed %d times", item, seen[item])
		}
	}
}

func TestRun_BoundsInFlightWorkers(t *testing.T) {
	t.Parallel()

	const concurrency = 3
	var inFlight, peak atomic.Int32

	items := make([]int, 12)
	_, err := Run(context.Background(), items, concurrency, func(_ context.Context, _ int) error {
		cur := inFlight.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if got := peak.Load(); got > concurrency {
		t.Fatalf("observed %d workers in flight, cap is %d", got, concurrency)
	}
}

func TestRun_IsolatesItemFailures(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4, 5}
	wantErr := errors.New("item blew up")
	var failedItems atomic.Int32

	outcome, err := Run(context.Background(), items, 2, func(_ context.Context, item int) error {
		if item%2 == 0 {
			return wantErr
		}
		return nil
	}, func(_ int, err error) {
		if errors.Is(err, wantErr) {
			failedItems.Add(1)
		}
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if outcome.Attempted != 5 || outcome.Succeeded != 3 || outcome.Failed != 2 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if got := failedItems.Load(); got != 2 {
		t.Fatalf("onErr called %d times, want 2", got)
	}
}

func TestRun_EmptyInputIsDistinctFromAllFailed(t *testing.T) {
	t.Parallel()

	outcome, err := Run(context.Background(), nil, 3, func(_ context.Context, _ int) error {
		t.Fatal("work should not run for empty input")
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if outcome.Attempted != 0 {
		t.Fatalf("unexpected outcome for empty input: %+v", outcome)
	}
}
