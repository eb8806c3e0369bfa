package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_DeduplicatesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	sharedCount := atomic.Int32{}

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, shared := flight.Do("key", func() (any, error) {
				executions.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 42, nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if got, _ := val.(int); got != 42 {
				t.Errorf("unexpected value: %v", val)
			}
			if shared {
				sharedCount.Add(1)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("fn executed %d times, want 1", got)
	}
	if got := sharedCount.Load(); got != workers-1 {
		t.Fatalf("shared reported for %d callers, want %d", got, workers-1)
	}
}

func TestSingleFlight_PropagatesError(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	wantErr := errors.New("load failed")

	_, err, _ := flight.Do("key", func() (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSingleFlight_KeyIsReusableAfterCompletion(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32

	for i := 0; i < 3; i++ {
		_, err, _ := flight.Do("key", func() (any, error) {
			executions.Add(1)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := executions.Load(); got != 3 {
		t.Fatalf("fn executed %d times, want 3", got)
	}
}
