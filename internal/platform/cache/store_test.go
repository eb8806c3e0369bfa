package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_SetThenGetReturnsValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	store.Set(context.Background(), "k", "v")

	got, ok := store.Get(context.Background(), "k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "v" {
		t.Fatalf("unexpected value: %v", got)
	}
}

func TestStore_ExpiredEntryIsEvictedOnRead(t *testing.T) {
	t.Parallel()

	current := time.Now()
	store := NewStoreWithClock(5*time.Minute, func() time.Time { return current })

	store.Set(context.Background(), "k", "v")
	current = current.Add(5*time.Minute + time.Second)

	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatal("expected stale entry to miss")
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("expected stale entry removed, size=%d", got)
	}
}

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	wantErr := errors.New("upstream down")

	if _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) {
		return nil, wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("expected loader error, got %v", err)
	}

	if got := store.Len(); got != 0 {
		t.Fatalf("failed load should not be cached, size=%d", got)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
