package batch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
)

// Outcome summarizes one Run call. Attempted always equals the input
// length, so callers can tell an empty input (Attempted == 0) apart
// from a batch where every item failed (Attempted > 0, Succeeded == 0).
type Outcome struct {
	Attempted int
	Succeeded int
	Failed    int
}

// Run processes every item with at most concurrency workers in flight.
// Each item is attempted exactly once; a failed item never stops the
// rest of the batch. Item errors are reported to onErr (if non-nil) and
// counted, not returned: Run only fails when the worker pool itself
// cannot be built.
func Run[T any](ctx context.Context, items []T, concurrency int, work func(ctx context.Context, item T) error, onErr func(item T, err error)) (Outcome, error) {
	outcome := Outcome{Attempted: len(items)}
	if len(items) == 0 {
		return outcome, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return Outcome{}, err
	}
	defer pool.Release()

	var succeeded, failed atomic.Int32
	var wg sync.WaitGroup

	for i := range items {
		item := items[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := work(ctx, item); err != nil {
				failed.Add(1)
				if onErr != nil {
					onErr(item, err)
				}
				return
			}
			succeeded.Add(1)
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			if onErr != nil {
				onErr(item, submitErr)
			}
		}
	}

	wg.Wait()

	outcome.Succeeded = int(succeeded.Load())
	outcome.Failed = int(failed.Load())
	return outcome, nil
}
