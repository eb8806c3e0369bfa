package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(3, time.Minute, 1)

	for i := 0; i < 3; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("allow before threshold failed: %v", err)
		}
		b.RecordFailure()
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("unexpected state: %s", got)
	}
}

func TestCircuitBreaker_HalfOpenClosesAfterSuccesses(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, time.Second, 2)
	current := time.Now()
	b.now = func() time.Time { return current }

	b.RecordFailure()
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("expected open state, got %s", got)
	}

	current = current.Add(2 * time.Second)
	for i := 0; i < 2; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("half-open allow %d failed: %v", i, err)
		}
		b.RecordSuccess()
	}

	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed state, got %s", got)
	}
}

func TestCircuitBreaker_RateLimitTripHoldsUntilQuotaReset(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(5, 10*time.Second, 1)
	current := time.Now()
	b.now = func() time.Time { return current }

	// A single quota trip opens the circuit without reaching the
	// failure threshold and holds past the normal open timeout.
	b.RecordRateLimit(40 * time.Second)
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen right after quota trip, got %v", err)
	}

	current = current.Add(20 * time.Second)
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit still open inside reset window, got %v", err)
	}

	current = current.Add(25 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open admission after reset window, got %v", err)
	}
}

func TestCircuitBreaker_RateLimitShorterThanTimeoutKeepsTimeout(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(5, 30*time.Second, 1)
	current := time.Now()
	b.now = func() time.Time { return current }

	b.RecordRateLimit(time.Second)

	current = current.Add(10 * time.Second)
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open timeout to still apply, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(1, time.Second, 1)
	current := time.Now()
	b.now = func() time.Time { return current }

	b.RecordFailure()
	current = current.Add(2 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("half-open allow failed: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen after half-open failure, got %v", err)
	}
}
