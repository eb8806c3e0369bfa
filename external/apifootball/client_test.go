package apifootball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quangdvn/footyodds/internal/platform/resilience"
	"github.com/quangdvn/footyodds/internal/usecase"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client := NewClient(ClientConfig{
		BaseURL:    serverURL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: 3,
	})
	client.sleep = func(context.Context, time.Duration) error { return nil }
	return client
}

func TestClient_FetchFixturesByDate_SendsKeyHeaderAndParams(t *testing.T) {
	t.Parallel()

	var gotKey, gotDate, gotTZ, gotLeague atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("x-apisports-key"))
		gotDate.Store(r.URL.Query().Get("date"))
		gotTZ.Store(r.URL.Query().Get("timezone"))
		gotLeague.Store(r.URL.Query().Get("league"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errors":[],"results":1,"paging":{"current":1,"total":1},"response":[{"fixture":{"id":101}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	fixtures, err := client.FetchFixturesByDate(context.Background(), "2026-08-29", "Asia/Ho_Chi_Minh", "39")
	if err != nil {
		t.Fatalf("fetch fixtures failed: %v", err)
	}

	if len(fixtures) != 1 {
		t.Fatalf("expected 1 fixture, got %d", len(fixtures))
	}
	if gotKey.Load() != "test-key" {
		t.Fatalf("unexpected api key header: %v", gotKey.Load())
	}
	if gotDate.Load() != "2026-08-29" || gotTZ.Load() != "Asia/Ho_Chi_Minh" || gotLeague.Load() != "39" {
		t.Fatalf("unexpected query params: date=%v tz=%v league=%v", gotDate.Load(), gotTZ.Load(), gotLeague.Load())
	}
}

func TestClient_FetchOddsPage_RetriesAfterRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"rate limit"}`))
			return
		}
		_, _ = w.Write([]byte(`{"errors":[],"results":1,"paging":{"current":2,"total":5},"response":[{"fixture":{"id":7}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	var waits []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	page, err := client.FetchOddsPage(context.Background(), "2026-08-29", 2)
	if err != nil {
		t.Fatalf("fetch odds page failed: %v", err)
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", got)
	}
	if len(page.Records) != 1 || page.Paging.Current != 2 || page.Paging.Total != 5 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if len(waits) != 1 || waits[0] != time.Second+rateLimitWaitPad {
		t.Fatalf("unexpected rate-limit waits: %v", waits)
	}
}

func TestClient_RateLimitWait_FallbackChain(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{APIKey: "k"})
	fixed := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	header := http.Header{}
	header.Set("Retry-After", "3")
	if got := client.rateLimitWait(header, 0); got != 3*time.Second+rateLimitWaitPad {
		t.Fatalf("retry-after wait = %v", got)
	}

	header = http.Header{}
	header.Set("X-RateLimit-Reset", "1788004805") // fixed + 5s
	if got := client.rateLimitWait(header, 0); got != 5*time.Second+rateLimitWaitPad {
		t.Fatalf("reset-epoch wait = %v", got)
	}

	if got := client.rateLimitWait(http.Header{}, 2); got != 6*time.Second+rateLimitWaitPad {
		t.Fatalf("fallback wait = %v", got)
	}
}

func TestClient_RateLimitExhaustionTripsCircuitBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"rate limit"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		MaxRetries: 1,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			OpenTimeout:      15 * time.Second,
			HalfOpenMaxReq:   1,
		},
	})
	client.sleep = func(context.Context, time.Duration) error { return nil }

	if _, err := client.FetchOddsPage(context.Background(), "2026-08-29", 1); err == nil {
		t.Fatal("expected error after exhausting the retry budget on 429s")
	}
	callsAfterFirst := calls.Load()

	// One exhausted quota opens the circuit outright, well below the
	// consecutive-failure threshold.
	_, err := client.FetchOddsPage(context.Background(), "2026-08-29", 1)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from open circuit, got %v", err)
	}
	if got := calls.Load(); got != callsAfterFirst {
		t.Fatalf("open circuit still reached upstream: %d calls", got)
	}
}

func TestClient_NonRetryableStatusFailsWithoutRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.FetchOddsByFixture(context.Background(), 42); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected no retries on 404, got %d calls", got)
	}
}

func TestClient_ServerErrorsExhaustRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.FetchOddsPage(context.Background(), "2026-08-29", 1); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 4 {
		t.Fatalf("expected initial attempt plus 3 retries, got %d calls", got)
	}
}

func TestClient_ProviderErrorsBlockFailsRequest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":{"token":"Error/Missing application key."},"results":0,"response":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.FetchFixturesByDate(context.Background(), "2026-08-29", "", ""); err == nil {
		t.Fatal("expected error for provider errors block")
	}
}

func TestClient_MissingKeyFailsBeforeRequest(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:0"})
	_, err := client.FetchOddsPage(context.Background(), "2026-08-29", 1)
	if !errors.Is(err, usecase.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestClient_InvalidInputValidation(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{APIKey: "k"})

	if _, err := client.FetchFixturesByDate(context.Background(), "", "", ""); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty date, got %v", err)
	}
	if _, err := client.FetchOddsByFixture(context.Background(), 0); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero fixture id, got %v", err)
	}
}
