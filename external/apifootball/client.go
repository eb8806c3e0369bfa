package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/quangdvn/footyodds/internal/platform/logging"
	"github.com/quangdvn/footyodds/internal/platform/metrics"
	"github.com/quangdvn/footyodds/internal/platform/resilience"
	"github.com/quangdvn/footyodds/internal/usecase"
)

const (
	defaultBaseURL    = "https://v3.football.api-sports.io"
	apiKeyHeader      = "x-apisports-key"
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3

	// One extra beat on top of whatever reset window the provider
	// reports, so we never wake up a hair before the quota refills.
	rateLimitWaitPad = 200 * time.Millisecond
	maxRateLimitWait = 30 * time.Second
	retryBackoffBase = 300 * time.Millisecond
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

// rateLimitError marks a 429 that survived the whole retry budget and
// carries the wait the provider asked for, so the circuit breaker can
// hold off until the quota refills.
type rateLimitError struct {
	resetIn time.Duration
	err     error
}

func (e *rateLimitError) Error() string { return e.err.Error() }
func (e *rateLimitError) Unwrap() error { return e.err }

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	Metrics        *metrics.Metrics
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	metrics        *metrics.Metrics
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight

	// sleep is swapped out in tests so retry paths run instantly.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	if cfg.MaxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     maxRetries,
		logger:         logger,
		metrics:        cfg.Metrics,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		sleep:          sleepContext,
		now:            time.Now,
	}
}

// FetchFixturesByDate lists fixtures for one calendar day. Timezone and
// league are optional filters passed straight through to the provider.
func (c *Client) FetchFixturesByDate(ctx context.Context, date, timezone, league string) ([]map[string]any, error) {
	if strings.TrimSpace(date) == "" {
		return nil, fmt.Errorf("%w: date is required", usecase.ErrInvalidInput)
	}

	query := map[string]string{"date": date}
	if strings.TrimSpace(timezone) != "" {
		query["timezone"] = timezone
	}
	if strings.TrimSpace(league) != "" {
		query["league"] = league
	}

	env, err := c.doJSON(ctx, "/fixtures", query)
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures date=%s: %w", date, err)
	}
	return env.Response, nil
}

// FetchOddsPage fetches one page of the date-wide odds listing.
func (c *Client) FetchOddsPage(ctx context.Context, date string, page int) (usecase.ExternalOddsPage, error) {
	if strings.TrimSpace(date) == "" {
		return usecase.ExternalOddsPage{}, fmt.Errorf("%w: date is required", usecase.ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}

	query := map[string]string{
		"date": date,
		"page": strconv.Itoa(page),
	}
	env, err := c.doJSON(ctx, "/odds", query)
	if err != nil {
		return usecase.ExternalOddsPage{}, fmt.Errorf("fetch odds date=%s page=%d: %w", date, page, err)
	}
	if c.metrics != nil {
		c.metrics.OddsPagesFetched.Inc()
	}
	return usecase.ExternalOddsPage{Records: env.Response, Paging: env.Paging.toExternal()}, nil
}

// FetchOddsByFixture fetches odds for a single fixture. Used as the
// fallback path when the date-wide listing misses a fixture.
func (c *Client) FetchOddsByFixture(ctx context.Context, fixtureID int64) ([]map[string]any, error) {
	if fixtureID <= 0 {
		return nil, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{"fixture": strconv.FormatInt(fixtureID, 10)}
	env, err := c.doJSON(ctx, "/odds", query)
	if err != nil {
		return nil, fmt.Errorf("fetch odds fixture=%d: %w", fixtureID, err)
	}
	return env.Response, nil
}

// FetchRecentFixturesByTeam lists a team's last finished fixtures,
// used by the prediction heuristic.
func (c *Client) FetchRecentFixturesByTeam(ctx context.Context, teamID int64, last int) ([]map[string]any, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}
	if last < 1 {
		last = 5
	}

	query := map[string]string{
		"team": strconv.FormatInt(teamID, 10),
		"last": strconv.Itoa(last),
	}
	env, err := c.doJSON(ctx, "/fixtures", query)
	if err != nil {
		return nil, fmt.Errorf("fetch recent fixtures team=%d: %w", teamID, err)
	}
	return env.Response, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string) (envelope, error) {
	if c.apiKey == "" {
		return envelope{}, fmt.Errorf("%w: API_FOOTBALL_KEY is not set", usecase.ErrMissingCredentials)
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
			return envelope{}, fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, path, fullURL)
		if c.circuitEnabled {
			var rateLimited *rateLimitError
			switch {
			case stderrors.As(reqErr, &rateLimited):
				c.breaker.RecordRateLimit(rateLimited.resetIn)
			case reqErr != nil && isTransientFailure(reqErr):
				c.breaker.RecordFailure()
			default:
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return envelope{}, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return envelope{}, fmt.Errorf("unexpected response payload type %T", out)
	}

	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("decode provider payload: %w", err)
	}
	if msg := flattenAPIErrors(env.Errors); msg != "" {
		return envelope{}, fmt.Errorf("provider rejected request: %s", msg)
	}

	return env, nil
}

func (c *Client) executeRequest(ctx context.Context, path, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if c.metrics != nil {
				c.metrics.UpstreamRetries.Inc()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		wait := time.Duration(0)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errAPIFootballTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
			wait = retryBackoffBase << attempt
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, readErr)
				wait = retryBackoffBase << attempt
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				c.countRequest(path, "ok")
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				wait = c.rateLimitWait(resp.Header, attempt)
				lastErr = &rateLimitError{
					resetIn: wait,
					err:     fmt.Errorf("%w: provider status=429 body=%s", errAPIFootballTransient, abbreviateBody(raw)),
				}
				c.logger.WarnContext(ctx, "api-football rate limited",
					"path", path,
					"attempt", attempt,
					"wait", wait.String(),
				)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errAPIFootballTransient, resp.StatusCode, abbreviateBody(raw))
				wait = retryBackoffBase << attempt
			default:
				c.countRequest(path, "error")
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.countRequest(path, "error")
	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// rateLimitWait picks how long to back off after a 429. Preference
// order: the provider's Retry-After header, then the seconds until the
// advertised quota reset, then a linearly growing guess.
func (c *Client) rateLimitWait(header http.Header, attempt int) time.Duration {
	wait := time.Duration(0)

	if v := strings.TrimSpace(header.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if wait <= 0 {
		if v := strings.TrimSpace(header.Get("X-RateLimit-Reset")); v != "" {
			if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
				if until := time.Unix(epoch, 0).Sub(c.now()); until > 0 {
					wait = until
				}
			}
		}
	}
	if wait <= 0 {
		wait = time.Duration(2+attempt*2) * time.Second
	}
	if wait > maxRateLimitWait {
		wait = maxRateLimitWait
	}
	return wait + rateLimitWaitPad
}

func (c *Client) countRequest(path, result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamRequests.WithLabelValues(path, result).Inc()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func sanitizeSensitiveText(value, key string) string {
	value = strings.TrimSpace(value)
	if value == "" || key == "" {
		return value
	}
	return strings.ReplaceAll(value, key, "REDACTED")
}

func isTransientFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errAPIFootballTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// flattenAPIErrors renders the provider's errors block, which is an
// empty array on success and an object (or array of strings) on
// failure.
func flattenAPIErrors(errs any) string {
	switch v := errs.(type) {
	case nil:
		return ""
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		parts := make([]string, 0, len(v))
		for field, msg := range v {
			parts = append(parts, fmt.Sprintf("%s: %v", field, msg))
		}
		return strings.Join(parts, "; ")
	case []any:
		if len(v) == 0 {
			return ""
		}
		parts := make([]string, 0, len(v))
		for _, msg := range v {
			parts = append(parts, fmt.Sprintf("%v", msg))
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
