package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quangdvn/footyodds/internal/domain/fixture"
	"github.com/quangdvn/footyodds/internal/domain/odds"
	"github.com/quangdvn/footyodds/internal/platform/batch"
	"github.com/quangdvn/footyodds/internal/platform/cache"
	"github.com/quangdvn/footyodds/internal/platform/logging"
	"github.com/quangdvn/footyodds/internal/platform/metrics"
)

const (
	// The provider paginates the date-wide odds listing; the ceiling
	// caps a runaway pagination loop no matter what MaxPages says.
	hardPageCeiling = 200

	defaultMaxPages         = 100
	defaultExpectedPageSize = 10
	defaultMaxFixtures      = 150
	defaultFallbackLimit    = 150
	defaultConcurrency      = 3
	defaultCacheTTL         = 5 * time.Minute

	fallbackConcurrencyCap = 6

	sampleFixtures   = 6
	sampleBookmakers = 2
	sampleBets       = 2
	sampleValues     = 4
)

type OddsMergeConfig struct {
	MaxPages         int
	ExpectedPageSize int
	MaxFixtures      int
	FallbackLimit    int
	Concurrency      int
	PriorityLeagues  []string
}

func NormalizeOddsMergeConfig(cfg OddsMergeConfig) OddsMergeConfig {
	if cfg.MaxPages < 1 {
		cfg.MaxPages = defaultMaxPages
	}
	if cfg.ExpectedPageSize < 1 {
		cfg.ExpectedPageSize = defaultExpectedPageSize
	}
	if cfg.MaxFixtures < 1 {
		cfg.MaxFixtures = defaultMaxFixtures
	}
	if cfg.FallbackLimit < 1 {
		cfg.FallbackLimit = defaultFallbackLimit
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = defaultConcurrency
	}
	if len(cfg.PriorityLeagues) == 0 {
		cfg.PriorityLeagues = DefaultPriorityLeagues
	}
	return cfg
}

type MergeQuery struct {
	Date     string
	Timezone string
	League   string
}

type MergeDebug struct {
	PagesFetched     int   `json:"pagesFetched"`
	FetchedOddsTotal int   `json:"fetchedOddsTotal"`
	FixturesTotal    int   `json:"fixturesTotal"`
	SelectedFixtures int   `json:"selectedFixtures"`
	MissingAfterBulk int   `json:"missingAfterBulk"`
	Samples          []any `json:"samples"`
}

// MergeResult is the cacheable payload of one merge pass. Fixtures and
// Merged carry the same rows; consumers read either name.
type MergeResult struct {
	Fixtures []fixture.Fixture `json:"fixtures"`
	Merged   []fixture.Fixture `json:"merged"`
	Count    int               `json:"count"`
	Debug    MergeDebug        `json:"debug"`
}

type OddsMergeService struct {
	client  FootballDataClient
	cache   *cache.Store
	logger  *logging.Logger
	metrics *metrics.Metrics
	cfg     OddsMergeConfig
}

func NewOddsMergeService(client FootballDataClient, store *cache.Store, logger *logging.Logger, m *metrics.Metrics, cfg OddsMergeConfig) *OddsMergeService {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore(defaultCacheTTL)
	}
	return &OddsMergeService{
		client:  client,
		cache:   store,
		logger:  logger,
		metrics: m,
		cfg:     NormalizeOddsMergeConfig(cfg),
	}
}

// MergeOdds runs one merge pass for the requested day, or serves it
// from cache. The second return reports whether the payload came from
// cache.
func (s *OddsMergeService) MergeOdds(ctx context.Context, query MergeQuery) (MergeResult, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "OddsMergeService.MergeOdds")
	defer span.End()

	query.Date = strings.TrimSpace(query.Date)
	if query.Date == "" {
		return MergeResult{}, false, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	key := mergeCacheKey(query)
	if cached, ok := s.cache.Get(ctx, key); ok {
		if result, ok := cached.(MergeResult); ok {
			s.countCache(true)
			return result, true, nil
		}
	}
	s.countCache(false)

	loaded, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.buildMerged(ctx, query)
	})
	if err != nil {
		return MergeResult{}, false, err
	}

	result, ok := loaded.(MergeResult)
	if !ok {
		return MergeResult{}, false, fmt.Errorf("unexpected cached payload type %T", loaded)
	}
	return result, false, nil
}

func mergeCacheKey(query MergeQuery) string {
	timezone := strings.TrimSpace(query.Timezone)
	if timezone == "" {
		timezone = "default"
	}
	league := strings.TrimSpace(query.League)
	if league == "" {
		league = "all"
	}
	return fmt.Sprintf("odds-merged:%s:%s:%s", query.Date, timezone, league)
}

// buildMerged is the single-pass pipeline: fetch fixtures, select the
// display subset, bulk-fetch odds pages until covered, fall back to
// per-fixture fetches for the gaps, normalize, attach. Only the
// fixture fetch is fatal; odds failures degrade to partial or empty
// odds.
func (s *OddsMergeService) buildMerged(ctx context.Context, query MergeQuery) (MergeResult, error) {
	rows, err := s.client.FetchFixturesByDate(ctx, query.Date, query.Timezone, query.League)
	if err != nil {
		return MergeResult{}, fmt.Errorf("fetch fixtures: %w", err)
	}

	all := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			all = append(all, fixture.Fixture(row))
		}
	}

	selected := SelectFixtures(all, s.cfg.MaxFixtures, s.cfg.PriorityLeagues)
	if len(selected) == 0 {
		return MergeResult{
			Fixtures: []fixture.Fixture{},
			Merged:   []fixture.Fixture{},
			Debug:    MergeDebug{FixturesTotal: len(all), Samples: []any{}},
		}, nil
	}

	needed := make(map[int64]struct{}, len(selected))
	for _, item := range selected {
		if id := item.ID(); id > 0 {
			needed[id] = struct{}{}
		}
	}

	bulk := s.fetchUntilCovered(ctx, query.Date, needed)

	missing := make([]int64, 0)
	for _, item := range selected {
		id := item.ID()
		if id <= 0 {
			continue
		}
		if _, ok := bulk.covered[id]; !ok {
			missing = append(missing, id)
		}
	}

	var fallbackRecords []map[string]any
	if len(missing) > 0 {
		fallbackRecords = s.fetchFallback(ctx, missing)
	}

	oddsMap := odds.Normalize(bulk.records)
	oddsMap.Accumulate(fallbackRecords)

	merged := make([]fixture.Fixture, 0, len(selected))
	for _, item := range selected {
		merged = append(merged, item.WithOdds(oddsMap[item.ID()]))
	}

	result := MergeResult{
		Fixtures: merged,
		Merged:   merged,
		Count:    len(merged),
		Debug: MergeDebug{
			PagesFetched:     bulk.pagesFetched,
			FetchedOddsTotal: len(bulk.records) + len(fallbackRecords),
			FixturesTotal:    len(all),
			SelectedFixtures: len(selected),
			MissingAfterBulk: len(missing),
			Samples:          buildSamples(merged),
		},
	}

	s.logger.InfoContext(ctx, "odds merge pass finished",
		"date", query.Date,
		"fixtures_total", len(all),
		"selected", len(selected),
		"pages_fetched", bulk.pagesFetched,
		"missing_after_bulk", len(missing),
		"odds_records", result.Debug.FetchedOddsTotal,
	)
	return result, nil
}

type bulkFetchOutcome struct {
	records      []map[string]any
	covered      map[int64]struct{}
	pagesFetched int
}

// fetchUntilCovered walks the date-wide odds listing page by page.
// Pages are strictly sequential because every stop condition depends
// on the coverage accumulated so far. Checked after each page, in
// order: page ceiling, fetch error (partial return), full coverage of
// needed IDs, display-target coverage, paging metadata saying last
// page, short page. Over-fetch is accepted: every record accumulates
// whether or not its fixture was asked for.
func (s *OddsMergeService) fetchUntilCovered(ctx context.Context, date string, needed map[int64]struct{}) bulkFetchOutcome {
	out := bulkFetchOutcome{covered: make(map[int64]struct{}, len(needed))}

	pageCeiling := s.cfg.MaxPages
	if pageCeiling > hardPageCeiling {
		pageCeiling = hardPageCeiling
	}

	for page := 1; page <= pageCeiling; page++ {
		fetched, err := s.client.FetchOddsPage(ctx, date, page)
		if err != nil {
			s.logger.WarnContext(ctx, "odds page fetch failed, keeping partial results",
				"date", date,
				"page", page,
				"error", err,
			)
			return out
		}
		out.pagesFetched++

		for _, record := range fetched.Records {
			out.records = append(out.records, record)
			if id := resolveRecordFixtureID(record); id > 0 {
				if _, ok := needed[id]; ok {
					out.covered[id] = struct{}{}
				}
			}
		}

		// Covers the empty-needed case too: with nothing to look
		// for the first page is enough.
		if len(out.covered) >= len(needed) {
			return out
		}
		if len(out.covered) >= s.cfg.MaxFixtures {
			return out
		}
		if isLastPage(fetched.Paging, page) {
			return out
		}
		if len(fetched.Records) < s.cfg.ExpectedPageSize {
			return out
		}
	}

	return out
}

func resolveRecordFixtureID(record map[string]any) int64 {
	return fixture.Fixture(record).ID()
}

// isLastPage reads whichever paging variant the provider sent.
func isLastPage(p ExternalPaging, page int) bool {
	totalPages := p.Pages
	if totalPages <= 0 {
		totalPages = p.Total
		if p.Limit > 0 && p.Total > p.Limit {
			totalPages = (p.Total + p.Limit - 1) / p.Limit
		}
	}
	if totalPages <= 0 {
		return false
	}
	current := p.Current
	if current <= 0 {
		current = page
	}
	return current >= totalPages
}

// fetchFallback issues per-fixture odds calls for fixtures the bulk
// pass missed. The fan-out is truncated and runs under its own, lower
// concurrency cap; individual failures are logged and skipped, never
// surfaced.
func (s *OddsMergeService) fetchFallback(ctx context.Context, fixtureIDs []int64) []map[string]any {
	if len(fixtureIDs) > s.cfg.FallbackLimit {
		fixtureIDs = fixtureIDs[:s.cfg.FallbackLimit]
	}

	concurrency := s.cfg.Concurrency
	if concurrency > fallbackConcurrencyCap {
		concurrency = fallbackConcurrencyCap
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	records := make([]map[string]any, 0, len(fixtureIDs))

	outcome, err := batch.Run(ctx, fixtureIDs, concurrency, func(ctx context.Context, fixtureID int64) error {
		rows, err := s.client.FetchOddsByFixture(ctx, fixtureID)
		if err != nil {
			return err
		}
		s.countFallback("ok")
		mu.Lock()
		records = append(records, rows...)
		mu.Unlock()
		return nil
	}, func(fixtureID int64, err error) {
		s.countFallback("error")
		s.logger.WarnContext(ctx, "fallback odds fetch failed, skipping fixture",
			"fixture_id", fixtureID,
			"error", err,
		)
	})
	if err != nil {
		s.logger.WarnContext(ctx, "fallback batch could not start", "error", err)
		return records
	}
	if outcome.Attempted > 0 && outcome.Succeeded == 0 {
		s.logger.WarnContext(ctx, "every fallback odds fetch failed",
			"attempted", outcome.Attempted,
		)
	}
	return records
}

// buildSamples trims the merged payload down to a small inspectable
// slice for the debug block: a handful of fixtures, a couple of
// bookmakers and bets each, and the first few prices.
func buildSamples(merged []fixture.Fixture) []any {
	samples := make([]any, 0, sampleFixtures)
	for _, item := range merged {
		if len(samples) >= sampleFixtures {
			break
		}

		books, _ := item["bookmakers"].([]odds.Bookmaker)
		bookSamples := make([]any, 0, sampleBookmakers)
		for _, book := range books {
			if len(bookSamples) >= sampleBookmakers {
				break
			}
			betSamples := make([]any, 0, sampleBets)
			for _, bet := range book.Bets {
				if len(betSamples) >= sampleBets {
					break
				}
				valueSamples := make([]any, 0, sampleValues)
				for _, value := range bet.Values {
					if len(valueSamples) >= sampleValues {
						break
					}
					valueSamples = append(valueSamples, samplePrice(value))
				}
				betSamples = append(betSamples, map[string]any{
					"name":   bet.Name,
					"values": valueSamples,
				})
			}
			bookSamples = append(bookSamples, map[string]any{
				"name": book.Name,
				"bets": betSamples,
			})
		}

		samples = append(samples, map[string]any{
			"fixtureId":  item.ID(),
			"league":     item.LeagueName(),
			"bookmakers": bookSamples,
		})
	}
	return samples
}

func samplePrice(value map[string]any) any {
	for _, key := range []string{"odd", "price", "value"} {
		if raw, ok := value[key]; ok && raw != nil {
			return raw
		}
	}
	return nil
}

func (s *OddsMergeService) countCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHits.Inc()
	} else {
		s.metrics.CacheMisses.Inc()
	}
}

func (s *OddsMergeService) countFallback(result string) {
	if s.metrics == nil {
		return
	}
	s.metrics.FallbackFetches.WithLabelValues(result).Inc()
}
