package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/quangdvn/footyodds/internal/domain/fixture"
	"github.com/quangdvn/footyodds/internal/platform/cache"
	"github.com/quangdvn/footyodds/internal/platform/logging"
)

// FixtureService is a thin proxy over the provider's fixtures listing,
// sharing the merge pipeline's cache store so repeated day views do
// not re-hit upstream.
type FixtureService struct {
	client FootballDataClient
	cache  *cache.Store
	logger *logging.Logger
}

func NewFixtureService(client FootballDataClient, store *cache.Store, logger *logging.Logger) *FixtureService {
	if logger == nil {
		logger = logging.Default()
	}
	if store == nil {
		store = cache.NewStore(defaultCacheTTL)
	}
	return &FixtureService{client: client, cache: store, logger: logger}
}

func (s *FixtureService) ListByDate(ctx context.Context, date, timezone, league string) ([]fixture.Fixture, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "FixtureService.ListByDate")
	defer span.End()

	date = strings.TrimSpace(date)
	if date == "" {
		return nil, false, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	key := fixturesCacheKey(date, timezone, league)
	if cached, ok := s.cache.Get(ctx, key); ok {
		if fixtures, ok := cached.([]fixture.Fixture); ok {
			return fixtures, true, nil
		}
	}

	loaded, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		rows, err := s.client.FetchFixturesByDate(ctx, date, timezone, league)
		if err != nil {
			return nil, fmt.Errorf("fetch fixtures: %w", err)
		}
		fixtures := make([]fixture.Fixture, 0, len(rows))
		for _, row := range rows {
			if row != nil {
				fixtures = append(fixtures, fixture.Fixture(row))
			}
		}
		return fixtures, nil
	})
	if err != nil {
		return nil, false, err
	}

	fixtures, ok := loaded.([]fixture.Fixture)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cached payload type %T", loaded)
	}
	return fixtures, false, nil
}

func fixturesCacheKey(date, timezone, league string) string {
	if strings.TrimSpace(timezone) == "" {
		timezone = "default"
	}
	if strings.TrimSpace(league) == "" {
		league = "all"
	}
	return fmt.Sprintf("fixtures:%s:%s:%s", date, timezone, league)
}
