package usecase

import "context"

// ExternalPaging is the provider's paging block. Plans differ: some
// report current/total as page counts, older payloads report a record
// total with a per-page limit, a few report pages directly.
type ExternalPaging struct {
	Current int
	Total   int
	Limit   int
	Pages   int
}

// ExternalOddsPage is one page of the date-wide odds listing.
type ExternalOddsPage struct {
	Records []map[string]any
	Paging  ExternalPaging
}

// FootballDataClient is the upstream football-data provider port.
type FootballDataClient interface {
	FetchFixturesByDate(ctx context.Context, date, timezone, league string) ([]map[string]any, error)
	FetchOddsPage(ctx context.Context, date string, page int) (ExternalOddsPage, error)
	FetchOddsByFixture(ctx context.Context, fixtureID int64) ([]map[string]any, error)
	FetchRecentFixturesByTeam(ctx context.Context, teamID int64, last int) ([]map[string]any, error)
}
