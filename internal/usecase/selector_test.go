package usecase

import (
	"reflect"
	"testing"

	"github.com/quangdvn/footyodds/internal/domain/fixture"
)

func leagueFixture(id int64, league string) fixture.Fixture {
	return fixture.Fixture{
		"fixture": map[string]any{"id": float64(id)},
		"league":  map[string]any{"name": league},
	}
}

func TestSelectFixtures_BoundedByMaxCount(t *testing.T) {
	t.Parallel()

	fixtures := make([]fixture.Fixture, 0, 20)
	for i := int64(1); i <= 20; i++ {
		fixtures = append(fixtures, leagueFixture(i, "Some League"))
	}

	out := SelectFixtures(fixtures, 5, DefaultPriorityLeagues)
	if len(out) != 5 {
		t.Fatalf("expected 5 fixtures, got %d", len(out))
	}
}

func TestSelectFixtures_PriorityLeaguesFirstStableOrder(t *testing.T) {
	t.Parallel()

	fixtures := []fixture.Fixture{
		leagueFixture(1, "Eredivisie"),
		leagueFixture(2, "Premier League"),
		leagueFixture(3, "Championship"),
		leagueFixture(4, "La Liga"),
		leagueFixture(5, "Bundesliga"),
	}

	out := SelectFixtures(fixtures, 150, DefaultPriorityLeagues)

	gotIDs := make([]int64, 0, len(out))
	for _, item := range out {
		gotIDs = append(gotIDs, item.ID())
	}
	wantIDs := []int64{2, 4, 5, 1, 3}
	if !reflect.DeepEqual(gotIDs, wantIDs) {
		t.Fatalf("unexpected order: got %v, want %v", gotIDs, wantIDs)
	}
}

func TestSelectFixtures_Deterministic(t *testing.T) {
	t.Parallel()

	fixtures := []fixture.Fixture{
		leagueFixture(1, "Serie A"),
		leagueFixture(2, "Ligue 2"),
		leagueFixture(3, "V-League"),
	}

	first := SelectFixtures(fixtures, 2, DefaultPriorityLeagues)
	second := SelectFixtures(fixtures, 2, DefaultPriorityLeagues)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("selection is not deterministic: %v vs %v", first, second)
	}
}

func TestSelectFixtures_EmptyInput(t *testing.T) {
	t.Parallel()

	if out := SelectFixtures(nil, 10, DefaultPriorityLeagues); len(out) != 0 {
		t.Fatalf("expected empty selection, got %v", out)
	}
}
