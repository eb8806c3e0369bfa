package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/quangdvn/footyodds/internal/platform/logging"
)

func playedMatch(fixtureID, homeID, awayID int64, homeGoals, awayGoals int) map[string]any {
	return map[string]any{
		"fixture": map[string]any{"id": float64(fixtureID)},
		"teams": map[string]any{
			"home": map[string]any{"id": float64(homeID)},
			"away": map[string]any{"id": float64(awayID)},
		},
		"goals": map[string]any{"home": float64(homeGoals), "away": float64(awayGoals)},
	}
}

func TestPredict_StrongHomeFormFavorsHome(t *testing.T) {
	t.Parallel()

	client := &fakeFootballClient{
		recentByTeam: map[int64][]map[string]any{
			10: {
				playedMatch(1, 10, 50, 3, 0),
				playedMatch(2, 51, 10, 0, 2),
				playedMatch(3, 10, 52, 4, 1),
			},
			20: {
				playedMatch(4, 20, 60, 0, 2),
				playedMatch(5, 61, 20, 3, 0),
				playedMatch(6, 20, 62, 0, 1),
			},
		},
	}
	service := NewPredictionService(client, logging.NewNop())

	result, err := service.Predict(context.Background(), PredictionQuery{HomeTeamID: 10, AwayTeamID: 20})
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	p := result.Probabilities
	if p.Home <= p.Away {
		t.Fatalf("expected home favored, got home=%.2f away=%.2f", p.Home, p.Away)
	}
	if sum := p.Home + p.Draw + p.Away; math.Abs(sum-100) > 0.1 {
		t.Fatalf("1X2 probabilities sum to %.2f, want 100", sum)
	}
	if math.Abs(p.Over+p.Under-100) > 0.1 {
		t.Fatalf("over/under must sum to 100, got %.2f", p.Over+p.Under)
	}
	if result.Factors.HomeStrength <= result.Factors.AwayStrength {
		t.Fatalf("unexpected factors: %+v", result.Factors)
	}
}

func TestPredict_HeadToHeadShiftsProbabilities(t *testing.T) {
	t.Parallel()

	// Both sides drew their non-mutual matches; the home side won both
	// mutual ones.
	evenForm := func(teamID int64, base int64) []map[string]any {
		return []map[string]any{
			playedMatch(base, teamID, 90, 1, 1),
			playedMatch(base+1, 91, teamID, 1, 1),
		}
	}
	home := evenForm(10, 100)
	away := evenForm(20, 200)
	home = append(home, playedMatch(300, 10, 20, 2, 0))
	away = append(away, playedMatch(301, 20, 10, 0, 1))

	client := &fakeFootballClient{
		recentByTeam: map[int64][]map[string]any{10: home, 20: away},
	}
	service := NewPredictionService(client, logging.NewNop())

	result, err := service.Predict(context.Background(), PredictionQuery{HomeTeamID: 10, AwayTeamID: 20})
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if result.Factors.HeadToHead <= 0 {
		t.Fatalf("expected positive h2h factor, got %+v", result.Factors)
	}
	if result.Probabilities.Home <= result.Probabilities.Away {
		t.Fatalf("h2h advantage not reflected: %+v", result.Probabilities)
	}
}

func TestPredict_NoFormDataStillProducesEstimate(t *testing.T) {
	t.Parallel()

	service := NewPredictionService(&fakeFootballClient{}, logging.NewNop())

	result, err := service.Predict(context.Background(), PredictionQuery{HomeTeamID: 10, AwayTeamID: 20})
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	p := result.Probabilities
	if p.Home <= 0 || p.Draw <= 0 || p.Away <= 0 {
		t.Fatalf("expected non-zero probabilities, got %+v", p)
	}
	// Equal (floored) strengths, so home advantage is the only edge.
	if p.Home <= p.Away {
		t.Fatalf("expected home advantage with neutral data, got %+v", p)
	}
}

func TestPredict_InvalidTeamIDs(t *testing.T) {
	t.Parallel()

	service := NewPredictionService(&fakeFootballClient{}, logging.NewNop())
	_, err := service.Predict(context.Background(), PredictionQuery{HomeTeamID: 0, AwayTeamID: 20})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPredict_UpstreamErrorPropagates(t *testing.T) {
	t.Parallel()

	client := &failingFormClient{err: errors.New("form fetch failed")}
	service := NewPredictionService(client, logging.NewNop())

	if _, err := service.Predict(context.Background(), PredictionQuery{HomeTeamID: 10, AwayTeamID: 20}); err == nil {
		t.Fatal("expected upstream error to propagate")
	}
}

type failingFormClient struct {
	fakeFootballClient
	err error
}

func (f *failingFormClient) FetchRecentFixturesByTeam(context.Context, int64, int) ([]map[string]any, error) {
	return nil, f.err
}
