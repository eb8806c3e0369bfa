package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/sourcegraph/conc"

	"github.com/quangdvn/footyodds/internal/domain/fixture"
	"github.com/quangdvn/footyodds/internal/platform/logging"
)

const (
	defaultPredictionMatches = 10
	maxPredictionMatches     = 50

	homeAdvantage = 1.10
)

type PredictionQuery struct {
	HomeTeamID int64
	AwayTeamID int64
	Matches    int
}

type PredictionProbabilities struct {
	Home  float64 `json:"home"`
	Draw  float64 `json:"draw"`
	Away  float64 `json:"away"`
	Over  float64 `json:"over"`
	Under float64 `json:"under"`
}

type PredictionFactors struct {
	HomeStrength      float64 `json:"homeStrength"`
	AwayStrength      float64 `json:"awayStrength"`
	HeadToHead        float64 `json:"h2h"`
	ExpectedGoalsHome float64 `json:"expectedGoalsHome"`
	ExpectedGoalsAway float64 `json:"expectedGoalsAway"`
}

type PredictionResult struct {
	Probabilities PredictionProbabilities `json:"probabilities"`
	Factors       PredictionFactors       `json:"factors"`
	Explanation   string                  `json:"explanation"`
}

// PredictionService produces heuristic 1X2 and over/under estimates
// from each side's recent form: points per game and goals per game as
// strength, a head-to-head factor from mutual matches, a home
// advantage bump, and a draw baseline driven by how close the expected
// goals are.
type PredictionService struct {
	client FootballDataClient
	logger *logging.Logger
}

func NewPredictionService(client FootballDataClient, logger *logging.Logger) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{client: client, logger: logger}
}

func (s *PredictionService) Predict(ctx context.Context, query PredictionQuery) (PredictionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.Predict")
	defer span.End()

	if query.HomeTeamID <= 0 || query.AwayTeamID <= 0 {
		return PredictionResult{}, fmt.Errorf("%w: home and away team ids are required", ErrInvalidInput)
	}
	matches := query.Matches
	if matches < 1 {
		matches = defaultPredictionMatches
	}
	if matches > maxPredictionMatches {
		matches = maxPredictionMatches
	}

	var homeMatches, awayMatches []map[string]any
	var homeErr, awayErr error

	var wg conc.WaitGroup
	wg.Go(func() {
		homeMatches, homeErr = s.client.FetchRecentFixturesByTeam(ctx, query.HomeTeamID, matches)
	})
	wg.Go(func() {
		awayMatches, awayErr = s.client.FetchRecentFixturesByTeam(ctx, query.AwayTeamID, matches)
	})
	wg.Wait()

	if homeErr != nil {
		return PredictionResult{}, fmt.Errorf("fetch home team form: %w", homeErr)
	}
	if awayErr != nil {
		return PredictionResult{}, fmt.Errorf("fetch away team form: %w", awayErr)
	}

	homeStats := analyzeForm(homeMatches, query.HomeTeamID)
	awayStats := analyzeForm(awayMatches, query.AwayTeamID)
	h2h := headToHeadFactor(homeMatches, awayMatches, query.HomeTeamID, query.AwayTeamID)

	baseHome := homeStats.ppg*0.7 + homeStats.goalsFor*0.3
	baseAway := awayStats.ppg*0.7 + awayStats.goalsFor*0.3

	homeStrength := baseHome * homeAdvantage * (1 + h2h*0.05)
	awayStrength := baseAway * (1 - h2h*0.05)

	// With almost no form data the strengths collapse toward zero, so
	// floor them at a neutral baseline.
	if homeStats.played < 3 {
		homeStrength = math.Max(homeStrength, 1.0)
	}
	if awayStats.played < 3 {
		awayStrength = math.Max(awayStrength, 1.0)
	}

	totalStrength := homeStrength + awayStrength
	expGoalsHome := clampFloat(homeStrength/totalStrength*3, 0.2, 4)
	expGoalsAway := clampFloat(awayStrength/totalStrength*3, 0.1, 4)

	rawHome := homeStrength / totalStrength
	rawAway := awayStrength / totalStrength
	rawDraw := 0.15 + 0.35*math.Exp(-math.Abs(expGoalsHome-expGoalsAway))

	rawHome *= (1 - rawDraw)
	rawAway *= (1 - rawDraw)
	rawHome *= 1 + h2h*0.12
	rawAway *= 1 - h2h*0.12

	sum := rawHome + rawDraw + rawAway
	homeP := clampFloat(rawHome/sum, 0.01, 0.95)
	drawP := clampFloat(rawDraw/sum, 0.01, 0.95)
	awayP := clampFloat(rawAway/sum, 0.01, 0.95)

	total := homeP + drawP + awayP
	homeP /= total
	drawP /= total
	awayP /= total

	expTotal := expGoalsHome + expGoalsAway
	overP := clampFloat(1/(1+math.Exp(-(expTotal-2.5))), 0.05, 0.95)

	return PredictionResult{
		Probabilities: PredictionProbabilities{
			Home:  round2(homeP * 100),
			Draw:  round2(drawP * 100),
			Away:  round2(awayP * 100),
			Over:  round2(overP * 100),
			Under: round2((1 - overP) * 100),
		},
		Factors: PredictionFactors{
			HomeStrength:      round3(homeStrength),
			AwayStrength:      round3(awayStrength),
			HeadToHead:        round3(h2h),
			ExpectedGoalsHome: round3(expGoalsHome),
			ExpectedGoalsAway: round3(expGoalsAway),
		},
		Explanation: fmt.Sprintf(
			"Based on last %d matches: home ppg=%.2f, away ppg=%.2f; h2h=%.2f; expected goals %.2f - %.2f.",
			matches, homeStats.ppg, awayStats.ppg, h2h, expGoalsHome, expGoalsAway,
		),
	}, nil
}

type formStats struct {
	ppg          float64
	goalsFor     float64
	goalsAgainst float64
	played       int
}

func analyzeForm(matches []map[string]any, teamID int64) formStats {
	points, goalsFor, goalsAgainst, played := 0, 0, 0, 0
	for _, m := range matches {
		homeID, awayID := matchTeamIDs(m)
		if homeID != teamID && awayID != teamID {
			continue
		}
		homeGoals, awayGoals, ok := matchGoals(m)
		if !ok {
			continue
		}

		scored, conceded := homeGoals, awayGoals
		if awayID == teamID {
			scored, conceded = awayGoals, homeGoals
		}
		played++
		goalsFor += scored
		goalsAgainst += conceded
		switch {
		case scored > conceded:
			points += 3
		case scored == conceded:
			points++
		}
	}
	if played == 0 {
		return formStats{ppg: 1.0, goalsFor: 1.0, goalsAgainst: 1.0}
	}
	return formStats{
		ppg:          float64(points) / float64(played),
		goalsFor:     float64(goalsFor) / float64(played),
		goalsAgainst: float64(goalsAgainst) / float64(played),
		played:       played,
	}
}

// headToHeadFactor scans both recent-form lists for mutual matches and
// returns a -1..1 score, positive when the home side historically beat
// the away side.
func headToHeadFactor(homeMatches, awayMatches []map[string]any, homeID, awayID int64) float64 {
	seen := make(map[int64]struct{})
	mutual := make([]map[string]any, 0, 4)

	for _, m := range homeMatches {
		h, a := matchTeamIDs(m)
		if h == awayID || a == awayID {
			if id := fixture.Fixture(m).ID(); id > 0 {
				seen[id] = struct{}{}
			}
			mutual = append(mutual, m)
		}
	}
	for _, m := range awayMatches {
		h, a := matchTeamIDs(m)
		if h != homeID && a != homeID {
			continue
		}
		if id := fixture.Fixture(m).ID(); id > 0 {
			if _, dup := seen[id]; dup {
				continue
			}
		}
		mutual = append(mutual, m)
	}
	if len(mutual) == 0 {
		return 0
	}

	homeWins, draws, awayWins := 0, 0, 0
	for _, m := range mutual {
		hid, _ := matchTeamIDs(m)
		homeGoals, awayGoals, ok := matchGoals(m)
		if !ok {
			continue
		}
		switch {
		case homeGoals > awayGoals:
			if hid == homeID {
				homeWins++
			} else {
				awayWins++
			}
		case homeGoals == awayGoals:
			draws++
		default:
			if hid == homeID {
				awayWins++
			} else {
				homeWins++
			}
		}
	}

	total := homeWins + draws + awayWins
	if total == 0 {
		total = 1
	}
	return float64(homeWins-awayWins) / float64(total)
}

func matchTeamIDs(m map[string]any) (int64, int64) {
	teams, _ := m["teams"].(map[string]any)
	if teams == nil {
		return 0, 0
	}
	home, _ := teams["home"].(map[string]any)
	away, _ := teams["away"].(map[string]any)
	return mapInt64(home, "id"), mapInt64(away, "id")
}

// matchGoals reads the final score from goals or score.fulltime,
// whichever the payload variant filled in.
func matchGoals(m map[string]any) (int, int, bool) {
	if goals, ok := m["goals"].(map[string]any); ok {
		if home, okH := mapIntValue(goals, "home"); okH {
			if away, okA := mapIntValue(goals, "away"); okA {
				return home, away, true
			}
		}
	}
	score, _ := m["score"].(map[string]any)
	fulltime, _ := score["fulltime"].(map[string]any)
	if home, okH := mapIntValue(fulltime, "home"); okH {
		if away, okA := mapIntValue(fulltime, "away"); okA {
			return home, away, true
		}
	}
	return 0, 0, false
}

func mapInt64(src map[string]any, key string) int64 {
	if src == nil {
		return 0
	}
	switch typed := src[key].(type) {
	case float64:
		return int64(typed)
	case int:
		return int64(typed)
	case int64:
		return typed
	default:
		return 0
	}
}

func mapIntValue(src map[string]any, key string) (int, bool) {
	if src == nil {
		return 0, false
	}
	switch typed := src[key].(type) {
	case float64:
		return int(typed), true
	case int:
		return typed, true
	case int64:
		return int(typed), true
	default:
		return 0, false
	}
}

func clampFloat(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
