package usecase

import (
	"strings"

	"github.com/quangdvn/footyodds/internal/domain/fixture"
)

// DefaultPriorityLeagues lists the competitions shown ahead of
// everything else when a day has more fixtures than the display bound.
var DefaultPriorityLeagues = []string{
	"Premier League",
	"La Liga",
	"Ligue 1",
	"Serie A",
	"V-League",
	"Bundesliga",
}

// SelectFixtures partitions fixtures into priority-league and other,
// preserving relative order inside each group, then concatenates and
// truncates to maxCount. Pure: identical input yields identical output.
func SelectFixtures(fixtures []fixture.Fixture, maxCount int, priorityLeagues []string) []fixture.Fixture {
	if maxCount <= 0 || len(fixtures) == 0 {
		return []fixture.Fixture{}
	}

	prioritySet := make(map[string]struct{}, len(priorityLeagues))
	for _, name := range priorityLeagues {
		name = strings.TrimSpace(name)
		if name != "" {
			prioritySet[name] = struct{}{}
		}
	}

	priority := make([]fixture.Fixture, 0, len(fixtures))
	other := make([]fixture.Fixture, 0, len(fixtures))
	for _, item := range fixtures {
		if _, ok := prioritySet[item.LeagueName()]; ok {
			priority = append(priority, item)
		} else {
			other = append(other, item)
		}
	}

	out := append(priority, other...)
	if len(out) > maxCount {
		out = out[:maxCount]
	}
	return out
}
