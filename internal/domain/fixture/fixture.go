package fixture

import (
	"strconv"
	"strings"

	"github.com/quangdvn/footyodds/internal/domain/odds"
)

// Fixture is one upstream fixture row kept in its provider shape. The
// pipeline never rewrites provider fields, it only reads a couple of
// them and attaches normalized odds on the way out.
type Fixture map[string]any

// ID resolves the fixture identifier from the nested fixture object or
// the flat fallback keys some payload variants use.
func (f Fixture) ID() int64 {
	if nested, ok := f["fixture"].(map[string]any); ok {
		if id := getInt64(nested, "id"); id > 0 {
			return id
		}
	}
	if id := getInt64(f, "fixture_id"); id > 0 {
		return id
	}
	return getInt64(f, "id")
}

// LeagueName returns the competition name, empty when absent.
func (f Fixture) LeagueName() string {
	league, ok := f["league"].(map[string]any)
	if !ok {
		return ""
	}
	return getString(league, "name")
}

// WithOdds returns a shallow copy with the bookmaker list attached
// under both odds and bookmakers, which downstream consumers read
// interchangeably. A nil list becomes an empty one so the JSON field
// renders as [] rather than null.
func (f Fixture) WithOdds(books []odds.Bookmaker) Fixture {
	if books == nil {
		books = []odds.Bookmaker{}
	}
	out := make(Fixture, len(f)+2)
	for key, value := range f {
		out[key] = value
	}
	out["odds"] = books
	out["bookmakers"] = books
	return out
}

func getInt64(src map[string]any, key string) int64 {
	if src == nil {
		return 0
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return 0
	}
	switch typed := raw.(type) {
	case float64:
		return int64(typed)
	case float32:
		return int64(typed)
	case int:
		return int64(typed)
	case int64:
		return typed
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	raw, ok := src[key]
	if !ok || raw == nil {
		return ""
	}
	value, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
