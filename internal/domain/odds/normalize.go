package odds

import (
	"strconv"
	"strings"
)

// The upstream odds payload is not stable: depending on endpoint,
// plan, and provider, a record's bookmakers arrive as a bookmakers
// array, an odds array, a single bookmaker object with the markets
// alongside it, a provider object with the markets nested inside it,
// or a bare market-like object. Each observed variant gets its own
// decoder; dispatch is ordered first-match-wins, so the supported
// shapes stay enumerable and testable on their own.
type shapeDecoder struct {
	name   string
	decode func(record map[string]any) ([]Bookmaker, bool)
}

var bookmakerShapes = []shapeDecoder{
	{name: "bookmakers-array", decode: decodeBookmakersArray},
	{name: "odds-array", decode: decodeOddsArray},
	{name: "bookmaker-object", decode: decodeBookmakerObject},
	{name: "provider-object", decode: decodeProviderObject},
	{name: "bare-market", decode: decodeBareMarket},
}

// Normalize maps raw upstream odds records into the canonical
// per-fixture bookmaker map. Records without a resolvable fixture ID
// and bookmakers without any bets are dropped; everything else that
// cannot be decoded is skipped silently.
func Normalize(records []map[string]any) Map {
	out := make(Map)
	out.Accumulate(records)
	return out
}

// Accumulate normalizes records into an existing map, appending to any
// bookmaker lists already present. The bulk pass and the per-fixture
// fallback pass both feed the same map through here.
func (m Map) Accumulate(records []map[string]any) {
	for _, record := range records {
		if record == nil {
			continue
		}
		fixtureID := resolveFixtureID(record)
		if fixtureID <= 0 {
			continue
		}

		for _, shape := range bookmakerShapes {
			books, ok := shape.decode(record)
			if !ok {
				continue
			}
			if len(books) > 0 {
				m[fixtureID] = append(m[fixtureID], books...)
			}
			break
		}
	}
}

func resolveFixtureID(record map[string]any) int64 {
	if nested, ok := record["fixture"].(map[string]any); ok {
		if id := getInt64(nested, "id"); id > 0 {
			return id
		}
	}
	return getInt64(record, "fixture_id")
}

func decodeBookmakersArray(record map[string]any) ([]Bookmaker, bool) {
	items, ok := record["bookmakers"].([]any)
	if !ok {
		return nil, false
	}
	return decodeBookmakerList(items), true
}

func decodeOddsArray(record map[string]any) ([]Bookmaker, bool) {
	items, ok := record["odds"].([]any)
	if !ok {
		return nil, false
	}
	return decodeBookmakerList(items), true
}

// decodeBookmakerObject handles the flattened variant where a single
// bookmaker object sits next to the record-level bets/markets.
func decodeBookmakerObject(record map[string]any) ([]Bookmaker, bool) {
	src, ok := record["bookmaker"].(map[string]any)
	if !ok {
		return nil, false
	}
	book := Bookmaker{
		ID:   bookmakerID(src),
		Name: bookmakerName(src),
		Bets: decodeBets(record),
	}
	if len(book.Bets) == 0 {
		return nil, true
	}
	return []Bookmaker{book}, true
}

// decodeProviderObject handles the variant that nests its markets
// inside the provider object itself. A provider without a markets
// array does not claim the record; it falls through to the remaining
// shapes.
func decodeProviderObject(record map[string]any) ([]Bookmaker, bool) {
	src, ok := record["provider"].(map[string]any)
	if !ok {
		return nil, false
	}
	markets, ok := src["markets"].([]any)
	if !ok {
		return nil, false
	}

	name := getString(src, "name")
	if name == "" {
		if id := getInt64(src, "id"); id > 0 {
			name = strconv.FormatInt(id, 10)
		} else {
			name = "Unknown"
		}
	}
	book := Bookmaker{
		Name: name,
		Bets: decodeBetList(markets),
	}
	if len(book.Bets) == 0 {
		return nil, true
	}
	return []Bookmaker{book}, true
}

// decodeBareMarket treats the record itself as one bookmaker-like
// object when it carries a market list directly.
func decodeBareMarket(record map[string]any) ([]Bookmaker, bool) {
	if !hasAnyKey(record, "bets", "markets", "options") {
		return nil, false
	}
	book := Bookmaker{
		ID:   bookmakerID(record),
		Name: bookmakerName(record),
		Bets: decodeBets(record),
	}
	if len(book.Bets) == 0 {
		return nil, true
	}
	return []Bookmaker{book}, true
}

func decodeBookmakerList(items []any) []Bookmaker {
	out := make([]Bookmaker, 0, len(items))
	for _, item := range items {
		src, ok := item.(map[string]any)
		if !ok {
			continue
		}
		book := Bookmaker{
			ID:   bookmakerID(src),
			Name: bookmakerName(src),
			Bets: decodeBets(src),
		}
		if len(book.Bets) == 0 {
			continue
		}
		out = append(out, book)
	}
	return out
}

func decodeBets(src map[string]any) []Bet {
	return decodeBetList(firstSlice(src, "bets", "markets", "options"))
}

func decodeBetList(items []any) []Bet {
	if len(items) == 0 {
		return nil
	}

	out := make([]Bet, 0, len(items))
	for _, item := range items {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, Bet{
			Name:   betName(raw),
			Values: decodeValues(raw),
		})
	}
	return out
}

func decodeValues(src map[string]any) []map[string]any {
	items := firstSlice(src, "values", "options", "outcomes")
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		value, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, value)
	}
	return out
}

// bookmakerName walks the aliases bookmaker objects arrive with.
func bookmakerName(src map[string]any) string {
	for _, key := range []string{"name", "bookmaker", "title"} {
		if value := getString(src, key); value != "" {
			return value
		}
	}
	return "Unknown"
}

func bookmakerID(src map[string]any) int64 {
	if id := getInt64(src, "id"); id > 0 {
		return id
	}
	return getInt64(src, "bookmaker_id")
}

func betName(src map[string]any) string {
	for _, key := range []string{"name", "label", "market"} {
		if value := getString(src, key); value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}

func firstSlice(src map[string]any, keys ...string) []any {
	for _, key := range keys {
		if items, ok := src[key].([]any); ok {
			return items
		}
	}
	return nil
}

func hasAnyKey(src map[string]any, keys ...string) bool {
	for _, key := range keys {
		if _, ok := src[key]; ok {
			return true
		}
	}
	return false
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
