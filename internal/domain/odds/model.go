package odds

// Bookmaker is the canonical odds-provider shape every upstream
// variant normalizes into.
type Bookmaker struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Bets []Bet  `json:"bets"`
}

// Bet is one wagering market. Name is always lowercased so downstream
// matching ("handicap", "over/under", "match winner") works by plain
// substring checks. Values keep their vendor fields untouched.
type Bet struct {
	Name   string           `json:"name"`
	Values []map[string]any `json:"values"`
}

// Map keys normalized bookmakers by fixture ID. Bookmaker order is the
// order of discovery across pages and fallback fetches.
type Map map[int64][]Bookmaker
