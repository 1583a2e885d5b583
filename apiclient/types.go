package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NoData is the formatted percentage the backend sends when it has nothing
// for a player in a market. It is never a legitimate zero.
const NoData Percent = "0.0%"

// Percent is a formatted percentage such as "37.5%". The empty value means
// the field was absent from the payload.
type Percent string

// UnmarshalJSON accepts a string, a bare number (formatted to one decimal
// place) or null.
func (p *Percent) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Percent(strings.TrimSpace(s))
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("percentage %s: %w", b, err)
	}
	*p = Percent(d.StringFixed(1) + "%")
	return nil
}

// Present reports whether the backend sent a value.
func (p Percent) Present() bool { return p != "" }

// IsNoData reports whether p is the literal "0.0%" sentinel.
func (p Percent) IsNoData() bool { return p == NoData }

// Ranked reports whether p takes part in market ranking.
func (p Percent) Ranked() bool { return p.Present() && !p.IsNoData() }

// Value strips the trailing percent sign and parses the rest.
func (p Percent) Value() (decimal.Decimal, error) {
	s := strings.TrimSuffix(strings.TrimSpace(string(p)), "%")
	return decimal.NewFromString(strings.TrimSpace(s))
}

// NonZero reports whether p is present and not numerically zero. A present
// value that does not parse counts as non-zero.
func (p Percent) NonZero() bool {
	if !p.Present() {
		return false
	}
	v, err := p.Value()
	if err != nil {
		return true
	}
	return !v.IsZero()
}

// Matchup is a selectable upcoming game.
type Matchup struct {
	ID    string `json:"id"`
	Label string `json:"display_name"`
	Team1 string `json:"home_team"`
	Team2 string `json:"away_team"`
}

// UnmarshalJSON accepts both the /matches and /matchups field spellings and
// numeric or string ids.
func (m *Matchup) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		DisplayName string          `json:"display_name"`
		Label       string          `json:"label"`
		Name        string          `json:"name"`
		HomeTeam    string          `json:"home_team"`
		AwayTeam    string          `json:"away_team"`
		Team1       string          `json:"team1"`
		Team2       string          `json:"team2"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	id, err := rawID(raw.ID)
	if err != nil {
		return err
	}
	m.ID = id
	m.Team1 = firstNonEmpty(raw.Team1, raw.HomeTeam)
	m.Team2 = firstNonEmpty(raw.Team2, raw.AwayTeam)
	m.Label = firstNonEmpty(raw.DisplayName, raw.Label, raw.Name)
	if m.Label == "" && m.Team1 != "" && m.Team2 != "" {
		m.Label = m.Team1 + " vs " + m.Team2
	}
	return nil
}

func (m Matchup) validate() error {
	switch {
	case m.ID == "":
		return fmt.Errorf("missing id")
	case m.Team1 == "" || m.Team2 == "":
		return fmt.Errorf("matchup %s: missing team name", m.ID)
	}
	return nil
}

// MatchupPlayer is one row of a matchup roster.
type MatchupPlayer struct {
	TeamName   string `json:"TeamName"`
	PlayerName string `json:"PlayerName"`
}

// BattingStats holds the batting percentages and raw counts for one player.
type BattingStats struct {
	Innings       int     `json:"innings"`
	Runs          int     `json:"runs"`
	SixHitPct     Percent `json:"six_hit_pct"`
	Sixes         int     `json:"sixes"`
	Runs10PlusPct Percent `json:"runs_10_plus_pct"`
	Runs10Plus    int     `json:"runs_10_plus"`
	Runs20PlusPct Percent `json:"runs_20_plus_pct"`
	Runs20Plus    int     `json:"runs_20_plus"`
	TopScorerPct  Percent `json:"top_scorer_pct"`
	TopScorer     int     `json:"top_scorer"`
}

// BowlingStats holds the bowling percentages and raw counts for one player.
type BowlingStats struct {
	Innings           int     `json:"innings"`
	Wickets           int     `json:"wickets"`
	Wicket1PlusPct    Percent `json:"wicket_1_plus_pct"`
	Wicket2PlusPct    Percent `json:"wicket_2_plus_pct"`
	Wicket2Plus       int     `json:"wicket_2_plus"`
	TopWicketTakerPct Percent `json:"top_wicket_taker_pct"`
	TopWicketTaker    int     `json:"top_wicket_taker"`
}

// PlayerStats is the /player-stats payload.
type PlayerStats struct {
	BattingStats BattingStats `json:"batting_stats"`
	BowlingStats BowlingStats `json:"bowling_stats"`
}

// PlayerRecord is one player inside a /team-stats payload.
type PlayerRecord struct {
	Name         string       `json:"name"`
	BattingStats BattingStats `json:"batting_stats"`
	BowlingStats BowlingStats `json:"bowling_stats"`
}

// TeamStats is the /team-stats payload.
type TeamStats struct {
	Players []PlayerRecord `json:"players"`
}

// Recommendation is a server-suggested player/market/percentage triple.
type Recommendation struct {
	PlayerName string  `json:"player_name"`
	Market     string  `json:"market"`
	Percentage Percent `json:"percentage"`
}

// RecommendationRequest is the /recommendations body.
type RecommendationRequest struct {
	WinnerTeam string `json:"winner_team"`
	MatchID    string `json:"match_id"`
}

// SelectedBet is one explicit leg sent to /build-multi.
type SelectedBet struct {
	ID         string  `json:"id"`
	PlayerName string  `json:"player_name"`
	Market     string  `json:"market"`
	Percentage Percent `json:"percentage"`
}

// BuildMultiRequest is the /build-multi body.
type BuildMultiRequest struct {
	WinnerTeam   string        `json:"winner_team"`
	SelectedBets []SelectedBet `json:"selected_bets"`
}

// MultiBet is the priced multi returned by /build-multi.
type MultiBet struct {
	TotalLegs          int    `json:"total_legs"`
	CombinedPercentage string `json:"combined_percentage"`
	EstimatedOdds      string `json:"estimated_odds"`
}

// UnmarshalJSON tolerates numeric percentage and odds fields.
func (m *MultiBet) UnmarshalJSON(b []byte) error {
	var raw struct {
		TotalLegs          int             `json:"total_legs"`
		CombinedPercentage json.RawMessage `json:"combined_percentage"`
		EstimatedOdds      json.RawMessage `json:"estimated_odds"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	pct, err := rawID(raw.CombinedPercentage)
	if err != nil {
		return fmt.Errorf("combined_percentage: %w", err)
	}
	odds, err := rawID(raw.EstimatedOdds)
	if err != nil {
		return fmt.Errorf("estimated_odds: %w", err)
	}
	m.TotalLegs = raw.TotalLegs
	m.CombinedPercentage = pct
	m.EstimatedOdds = odds
	return nil
}

// rawID renders a JSON string or number as a plain string.
func rawID(b json.RawMessage) (string, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", b)
	}
	return n.String(), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
