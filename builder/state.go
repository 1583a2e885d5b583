// Package builder owns a visitor's in-progress multi: the chosen matchup,
// the predicted winner, lock picks, recommendations, ranked market boxes and
// the legs selected into the slip.
package builder

import (
	"fmt"
	"strings"

	"github.com/padraicbc/multibuilder/apiclient"
)

// Side is one of the two teams of a matchup.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// ParseSide accepts home/away and the first/second, team1/team2 spellings.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "first", "team1", "1":
		return SideHome, nil
	case "away", "second", "team2", "2":
		return SideAway, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// LockCategory names the two lock pick slots.
type LockCategory string

const (
	LockSix    LockCategory = "six"
	LockWicket LockCategory = "wicket"
)

// ParseLockCategory validates a lock category.
func ParseLockCategory(s string) (LockCategory, error) {
	switch LockCategory(strings.ToLower(strings.TrimSpace(s))) {
	case LockSix:
		return LockSix, nil
	case LockWicket:
		return LockWicket, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownLockCategory)
}

// LockPick is a player prediction committed before recommendations are built.
type LockPick struct {
	Player     string            `json:"player"`
	Market     string            `json:"market"`
	Percentage apiclient.Percent `json:"percentage"`
}

// Pick is one explicit leg on the slip. ControlID is the checkbox it came
// from: "rec-<index>" for recommendations, the box id for market boxes.
type Pick struct {
	ID         string            `json:"id"`
	ControlID  string            `json:"control_id"`
	PlayerName string            `json:"player_name"`
	Market     string            `json:"market"`
	Percentage apiclient.Percent `json:"percentage"`
}

// RecommendationControlID is the control id of recommendation i.
func RecommendationControlID(i int) string { return fmt.Sprintf("rec-%d", i) }

func (p Pick) pair() pairKey { return pairKey{p.PlayerName, p.Market} }

type pairKey struct{ player, market string }

// MarketBox is one selectable ranked (player, market, percentage) result.
type MarketBox struct {
	ID         string            `json:"id"`
	Section    string            `json:"section"`
	Rank       int               `json:"rank"`
	MarketKey  string            `json:"market_key"`
	Market     string            `json:"market"`
	Player     string            `json:"player"`
	Percentage apiclient.Percent `json:"percentage"`
}

// Markets groups the boxes derived from one team-stats payload.
type Markets struct {
	Batting    []MarketBox `json:"batting"`
	Bowling    []MarketBox `json:"bowling"`
	Additional []MarketBox `json:"additional"`
}

func (m Markets) find(id string) (MarketBox, bool) {
	for _, group := range [][]MarketBox{m.Batting, m.Bowling, m.Additional} {
		for _, b := range group {
			if b.ID == id {
				return b, true
			}
		}
	}
	return MarketBox{}, false
}

// Summary is the priced multi from the last successful submit.
type Summary struct {
	Winner             string   `json:"winner"`
	TotalLegs          int      `json:"total_legs"`
	CombinedPercentage string   `json:"combined_percentage"`
	EstimatedOdds      string   `json:"estimated_odds"`
	Lines              []string `json:"lines"`
}

// Text renders the summary the way the slip alert shows it.
func (s Summary) Text() string {
	var b strings.Builder
	b.WriteString("Multi Bet Summary:\n")
	fmt.Fprintf(&b, "- Winner: %s\n", s.Winner)
	fmt.Fprintf(&b, "- Total Legs: %d\n", s.TotalLegs)
	fmt.Fprintf(&b, "- Combined Percentage: %s\n", s.CombinedPercentage)
	fmt.Fprintf(&b, "- Estimated Odds: %s\n\n", s.EstimatedOdds)
	b.WriteString("Selected Bets:\n")
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "• %s\n", l)
	}
	return b.String()
}

// State is the full selection state of one session.
type State struct {
	Matchups       []apiclient.Matchup `json:"matchups"`
	MatchupsLoaded bool                `json:"matchups_loaded"`
	MatchupsErr    bool                `json:"matchups_error"`

	Matchup    *apiclient.Matchup `json:"matchup,omitempty"`
	Winner     string             `json:"winner,omitempty"`
	WinnerSide Side               `json:"winner_side,omitempty"`

	Roster     []string  `json:"roster"`
	RosterErr  bool      `json:"roster_error"`
	SixLock    *LockPick `json:"six_lock,omitempty"`
	WicketLock *LockPick `json:"wicket_lock,omitempty"`

	Built           bool                       `json:"built"`
	Recommendations []apiclient.Recommendation `json:"recommendations"`
	Markets         Markets                    `json:"markets"`

	SelectedBets []Pick `json:"selected_bets"`
	Picks        []Pick `json:"picks"`

	Busy    bool     `json:"busy"`
	Summary *Summary `json:"summary,omitempty"`
	Notice  string   `json:"notice,omitempty"`
}

// BuildEnabled reports whether the build action may run.
func (s State) BuildEnabled(requireLocks bool) bool {
	if s.Matchup == nil || s.Winner == "" || s.Busy {
		return false
	}
	if requireLocks {
		return s.SixLock != nil && s.WicketLock != nil
	}
	return true
}

// SlipBets returns the explicit legs in slip order: selected recommendations
// first, then ad-hoc picks, each (player, market) pair at most once.
func (s State) SlipBets() []Pick {
	seen := make(map[pairKey]bool, len(s.SelectedBets)+len(s.Picks))
	out := make([]Pick, 0, len(s.SelectedBets)+len(s.Picks))
	for _, list := range [][]Pick{s.SelectedBets, s.Picks} {
		for _, p := range list {
			if seen[p.pair()] {
				continue
			}
			seen[p.pair()] = true
			out = append(out, p)
		}
	}
	return out
}

// Legs is the winner leg plus every distinct explicit leg.
func (s State) Legs() int {
	return 1 + len(s.SlipBets())
}

// RecommendationChecked reports whether recommendation i is on the slip.
func (s State) RecommendationChecked(i int) bool {
	if i < 0 || i >= len(s.Recommendations) {
		return false
	}
	r := s.Recommendations[i]
	return s.hasPair(pairKey{r.PlayerName, r.Market})
}

// BoxChecked reports whether the market box with id is on the slip.
func (s State) BoxChecked(id string) bool {
	for _, p := range s.Picks {
		if p.ControlID == id {
			return true
		}
	}
	return false
}

func (s State) hasPair(k pairKey) bool {
	for _, list := range [][]Pick{s.SelectedBets, s.Picks} {
		for _, p := range list {
			if p.pair() == k {
				return true
			}
		}
	}
	return false
}

// clearWinner drops everything that depends on the predicted winner.
func (s *State) clearWinner() {
	s.Roster = nil
	s.RosterErr = false
	s.SixLock = nil
	s.WicketLock = nil
	s.Built = false
	s.Recommendations = nil
	s.Markets = Markets{}
	s.SelectedBets = nil
	s.Picks = nil
	s.Busy = false
	s.Summary = nil
}

// clearMatchup drops the winner and everything below it.
func (s *State) clearMatchup() {
	s.Winner = ""
	s.WinnerSide = ""
	s.clearWinner()
}

func (s State) clone() State {
	out := s
	out.Matchups = append([]apiclient.Matchup(nil), s.Matchups...)
	if s.Matchup != nil {
		m := *s.Matchup
		out.Matchup = &m
	}
	out.Roster = append([]string(nil), s.Roster...)
	if s.SixLock != nil {
		l := *s.SixLock
		out.SixLock = &l
	}
	if s.WicketLock != nil {
		l := *s.WicketLock
		out.WicketLock = &l
	}
	out.Recommendations = append([]apiclient.Recommendation(nil), s.Recommendations...)
	out.Markets = Markets{
		Batting:    append([]MarketBox(nil), s.Markets.Batting...),
		Bowling:    append([]MarketBox(nil), s.Markets.Bowling...),
		Additional: append([]MarketBox(nil), s.Markets.Additional...),
	}
	out.SelectedBets = append([]Pick(nil), s.SelectedBets...)
	out.Picks = append([]Pick(nil), s.Picks...)
	if s.Summary != nil {
		sum := *s.Summary
		sum.Lines = append([]string(nil), s.Summary.Lines...)
		out.Summary = &sum
	}
	return out
}
