// Package view projects a builder snapshot onto the page model the templates
// and the JSON state endpoint render.
package view

import (
	"github.com/padraicbc/multibuilder/apiclient"
	"github.com/padraicbc/multibuilder/builder"
)

// Fixed page text.
const (
	MatchupPlaceholder = "Select a match..."
	MatchupsError      = "Error loading matches"
	TeamPlaceholder    = "Select Match First"
	PlayerPlaceholder  = "Select a player..."
	PlayersError       = "Error loading players"
	BuildLabel         = "Build Multi"
	BuildBusyLabel     = "Loading..."
	NoRecommendations  = "No recommendations available"
	WinnerMarket       = "Match Winner"
	WinnerMark         = "✓"
)

const (
	sixLockLabel           = "Six Lock"
	wicketLockLabel        = "Wicket Lock"
	battingSectionTitle    = "Top Six Hitters"
	bowlingSectionTitle    = "Top Wicket Takers"
	additionalSectionTitle = "Additional Markets"
)

// Options carries what the snapshot alone does not know. Notice is the alert
// the caller consumed from the controller for this render.
type Options struct {
	RequireLocks bool
	Notice       string
}

// Option is one <option> of a select control.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// TeamButton is one of the two winner buttons.
type TeamButton struct {
	Side     builder.Side `json:"side"`
	Label    string       `json:"label"`
	Disabled bool         `json:"disabled"`
	Selected bool         `json:"selected"`
}

// LockControl is the player select for one lock category. Placeholder is
// the first, empty option: a prompt or the roster error.
type LockControl struct {
	Category    builder.LockCategory `json:"category"`
	Label       string               `json:"label"`
	Placeholder string               `json:"placeholder"`
	Options     []Option             `json:"options"`
	Disabled    bool                 `json:"disabled"`
	Lock        *builder.LockPick    `json:"lock,omitempty"`
}

// Button is an action button.
type Button struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// RecommendationRow is one checkable recommendation.
type RecommendationRow struct {
	Index      int               `json:"index"`
	ControlID  string            `json:"control_id"`
	PlayerName string            `json:"player_name"`
	Market     string            `json:"market"`
	Percentage apiclient.Percent `json:"percentage"`
	Checked    bool              `json:"checked"`
}

// Box is a market box with its checked projection.
type Box struct {
	builder.MarketBox
	Checked bool `json:"checked"`
}

// BoxSection is one group of market boxes.
type BoxSection struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Boxes []Box  `json:"boxes"`
}

// SlipRow is one line of the slip. The winner row has no id and cannot be
// removed.
type SlipRow struct {
	ID         string `json:"id,omitempty"`
	PlayerName string `json:"player_name"`
	Market     string `json:"market"`
	Percentage string `json:"percentage"`
	Winner     bool   `json:"winner,omitempty"`
}

// Page is everything one render needs.
type Page struct {
	Matchups    []Option     `json:"matchups"`
	MatchupsErr bool         `json:"matchups_error"`
	Teams       []TeamButton `json:"teams"`

	ShowLocks bool          `json:"show_locks"`
	Locks     []LockControl `json:"locks"`
	Build     Button        `json:"build"`

	ShowRecommendations  bool                `json:"show_recommendations"`
	Recommendations      []RecommendationRow `json:"recommendations"`
	EmptyRecommendations string              `json:"empty_recommendations,omitempty"`
	Markets              []BoxSection        `json:"markets"`

	ShowSlip bool      `json:"show_slip"`
	Slip     []SlipRow `json:"slip"`
	Legs     int       `json:"legs"`

	Summary     *builder.Summary `json:"summary,omitempty"`
	SummaryText string           `json:"summary_text,omitempty"`
	Notice      string           `json:"notice,omitempty"`
}

// Build projects s onto a Page. It reads nothing but its arguments.
func Build(s builder.State, opts Options) Page {
	p := Page{
		MatchupsErr: s.MatchupsErr,
		Matchups:    matchupOptions(s),
		Teams:       teamButtons(s),
		ShowLocks:   s.Winner != "",
		Locks:       lockControls(s),
		Build:       buildButton(s, opts.RequireLocks),
		Notice:      opts.Notice,
	}

	if s.Built {
		p.ShowRecommendations = true
		p.Recommendations = recommendationRows(s)
		if len(p.Recommendations) == 0 {
			p.EmptyRecommendations = NoRecommendations
		}
		p.Markets = boxSections(s)
	}

	bets := s.SlipBets()
	if len(bets) > 0 {
		p.ShowSlip = true
		p.Slip = make([]SlipRow, 0, len(bets)+1)
		p.Slip = append(p.Slip, SlipRow{PlayerName: s.Winner, Market: WinnerMarket, Percentage: WinnerMark, Winner: true})
		for _, b := range bets {
			p.Slip = append(p.Slip, SlipRow{
				ID:         b.ID,
				PlayerName: b.PlayerName,
				Market:     b.Market,
				Percentage: string(b.Percentage),
			})
		}
	}
	p.Legs = s.Legs()

	if s.Summary != nil {
		sum := *s.Summary
		sum.Lines = append([]string(nil), s.Summary.Lines...)
		p.Summary = &sum
		p.SummaryText = sum.Text()
	}
	return p
}

func matchupOptions(s builder.State) []Option {
	if s.MatchupsErr {
		return []Option{{Label: MatchupsError, Selected: true}}
	}
	out := make([]Option, 0, len(s.Matchups)+1)
	out = append(out, Option{Label: MatchupPlaceholder, Selected: s.Matchup == nil})
	for _, m := range s.Matchups {
		out = append(out, Option{
			Value:    m.ID,
			Label:    m.Label,
			Selected: s.Matchup != nil && s.Matchup.ID == m.ID,
		})
	}
	return out
}

func teamButtons(s builder.State) []TeamButton {
	if s.Matchup == nil {
		return []TeamButton{
			{Side: builder.SideHome, Label: TeamPlaceholder, Disabled: true},
			{Side: builder.SideAway, Label: TeamPlaceholder, Disabled: true},
		}
	}
	return []TeamButton{
		{Side: builder.SideHome, Label: s.Matchup.Team1, Selected: s.WinnerSide == builder.SideHome},
		{Side: builder.SideAway, Label: s.Matchup.Team2, Selected: s.WinnerSide == builder.SideAway},
	}
}

func lockControls(s builder.State) []LockControl {
	controls := []LockControl{
		{Category: builder.LockSix, Label: sixLockLabel, Lock: s.SixLock},
		{Category: builder.LockWicket, Label: wicketLockLabel, Lock: s.WicketLock},
	}
	for i := range controls {
		c := &controls[i]
		c.Disabled = s.Winner == ""
		c.Placeholder = PlayerPlaceholder
		if s.RosterErr {
			c.Placeholder = PlayersError
			c.Disabled = true
			continue
		}
		c.Options = make([]Option, 0, len(s.Roster))
		for _, name := range s.Roster {
			c.Options = append(c.Options, Option{
				Value:    name,
				Label:    name,
				Selected: c.Lock != nil && c.Lock.Player == name,
			})
		}
	}
	return controls
}

func buildButton(s builder.State, requireLocks bool) Button {
	if s.Busy {
		return Button{Label: BuildBusyLabel, Disabled: true}
	}
	return Button{Label: BuildLabel, Disabled: !s.BuildEnabled(requireLocks)}
}

func recommendationRows(s builder.State) []RecommendationRow {
	rows := make([]RecommendationRow, len(s.Recommendations))
	for i, r := range s.Recommendations {
		rows[i] = RecommendationRow{
			Index:      i,
			ControlID:  builder.RecommendationControlID(i),
			PlayerName: r.PlayerName,
			Market:     r.Market,
			Percentage: r.Percentage,
			Checked:    s.RecommendationChecked(i),
		}
	}
	return rows
}

func boxSections(s builder.State) []BoxSection {
	sections := []struct {
		key, title string
		boxes      []builder.MarketBox
	}{
		{builder.SectionBatting, battingSectionTitle, s.Markets.Batting},
		{builder.SectionBowling, bowlingSectionTitle, s.Markets.Bowling},
		{builder.SectionAdditional, additionalSectionTitle, s.Markets.Additional},
	}
	out := make([]BoxSection, 0, len(sections))
	for _, sec := range sections {
		if len(sec.boxes) == 0 {
			continue
		}
		boxes := make([]Box, len(sec.boxes))
		for i, b := range sec.boxes {
			boxes[i] = Box{MarketBox: b, Checked: s.BoxChecked(b.ID)}
		}
		out = append(out, BoxSection{Key: sec.key, Title: sec.title, Boxes: boxes})
	}
	return out
}
