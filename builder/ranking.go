package builder

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/padraicbc/multibuilder/apiclient"
)

// Box sections.
const (
	SectionBatting    = "batting"
	SectionBowling    = "bowling"
	SectionAdditional = "additional"
)

const (
	topPerMarket    = 3
	maxAdditional   = 5
	shownAdditional = 4
)

type market struct {
	key   string
	label string
	bat   bool
	pct   func(apiclient.PlayerRecord) apiclient.Percent
	count func(apiclient.PlayerRecord) int
}

var (
	marketSix = market{
		key: "six", label: "Hit a Six", bat: true,
		pct: func(p apiclient.PlayerRecord) apiclient.Percent { return p.BattingStats.SixHitPct },
	}
	marketWicket = market{
		key: "wicket", label: "1+ Wickets",
		pct: func(p apiclient.PlayerRecord) apiclient.Percent { return p.BowlingStats.Wicket1PlusPct },
	}

	// Batting markets come before bowling ones; the display cap relies on it.
	additionalMarkets = []market{
		{
			key: "runs10", label: "10+ Runs", bat: true,
			pct:   func(p apiclient.PlayerRecord) apiclient.Percent { return p.BattingStats.Runs10PlusPct },
			count: func(p apiclient.PlayerRecord) int { return p.BattingStats.Runs10Plus },
		},
		{
			key: "runs20", label: "20+ Runs", bat: true,
			pct:   func(p apiclient.PlayerRecord) apiclient.Percent { return p.BattingStats.Runs20PlusPct },
			count: func(p apiclient.PlayerRecord) int { return p.BattingStats.Runs20Plus },
		},
		{
			key: "top_scorer", label: "Top Scorer", bat: true,
			pct:   func(p apiclient.PlayerRecord) apiclient.Percent { return p.BattingStats.TopScorerPct },
			count: func(p apiclient.PlayerRecord) int { return p.BattingStats.TopScorer },
		},
		{
			key: "wicket2", label: "2+ Wickets",
			pct:   func(p apiclient.PlayerRecord) apiclient.Percent { return p.BowlingStats.Wicket2PlusPct },
			count: func(p apiclient.PlayerRecord) int { return p.BowlingStats.Wicket2Plus },
		},
		{
			key: "top_wicket_taker", label: "Top Wicket Taker",
			pct:   func(p apiclient.PlayerRecord) apiclient.Percent { return p.BowlingStats.TopWicketTakerPct },
			count: func(p apiclient.PlayerRecord) int { return p.BowlingStats.TopWicketTaker },
		},
	}
)

// BoxID builds the synthetic id of a market box.
func BoxID(section string, rank int, key string) string {
	return fmt.Sprintf("%s-%d-%s", section, rank, key)
}

// RankMarkets derives the market boxes for a roster-with-statistics payload.
func RankMarkets(players []apiclient.PlayerRecord) Markets {
	var batters, bowlers []apiclient.PlayerRecord
	for _, p := range players {
		if p.BattingStats.Innings > 0 || p.BattingStats.Runs > 0 {
			batters = append(batters, p)
		}
		if p.BowlingStats.Innings > 0 || p.BowlingStats.Wickets > 0 {
			bowlers = append(bowlers, p)
		}
	}

	return Markets{
		Batting:    topByPercentage(SectionBatting, marketSix, batters),
		Bowling:    topByPercentage(SectionBowling, marketWicket, bowlers),
		Additional: bestByCount(batters, bowlers),
	}
}

type rankedPlayer struct {
	name  string
	pct   apiclient.Percent
	value decimal.Decimal
}

// sortByPercentage drops "0.0%" and unparseable values and orders the rest by
// descending numeric value. Ties keep input order.
func sortByPercentage(m market, players []apiclient.PlayerRecord) []rankedPlayer {
	out := make([]rankedPlayer, 0, len(players))
	for _, p := range players {
		pct := m.pct(p)
		if !pct.Ranked() {
			continue
		}
		v, err := pct.Value()
		if err != nil {
			continue
		}
		out = append(out, rankedPlayer{name: p.Name, pct: pct, value: v})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].value.GreaterThan(out[j].value)
	})
	return out
}

func topByPercentage(section string, m market, players []apiclient.PlayerRecord) []MarketBox {
	ranked := sortByPercentage(m, players)
	if len(ranked) > topPerMarket {
		ranked = ranked[:topPerMarket]
	}
	boxes := make([]MarketBox, 0, len(ranked))
	for i, r := range ranked {
		boxes = append(boxes, MarketBox{
			ID:         BoxID(section, i+1, m.key),
			Section:    section,
			Rank:       i + 1,
			MarketKey:  m.key,
			Market:     m.label,
			Player:     r.name,
			Percentage: r.pct,
		})
	}
	return boxes
}

func bestByCount(batters, bowlers []apiclient.PlayerRecord) []MarketBox {
	boxes := make([]MarketBox, 0, maxAdditional)
	for _, m := range additionalMarkets {
		if len(boxes) == maxAdditional {
			break
		}
		pool := bowlers
		if m.bat {
			pool = batters
		}

		best := -1
		for i, p := range pool {
			if !m.pct(p).Ranked() {
				continue
			}
			if best < 0 || m.count(p) > m.count(pool[best]) {
				best = i
			}
		}
		if best < 0 {
			continue
		}

		rank := len(boxes) + 1
		boxes = append(boxes, MarketBox{
			ID:         BoxID(SectionAdditional, rank, m.key),
			Section:    SectionAdditional,
			Rank:       rank,
			MarketKey:  m.key,
			Market:     m.label,
			Player:     pool[best].Name,
			Percentage: m.pct(pool[best]),
		})
	}
	if len(boxes) > shownAdditional {
		boxes = boxes[:shownAdditional]
	}
	return boxes
}
