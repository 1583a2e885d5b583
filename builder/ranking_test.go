package builder

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/padraicbc/multibuilder/apiclient"
)

func batter(name string, six apiclient.Percent) apiclient.PlayerRecord {
	return apiclient.PlayerRecord{
		Name:         name,
		BattingStats: apiclient.BattingStats{Innings: 10, Runs: 200, SixHitPct: six},
	}
}

func bowler(name string, wkt apiclient.Percent) apiclient.PlayerRecord {
	return apiclient.PlayerRecord{
		Name:         name,
		BowlingStats: apiclient.BowlingStats{Innings: 10, Wickets: 8, Wicket1PlusPct: wkt},
	}
}

func names(boxes []MarketBox) []string {
	out := make([]string, len(boxes))
	for i, b := range boxes {
		out[i] = b.Player
	}
	return out
}

func TestRankMarketsExcludesNoData(t *testing.T) {
	m := RankMarkets([]apiclient.PlayerRecord{
		batter("Finn Allen", "50.0%"),
		batter("Cooper Connolly", "0.0%"),
	})

	if len(m.Batting) != 1 {
		t.Fatalf("batting boxes = %v; want one", names(m.Batting))
	}
	got := m.Batting[0]
	want := MarketBox{
		ID: "batting-1-six", Section: SectionBatting, Rank: 1, MarketKey: "six",
		Market: "Hit a Six", Player: "Finn Allen", Percentage: "50.0%",
	}
	if got != want {
		t.Fatalf("box = %+v; want %+v", got, want)
	}
}

func TestRankMarketsTopThreeDescendingStable(t *testing.T) {
	m := RankMarkets([]apiclient.PlayerRecord{
		batter("A", "20.0%"),
		batter("B", "45.5%"),
		batter("C", "20.0%"),
		batter("D", "9.0%"),
		batter("E", "100%"),
		batter("F", ""),
	})

	want := []string{"E", "B", "A"}
	if got := names(m.Batting); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("batting = %v; want %v", got, want)
	}

	m = RankMarkets([]apiclient.PlayerRecord{
		batter("A", "20.0%"),
		batter("C", "20.0%"),
		batter("B", "10.0%"),
	})
	want = []string{"A", "C", "B"}
	if got := names(m.Batting); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("tie order = %v; want %v", got, want)
	}
}

func TestSortByPercentageMonotonicAndStable(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		players := make([]apiclient.PlayerRecord, 12)
		for i := range players {
			pct := apiclient.Percent(fmt.Sprintf("%d.%d%%", rng.Intn(5), rng.Intn(10)))
			players[i] = batter(fmt.Sprintf("p%02d", i), pct)
		}

		ranked := sortByPercentage(marketSix, players)
		for i := 1; i < len(ranked); i++ {
			prev, cur := ranked[i-1], ranked[i]
			if prev.value.LessThan(cur.value) {
				t.Fatalf("round %d: %s (%s) ranked above %s (%s)", round, prev.name, prev.pct, cur.name, cur.pct)
			}
			if prev.value.Equal(cur.value) && prev.name > cur.name {
				t.Fatalf("round %d: tie %s/%s lost input order", round, prev.name, cur.name)
			}
		}
		for _, r := range ranked {
			if r.pct == apiclient.NoData {
				t.Fatalf("round %d: %s ranked with 0.0%%", round, r.name)
			}
		}
	}
}

func TestRankMarketsPartition(t *testing.T) {
	allRounder := apiclient.PlayerRecord{
		Name:         "Glenn Maxwell",
		BattingStats: apiclient.BattingStats{Runs: 150, SixHitPct: "40.0%"},
		BowlingStats: apiclient.BowlingStats{Wickets: 3, Wicket1PlusPct: "35.0%"},
	}
	benched := apiclient.PlayerRecord{
		Name:         "Reserve",
		BattingStats: apiclient.BattingStats{SixHitPct: "90.0%"},
		BowlingStats: apiclient.BowlingStats{Wicket1PlusPct: "90.0%"},
	}

	m := RankMarkets([]apiclient.PlayerRecord{allRounder, benched, bowler("Adam Zampa", "60.0%")})

	if got := names(m.Batting); fmt.Sprint(got) != "[Glenn Maxwell]" {
		t.Errorf("batting = %v", got)
	}
	if got := names(m.Bowling); fmt.Sprint(got) != "[Adam Zampa Glenn Maxwell]" {
		t.Errorf("bowling = %v", got)
	}
	if m.Bowling[0].ID != "bowling-1-wicket" || m.Bowling[1].ID != "bowling-2-wicket" {
		t.Errorf("bowling ids = %s, %s", m.Bowling[0].ID, m.Bowling[1].ID)
	}
}

func TestRankMarketsAdditional(t *testing.T) {
	bat1 := apiclient.PlayerRecord{
		Name: "Bat One",
		BattingStats: apiclient.BattingStats{
			Innings: 10, Runs10PlusPct: "70.0%", Runs10Plus: 7, Runs20PlusPct: "0.0%", Runs20Plus: 99,
			TopScorerPct: "20.0%", TopScorer: 2,
		},
	}
	bat2 := apiclient.PlayerRecord{
		Name: "Bat Two",
		BattingStats: apiclient.BattingStats{
			Innings: 10, Runs10PlusPct: "60.0%", Runs10Plus: 7, Runs20PlusPct: "30.0%", Runs20Plus: 3,
			TopScorerPct: "30.0%", TopScorer: 3,
		},
	}
	bowl := apiclient.PlayerRecord{
		Name: "Bowl One",
		BowlingStats: apiclient.BowlingStats{
			Innings: 10, Wicket2PlusPct: "25.0%", Wicket2Plus: 4,
			TopWicketTakerPct: "40.0%", TopWicketTaker: 5,
		},
	}

	m := RankMarkets([]apiclient.PlayerRecord{bat1, bat2, bowl})

	want := []struct{ id, player string }{
		{"additional-1-runs10", "Bat One"},
		{"additional-2-runs20", "Bat Two"},
		{"additional-3-top_scorer", "Bat Two"},
		{"additional-4-wicket2", "Bowl One"},
	}
	if len(m.Additional) != len(want) {
		t.Fatalf("additional = %+v; want %d boxes", m.Additional, len(want))
	}
	for i, w := range want {
		if m.Additional[i].ID != w.id || m.Additional[i].Player != w.player {
			t.Errorf("additional[%d] = %s/%s; want %s/%s", i, m.Additional[i].ID, m.Additional[i].Player, w.id, w.player)
		}
	}
}

func TestRankMarketsAdditionalSkipsEmptyMarkets(t *testing.T) {
	bowl := apiclient.PlayerRecord{
		Name: "Bowl One",
		BowlingStats: apiclient.BowlingStats{
			Innings: 4, Wicket2PlusPct: "0.0%", Wicket2Plus: 9,
			TopWicketTakerPct: "40.0%", TopWicketTaker: 5,
		},
	}

	m := RankMarkets([]apiclient.PlayerRecord{bowl})
	if len(m.Additional) != 1 || m.Additional[0].ID != "additional-1-top_wicket_taker" {
		t.Fatalf("additional = %+v", m.Additional)
	}
}

func TestRankMarketsBoxIDsUnique(t *testing.T) {
	players := []apiclient.PlayerRecord{
		{
			Name: "Everywhere",
			BattingStats: apiclient.BattingStats{
				Innings: 1, SixHitPct: "10.0%", Runs10PlusPct: "10.0%", Runs20PlusPct: "10.0%", TopScorerPct: "10.0%",
			},
			BowlingStats: apiclient.BowlingStats{
				Innings: 1, Wicket1PlusPct: "10.0%", Wicket2PlusPct: "10.0%", TopWicketTakerPct: "10.0%",
			},
		},
	}
	m := RankMarkets(players)

	seen := map[string]bool{}
	for _, group := range [][]MarketBox{m.Batting, m.Bowling, m.Additional} {
		for _, b := range group {
			if seen[b.ID] {
				t.Fatalf("duplicate box id %s", b.ID)
			}
			seen[b.ID] = true
		}
	}
	if len(seen) != 6 {
		t.Fatalf("boxes = %d; want 6 (1 batting, 1 bowling, 4 additional)", len(seen))
	}
}
