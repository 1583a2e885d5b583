package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Slip is one submitted and priced multi.
type Slip struct {
	bun.BaseModel `bun:"table:slips,alias:s"`

	SlipID             int64     `bun:"slip_id,pk,autoincrement" json:"slipID"`
	SessionID          string    `bun:"session_id,notnull" json:"sessionID"`
	MatchID            string    `bun:"match_id,notnull" json:"matchID"`
	Matchup            string    `bun:"matchup,notnull" json:"matchup"`
	Winner             string    `bun:"winner,notnull" json:"winner"`
	TotalLegs          int       `bun:"total_legs,notnull" json:"totalLegs"`
	CombinedPercentage string    `bun:"combined_percentage,notnull" json:"combinedPercentage"`
	EstimatedOdds      string    `bun:"estimated_odds,notnull" json:"estimatedOdds"`
	SubmittedAt        time.Time `bun:"submitted_at,notnull,default:current_timestamp" json:"submittedAt"`

	Legs []*SlipLeg `bun:"rel:has-many,join:slip_id=slip_id" json:"legs"`
}

// SlipLeg is one explicit leg of a submitted slip. The winner leg is implied
// by Slip.Winner and not stored.
type SlipLeg struct {
	bun.BaseModel `bun:"table:slip_legs,alias:sl"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	SlipID     int64  `bun:"slip_id,notnull" json:"slipID"`
	Position   int    `bun:"position,notnull" json:"position"`
	BetID      string `bun:"bet_id,notnull" json:"betID"`
	PlayerName string `bun:"player_name,notnull" json:"playerName"`
	Market     string `bun:"market,notnull" json:"market"`
	Percentage string `bun:"percentage,notnull" json:"percentage"`
}
