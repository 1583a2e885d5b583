package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/multibuilder/builder"
	"github.com/padraicbc/multibuilder/models"
)

// Ledger records submitted slips. It implements builder.SlipRecorder.
type Ledger struct {
	db  *bun.DB
	now func() time.Time
}

// NewLedger wraps an open bun handle.
func NewLedger(db *bun.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// RecordSlip stores a slip and its legs in one transaction.
func (l *Ledger) RecordSlip(ctx context.Context, s builder.SubmittedSlip) error {
	slip := slipFromSubmitted(s, l.now().UTC())

	return l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(slip).Returning("slip_id").Exec(ctx); err != nil {
			return fmt.Errorf("insert slip: %w", err)
		}
		if len(slip.Legs) == 0 {
			return nil
		}
		for _, leg := range slip.Legs {
			leg.SlipID = slip.SlipID
		}
		if _, err := tx.NewInsert().Model(&slip.Legs).Exec(ctx); err != nil {
			return fmt.Errorf("insert slip legs: %w", err)
		}
		return nil
	})
}

// RecentSlips returns the latest slips with their legs, newest first. An
// empty winner matches every slip.
func (l *Ledger) RecentSlips(ctx context.Context, limit int, winner string) ([]models.Slip, error) {
	var slips []models.Slip
	if err := l.recentQuery(&slips, limit, winner).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select slips: %w", err)
	}
	return slips, nil
}

func (l *Ledger) recentQuery(dst *[]models.Slip, limit int, winner string) *bun.SelectQuery {
	if limit <= 0 {
		limit = 20
	}
	q := l.db.NewSelect().
		Model(dst).
		Relation("Legs", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("sl.position ASC")
		}).
		OrderExpr("s.submitted_at DESC").
		Limit(limit)
	if w := strings.TrimSpace(winner); w != "" {
		q = q.Where("s.winner = ?", w)
	}
	return q
}

func slipFromSubmitted(s builder.SubmittedSlip, at time.Time) *models.Slip {
	slip := &models.Slip{
		SessionID:          s.SessionID,
		MatchID:            s.MatchID,
		Matchup:            s.Matchup,
		Winner:             s.Winner,
		TotalLegs:          s.Multi.TotalLegs,
		CombinedPercentage: s.Multi.CombinedPercentage,
		EstimatedOdds:      s.Multi.EstimatedOdds,
		SubmittedAt:        at,
	}
	for i, b := range s.Legs {
		slip.Legs = append(slip.Legs, &models.SlipLeg{
			Position:   i + 1,
			BetID:      b.ID,
			PlayerName: b.PlayerName,
			Market:     b.Market,
			Percentage: string(b.Percentage),
		})
	}
	return slip
}
