package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/padraicbc/multibuilder/models"
)

func TestPrintSlip(t *testing.T) {
	var buf bytes.Buffer
	printSlip(&buf, models.Slip{
		SlipID:             7,
		Matchup:            "Heat vs Stars",
		Winner:             "Brisbane Heat",
		TotalLegs:          2,
		CombinedPercentage: "45.0%",
		EstimatedOdds:      "2.22",
		SubmittedAt:        time.Date(2026, 1, 12, 8, 30, 0, 0, time.UTC),
		Legs: []*models.SlipLeg{
			{Position: 1, PlayerName: "Colin Munro", Market: "Hit a Six", Percentage: "45.0%"},
		},
	})

	out := buf.String()
	for _, want := range []string{
		"#7  ",
		"Heat vs Stars",
		"winner: Brisbane Heat  legs: 2  combined: 45.0%  odds: 2.22",
		"  1. Colin Munro - Hit a Six (45.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
