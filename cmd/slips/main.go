// cmd/slips/main.go
// Prints the most recently submitted slips from the ledger.
//
// Usage:
//
//	go run ./cmd/slips -limit 10 -winner "Brisbane Heat"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/padraicbc/multibuilder/config"
	bundb "github.com/padraicbc/multibuilder/db"
	"github.com/padraicbc/multibuilder/models"
)

func main() {
	limit := flag.Int("limit", 20, "number of slips to print")
	winner := flag.String("winner", "", "only slips backing this team")
	flag.Parse()

	cfg := config.LoadLedger()
	db := bundb.Setup(cfg)
	defer db.Close()

	slips, err := bundb.NewLedger(db).RecentSlips(context.Background(), *limit, *winner)
	if err != nil {
		log.Fatal(err)
	}
	if len(slips) == 0 {
		fmt.Println("no slips recorded")
		return
	}
	for _, s := range slips {
		printSlip(os.Stdout, s)
	}
}

func printSlip(w io.Writer, s models.Slip) {
	fmt.Fprintf(w, "#%d  %s  %s\n", s.SlipID, s.SubmittedAt.Local().Format("2006-01-02 15:04"), s.Matchup)
	fmt.Fprintf(w, "  winner: %s  legs: %d  combined: %s  odds: %s\n",
		s.Winner, s.TotalLegs, s.CombinedPercentage, s.EstimatedOdds)
	for _, l := range s.Legs {
		fmt.Fprintf(w, "  %d. %s - %s (%s)\n", l.Position, l.PlayerName, l.Market, l.Percentage)
	}
}
