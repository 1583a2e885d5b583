package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/padraicbc/multibuilder/config"
	"github.com/padraicbc/multibuilder/models"
)

// Open returns a bun handle for the ledger DSN without connecting.
func Open(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Setup opens the ledger database and fails fast if it is unreachable.
func Setup(cfg *config.Config) *bun.DB {
	db := Open(cfg)
	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	return db
}

// CreateTables creates the ledger tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.Slip)(nil),
		(*models.SlipLeg)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	constraints := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'slip_legs_slip_fk') THEN ALTER TABLE slip_legs ADD CONSTRAINT slip_legs_slip_fk FOREIGN KEY (slip_id) REFERENCES slips (slip_id) ON DELETE CASCADE; END IF; END $$`,
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'slip_legs_no_dupes') THEN ALTER TABLE slip_legs ADD CONSTRAINT slip_legs_no_dupes UNIQUE (slip_id, position); END IF; END $$`,
		`CREATE INDEX IF NOT EXISTS slips_winner_idx ON slips (winner, submitted_at DESC)`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("constraint: %v", err)
		}
	}

	return nil
}
