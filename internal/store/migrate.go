package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS production_records (
		report_date TEXT NOT NULL,
		company     TEXT NOT NULL,
		operation   TEXT NOT NULL,
		field       TEXT NOT NULL,
		gov         DOUBLE PRECISION NOT NULL DEFAULT 0,
		gsv         DOUBLE PRECISION NOT NULL DEFAULT 0,
		nsv         DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (report_date, company, operation, field)
	)`,
	`CREATE TABLE IF NOT EXISTS nominations (
		report_date TEXT NOT NULL,
		company     TEXT NOT NULL,
		oil_type    TEXT NOT NULL,
		nominated   DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (report_date, company, oil_type)
	)`,
	`CREATE TABLE IF NOT EXISTS ingestion_history (
		id           TEXT PRIMARY KEY,
		kind         TEXT NOT NULL,
		source_file  TEXT NOT NULL,
		period_start TEXT NOT NULL DEFAULT '',
		period_end   TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		records      INTEGER NOT NULL DEFAULT 0,
		removed      INTEGER NOT NULL DEFAULT 0,
		error        TEXT NOT NULL DEFAULT '',
		processed_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ingestion_history_source ON ingestion_history (kind, source_file)`,
}

// Migrate creates the ledger tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate ledger schema: %w", err)
		}
	}
	return nil
}
