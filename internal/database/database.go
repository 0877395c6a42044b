package database

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

func Connect(dsn string) (*sqlx.DB, error) {
	return sqlx.Connect("pgx", dsn)
}

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	id           UUID PRIMARY KEY,
	type         TEXT NOT NULL,
	value        DOUBLE PRECISION NOT NULL,
	unit         TEXT NOT NULL DEFAULT '',
	heater_state BOOLEAN,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS readings_type_recorded_at_idx ON readings (type, recorded_at DESC);
CREATE INDEX IF NOT EXISTS readings_recorded_at_idx ON readings (recorded_at DESC);

CREATE TABLE IF NOT EXISTS alerts (
	id          UUID PRIMARY KEY,
	temperature DOUBLE PRECISION NOT NULL,
	humidity    DOUBLE PRECISION NOT NULL,
	message     TEXT NOT NULL,
	resolved    BOOLEAN NOT NULL DEFAULT FALSE,
	raised_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS alerts_resolved_raised_at_idx ON alerts (resolved, raised_at DESC);
`

// Migrate creates the readings and alerts tables when they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
