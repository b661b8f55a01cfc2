package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// schemaStatements create the per-owner workspace tables. Every statement is
// idempotent so the list can run on each start.
var schemaStatements = []struct {
	name  string
	query string
}{
	{
		name: "school_settings",
		query: `CREATE TABLE IF NOT EXISTS school_settings (
	owner_id TEXT PRIMARY KEY,
	school_name TEXT NOT NULL DEFAULT '',
	board_type TEXT NOT NULL DEFAULT 'CBSE',
	academic_year TEXT NOT NULL DEFAULT '',
	divisions_per_grade JSONB NOT NULL DEFAULT '{}'::jsonb,
	custom_subjects TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{name: "teachers", query: recordTable("teachers")},
	{name: "classes", query: recordTable("classes")},
	{name: "subjects", query: recordTable("subjects")},
	{
		name: "time_slot_config",
		query: `CREATE TABLE IF NOT EXISTS time_slot_config (
	owner_id TEXT PRIMARY KEY,
	weekday_slots JSONB NOT NULL DEFAULT '[]'::jsonb,
	saturday_slots JSONB NOT NULL DEFAULT '[]'::jsonb,
	is_saturday_half_day BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		name: "timetable_versions",
		query: `CREATE TABLE IF NOT EXISTS timetable_versions (
	owner_id TEXT PRIMARY KEY,
	version_id TEXT NOT NULL,
	status TEXT NOT NULL,
	score INTEGER NOT NULL DEFAULT 0,
	version_data JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
}

func recordTable(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY,
	owner_id TEXT NOT NULL,
	record_id TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	data JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (owner_id, record_id)
)`, table)
}

// RunMigrations applies the workspace schema.
func RunMigrations(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt.query); err != nil {
			return fmt.Errorf("migrate %s: %w", stmt.name, err)
		}
		logger.Debug("schema ensured", zap.String("table", stmt.name))
	}
	logger.Info("database migrations completed", zap.Int("tables", len(schemaStatements)))
	return nil
}
