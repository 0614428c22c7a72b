package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'version_status') THEN
			CREATE TYPE version_status AS ENUM ('draft', 'review', 'submitted', 'won');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'revenue_model') THEN
			CREATE TYPE revenue_model AS ENUM ('fixed', 't_m', 'milestone');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		client_name VARCHAR(255),
		revenue_model revenue_model NOT NULL DEFAULT 'fixed',
		currency VARCHAR(8) NOT NULL DEFAULT 'USD',
		sprint_duration_weeks INT NOT NULL DEFAULT 2,
		fixed_revenue NUMERIC(18,2),
		created_by_user_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS project_versions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		version_number INT NOT NULL,
		status version_status NOT NULL DEFAULT 'draft',
		is_locked BOOLEAN NOT NULL DEFAULT FALSE,
		locked_by_user_id UUID,
		locked_at TIMESTAMPTZ,
		contingency_pct NUMERIC(7,3) NOT NULL DEFAULT 0,
		management_reserve_pct NUMERIC(7,3) NOT NULL DEFAULT 0,
		estimation_authority VARCHAR(64),
		notes TEXT,
		sprint_duration_weeks INT NOT NULL DEFAULT 2,
		working_days_per_month INT NOT NULL DEFAULT 20,
		hours_per_day INT NOT NULL DEFAULT 8,
		created_by_user_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (project_id, version_number)
	);`,
	`CREATE TABLE IF NOT EXISTS team_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		version_id UUID NOT NULL REFERENCES project_versions(id) ON DELETE CASCADE,
		role VARCHAR(128) NOT NULL,
		member_name VARCHAR(255),
		cost_rate_per_day NUMERIC(18,2),
		billing_rate_per_day NUMERIC(18,2),
		monthly_cost_rate NUMERIC(18,2),
		utilization_pct NUMERIC(7,3) NOT NULL DEFAULT 100,
		working_days_per_month INT NOT NULL DEFAULT 20,
		hours_per_day INT NOT NULL DEFAULT 8
	);`,
	`CREATE TABLE IF NOT EXISTS features (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		version_id UUID NOT NULL REFERENCES project_versions(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		priority INT NOT NULL DEFAULT 0,
		effort_hours NUMERIC(18,2) NOT NULL DEFAULT 0,
		effort_story_points INT,
		tasks JSONB NOT NULL DEFAULT '[]'::jsonb
	);`,
	`CREATE TABLE IF NOT EXISTS milestones (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS sprint_plan_rows (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		version_id UUID NOT NULL REFERENCES project_versions(id) ON DELETE CASCADE,
		row_type VARCHAR(16) NOT NULL,
		sprint_num INT,
		week_num INT,
		phase VARCHAR(16),
		allocations JSONB NOT NULL DEFAULT '{}'::jsonb,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS role_default_rates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		role VARCHAR(128) NOT NULL,
		cost_rate_per_day NUMERIC(18,2) NOT NULL DEFAULT 0,
		billing_rate_per_day NUMERIC(18,2) NOT NULL DEFAULT 0
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS role_default_rates_role_key
		ON role_default_rates (LOWER(role));`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID,
		version_id UUID,
		user_id UUID NOT NULL,
		action VARCHAR(64) NOT NULL,
		entity_type VARCHAR(64) NOT NULL,
		entity_id UUID,
		old_value TEXT,
		new_value TEXT,
		reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS audit_logs_project_idx ON audit_logs (project_id, created_at);`,
	`CREATE TABLE IF NOT EXISTS estimation_history (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		version_id UUID NOT NULL,
		feature_id UUID NOT NULL,
		previous_effort NUMERIC(18,2) NOT NULL,
		new_effort NUMERIC(18,2) NOT NULL,
		changed_by_user_id UUID NOT NULL,
		changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		authority VARCHAR(64) NOT NULL DEFAULT 'manual'
	);`,
	`CREATE TABLE IF NOT EXISTS justification_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		version_id UUID NOT NULL,
		feature_id UUID NOT NULL,
		previous_effort NUMERIC(18,2) NOT NULL,
		new_effort NUMERIC(18,2) NOT NULL,
		justification TEXT NOT NULL,
		created_by_user_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS feature_drafts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		version_id UUID NOT NULL REFERENCES project_versions(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		priority INT NOT NULL DEFAULT 0,
		effort_hours NUMERIC(18,2) NOT NULL DEFAULT 0,
		tasks JSONB NOT NULL DEFAULT '[]'::jsonb,
		raw_source TEXT,
		promoted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS team_member_drafts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		version_id UUID NOT NULL REFERENCES project_versions(id) ON DELETE CASCADE,
		role VARCHAR(128) NOT NULL,
		utilization_pct NUMERIC(7,3) NOT NULL DEFAULT 100,
		cost_rate_per_day NUMERIC(18,2),
		billing_rate_per_day NUMERIC(18,2),
		raw_source TEXT,
		promoted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS currency_snapshots (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		base_currency VARCHAR(8) NOT NULL,
		target_currency VARCHAR(8) NOT NULL,
		rate NUMERIC(18,8) NOT NULL,
		snapshot_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		approved_by_user_id UUID
	);`,
}

// Migrate applies the DDL statements in order. Every statement is idempotent,
// so reruns on startup are safe.
func Migrate(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
