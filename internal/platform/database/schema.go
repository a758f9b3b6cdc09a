package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id          UUID PRIMARY KEY,
		provider_id TEXT NOT NULL UNIQUE,
		email       TEXT NOT NULL UNIQUE,
		first_name  TEXT NOT NULL DEFAULT '',
		last_name   TEXT NOT NULL DEFAULT '',
		username    TEXT NOT NULL DEFAULT '',
		avatar_url  TEXT NOT NULL DEFAULT '',
		role        TEXT NOT NULL DEFAULT 'USER',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS problems (
		id              UUID PRIMARY KEY,
		title           TEXT NOT NULL,
		slug            TEXT NOT NULL UNIQUE,
		description     TEXT NOT NULL,
		difficulty      TEXT NOT NULL,
		starter_code    TEXT NOT NULL,
		function_name   TEXT NOT NULL,
		input_variables TEXT NOT NULL,
		output_variable TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS problem_tags (
		problem_id UUID NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
		sort_order INT  NOT NULL,
		tag        TEXT NOT NULL,
		PRIMARY KEY (problem_id, tag)
	)`,
	`CREATE TABLE IF NOT EXISTS problem_hints (
		problem_id UUID NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
		sort_order INT  NOT NULL,
		hint       TEXT NOT NULL,
		PRIMARY KEY (problem_id, sort_order)
	)`,
	`CREATE TABLE IF NOT EXISTS test_cases (
		id              UUID PRIMARY KEY,
		problem_id      UUID NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
		input           TEXT NOT NULL,
		expected_output TEXT NOT NULL,
		is_hidden       BOOLEAN NOT NULL DEFAULT FALSE,
		sort_order      INT NOT NULL DEFAULT 0,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_test_cases_problem_id ON test_cases(problem_id)`,
	`CREATE INDEX IF NOT EXISTS idx_problems_created_at ON problems(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)`,
}

// EnsureSchema applies the idempotent DDL at startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
