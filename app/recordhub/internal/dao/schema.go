package dao

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/recordhub/pkg/database/postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		roles         INTEGER[] NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS persons (
		id         TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name  TEXT NOT NULL,
		birth_date DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		start_date     DATE NOT NULL,
		end_date       DATE,
		contractor_ids TEXT[] NOT NULL DEFAULT '{}',
		tasks          JSONB NOT NULL DEFAULT '[]',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS projects_contractor_ids_idx ON projects USING GIN (contractor_ids)`,
}

// Migrate 建表，可重复执行
func Migrate(ctx context.Context, q postgres.Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate schema")
		}
	}
	return nil
}
