// Package postgres opens the shared database handle and applies the schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"github.com/Rolando1980/client-geo-logger/internal/platform/config"
)

// Open connects to PostgreSQL and verifies connectivity.
// Returns nil if the DSN is empty (in-memory mode).
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// Migrate applies the schema. Statements are idempotent so startup can run
// them unconditionally.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,
	`CREATE TABLE IF NOT EXISTS clients (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id),
		name TEXT NOT NULL,
		address TEXT NOT NULL,
		district TEXT NOT NULL,
		province TEXT NOT NULL,
		department TEXT NOT NULL,
		document_type TEXT NOT NULL,
		document_number TEXT NOT NULL,
		contact_name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		seller TEXT NOT NULL,
		business_line TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS clients_user_idx ON clients (user_id)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id),
		client_id UUID NOT NULL REFERENCES clients (id),
		client_name TEXT NOT NULL,
		purpose TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		visit_date TEXT NOT NULL,
		visit_time TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS visits_user_created_idx ON visits (user_id, created_at DESC)`,
}
