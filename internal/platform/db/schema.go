package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Each collection maps to one table; purchase payloads stay JSONB documents.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		phone TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		product_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL,
		purchase_price DOUBLE PRECISION NOT NULL DEFAULT 0,
		quantity BIGINT NOT NULL,
		rack TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id UUID PRIMARY KEY,
		customer JSONB NOT NULL DEFAULT '{}'::jsonb,
		products JSONB NOT NULL DEFAULT '[]'::jsonb,
		total DOUBLE PRECISION NOT NULL,
		date TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the tables backing the users, products and purchases
// collections when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return WithTx(ctx, pool, func(tx pgx.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("platform/db: ensure schema: %w", err)
			}
		}
		return nil
	})
}
