package store

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so repeated startups are safe.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			price NUMERIC(12,2) NOT NULL,
			discount_price NUMERIC(12,2),
			description TEXT NOT NULL DEFAULT '',
			images JSONB NOT NULL DEFAULT '[]',
			dynamic_fields JSONB NOT NULL DEFAULT '[]',
			predefined_fields JSONB NOT NULL DEFAULT '[]',
			offers JSONB NOT NULL DEFAULT '[]',
			hidden_fields JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS order_inquiries (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL,
			product_name TEXT NOT NULL,
			customer JSONB NOT NULL,
			quantity INTEGER,
			selected_variants JSONB NOT NULL DEFAULT '{}',
			total_price NUMERIC(12,2),
			status TEXT NOT NULL DEFAULT 'pending',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_order_inquiries_status ON order_inquiries(status)`,
		`CREATE INDEX IF NOT EXISTS idx_order_inquiries_product ON order_inquiries(product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_inquiries_created ON order_inquiries(created_at)`,
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'admin',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	s.logger.Info("Database schema ready")
	return nil
}
