package db

import (
	"context"
	"database/sql"
	"fmt"
)

const blogMigration = `
CREATE SCHEMA IF NOT EXISTS blog;

CREATE TABLE IF NOT EXISTS blog.articles (
    id uuid PRIMARY KEY,
    title text NOT NULL,
    description text NOT NULL,
    content text NOT NULL,
    author text NOT NULL,
    status text NOT NULL DEFAULT 'draft'
        CHECK (status IN ('published', 'draft', 'trash')),
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS articles_status_created_at_idx
ON blog.articles (status, created_at DESC);
`

// Migrate creates the blog schema. It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, blogMigration); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
