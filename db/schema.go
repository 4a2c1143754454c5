// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The DDL sticks to types both Postgres and SQLite accept.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// DropSchema removes every table. Safe to call on an empty database.
func DropSchema(db *sql.DB) error {
	_, err := db.Exec(`
		DROP TABLE IF EXISTS daily_prompt;
		DROP TABLE IF EXISTS submission;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop schema: %w", err)
	}
	return nil
}

const schema = `
-- Submissions
CREATE TABLE IF NOT EXISTS submission (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    image TEXT NOT NULL,
    generated_image TEXT,
    title TEXT,
    rating INTEGER DEFAULT 1000 CHECK (rating >= 0),
    product_ids TEXT,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submission_updated_at ON submission(updated_at, id);
CREATE INDEX IF NOT EXISTS idx_submission_created_at ON submission(created_at);
CREATE INDEX IF NOT EXISTS idx_submission_owner_id ON submission(owner_id);
CREATE INDEX IF NOT EXISTS idx_submission_rating ON submission(rating);

-- Daily challenge prompts
CREATE TABLE IF NOT EXISTS daily_prompt (
    prompt_date TEXT PRIMARY KEY,
    prompt TEXT NOT NULL
);
`
