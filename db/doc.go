// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open picks the driver from the configuration (lib/pq for Postgres,
modernc.org/sqlite for SQLite) and pings the server:

	conn, err := db.Open(ctx, cfg)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - submission: one judged image with its rating
  - daily_prompt: the daily challenge prompt, keyed by YYYY-MM-DD

# Indexes

  - submission.(updated_at, id): least recently judged ordering
  - submission.created_at: daily window selection
  - submission.owner_id: attaching generated images
  - submission.rating: winners
*/
package db
