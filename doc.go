// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the TrendOff API server.

TrendOff is a social voting game: players submit outfit images, judges pick
the better of two, and each decision moves the winner up one point and the
loser down one (never below zero).

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... ADMIN_KEY=... go run .

Or with flags:

	go run . -p 3318 -d "postgres://..." -admin-key "..."

A local .env file is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string or SQLite file
  - ADMIN_KEY (--admin-key): Secret for administrative endpoints

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - DATABASE_KEY (--db-key): Database password, injected into DATABASE_URL
  - ALLOWED_ORIGINS (--origins): Comma-separated CORS origins (default: any)
  - REDIS_URL (--redis): Enables the winners cache
  - DAY_UTC_OFFSET: Hours from UTC that define "today" (default: -8)
  - ROUND_QUOTA: Judging decisions per round, used by clients (default: 3)
  - VOTE_RATE_LIMIT: Votes per second per client (default: 5)

# Architecture

  - handlers: HTTP request handlers (submissions, votes, prompts)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, rate limiting
  - submissions: Submission persistence (create / attach generated image)
  - ratings: Vote application (RatingStore)
  - pairing: Least recently judged and daily random pair selection
  - prompts: Daily challenge prompts
  - cache: Redis-backed winners cache
  - round: Client-side judging round state machine
  - apiclient: HTTP client for the API
  - cmd/judge: Terminal judging client
*/
package main
