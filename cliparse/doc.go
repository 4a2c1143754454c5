// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first when present.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL URL or SQLite path (required)
  - DatabaseType: postgres or sqlite (default: postgres)
  - DatabaseKey: Postgres password injected into DatabaseURL
  - AdminKey: Key expected in X-Admin-Key (required)
  - AllowedOrigins: CORS origins, comma separated (default: any)
  - RedisURL: Leaderboard cache; disabled when empty
  - DayUTCOffset: Hours from UTC that define "today" (default: -8)
  - RoundQuota: Votes per judging round (default: 3)
  - VoteRateLimit: Votes per second per client (default: 5)
  - TrustedProxies: Proxy IPs or CIDRs whose X-Forwarded-For is honored (default: none)

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type
	-origins    Allowed origins
	-redis      Redis URL
	-trusted-proxies  Proxy IPs or CIDRs
	-db-key     Database password
	-admin-key  Admin key

# Environment Variables

Flags fall back to environment variables:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	ALLOWED_ORIGINS → -origins
	REDIS_URL       → -redis
	TRUSTED_PROXIES → -trusted-proxies
	DATABASE_KEY    → -db-key
	ADMIN_KEY       → -admin-key

DAY_UTC_OFFSET, ROUND_QUOTA and VOTE_RATE_LIMIT are read from the
environment only. CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_URL or ADMIN_KEY is missing, or if
a numeric setting is out of range.
*/
package cliparse
