// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the TrendOff API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - SubmissionHandler: submission intake, pairing, feeds and the leaderboard
  - VoteHandler: head-to-head votes
  - PromptHandler: daily challenge prompts

Handlers are created via constructor functions that accept *sql.DB and Config:

	submissionHandler := handlers.NewSubmissionHandler(db, cfg, board)

# Responses

Successful responses are wrapped as {"data": ...}. Failures use
{"error": ..., "message": ...} with the status derived from the store error:
invalid input is 400, a missing record 404, a lost update race 409, and
anything else 500.

# Judging

	GET  /submissions/pair?excludeIds=a,b → Pair (least recently judged first)
	POST /votes                            → Vote (+1 winner, -1 loser, floor 0)

# Administration

Clearing submissions and setting prompts require the X-Admin-Key header.
*/
package handlers
