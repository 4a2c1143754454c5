// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the TrendOff API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, board)

board is the leaderboard cache; pass cache.Noop{} when Redis is not configured.

# Endpoints

Health:

	GET /health

Submissions:

	GET    /submissions                    - All submissions
	GET    /submissions/pair               - Least recently judged, ?excludeIds=a,b&size=2
	GET    /submissions/daily-pair         - Two random submissions from today
	GET    /submissions/recent             - Most recently updated, ?offset=6&limit=1
	GET    /submissions/winners            - Highest rated, ?limit=3
	GET    /submissions/owner/{ownerId}    - Owner's latest submission
	POST   /submissions                    - Create, or attach a generated image
	DELETE /submissions                    - Remove everything (X-Admin-Key)

Judging (rate limited per client):

	POST /votes
	GET  /rounds/settings  - Votes per round

Daily challenge:

	GET /prompts/today
	PUT /prompts/{date} (X-Admin-Key)
*/
package router
