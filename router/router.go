// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"math"
	"net/http"

	"github.com/danielhkuo/trend-off/auth"
	"github.com/danielhkuo/trend-off/cache"
	"github.com/danielhkuo/trend-off/cliparse"
	"github.com/danielhkuo/trend-off/handlers"
	"github.com/danielhkuo/trend-off/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, board cache.Leaderboard) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	submissionHandler := handlers.NewSubmissionHandler(db, cfg, board)
	voteHandler := handlers.NewVoteHandler(db, cfg, board)
	promptHandler := handlers.NewPromptHandler(db, cfg)
	roundHandler := handlers.NewRoundHandler(cfg)

	clientIP := middleware.ClientIPBehind(cfg.TrustedProxies)
	voteLimiter := middleware.NewRateLimiter(cfg.VoteRateLimit, int(math.Ceil(cfg.VoteRateLimit*2)), func(r *http.Request) string {
		return auth.HashIP(clientIP(r), cfg.AdminKey)
	})

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Submissions
	mux.HandleFunc("GET /submissions", middleware.WithLogging(submissionHandler.List))
	mux.HandleFunc("GET /submissions/pair", middleware.WithLogging(submissionHandler.Pair))
	mux.HandleFunc("GET /submissions/daily-pair", middleware.WithLogging(submissionHandler.DailyPair))
	mux.HandleFunc("GET /submissions/recent", middleware.WithLogging(submissionHandler.Recent))
	mux.HandleFunc("GET /submissions/winners", middleware.WithLogging(submissionHandler.Winners))
	mux.HandleFunc("GET /submissions/owner/{ownerId}", middleware.WithLogging(submissionHandler.ByOwner))
	mux.HandleFunc("POST /submissions", middleware.WithLogging(submissionHandler.Submit))
	mux.HandleFunc("DELETE /submissions", middleware.WithLogging(submissionHandler.Clear))

	// Judging
	mux.HandleFunc("POST /votes", middleware.WithLogging(voteLimiter.Wrap(voteHandler.Vote)))
	mux.HandleFunc("GET /rounds/settings", middleware.WithLogging(roundHandler.Settings))

	// Daily challenge prompt
	mux.HandleFunc("GET /prompts/today", middleware.WithLogging(promptHandler.Today))
	mux.HandleFunc("PUT /prompts/{date}", middleware.WithLogging(promptHandler.Set))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("trend-off API v1"))
	})

	return mux
}
