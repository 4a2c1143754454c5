// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/trend-off/cache"
	"github.com/danielhkuo/trend-off/cliparse"
	"github.com/danielhkuo/trend-off/middleware"
	"github.com/danielhkuo/trend-off/models"
	"github.com/danielhkuo/trend-off/ratings"
)

type VoteHandler struct {
	ratings *ratings.Store
	board   cache.Leaderboard
	cfg     cliparse.Config
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, board cache.Leaderboard) *VoteHandler {
	if board == nil {
		board = cache.Noop{}
	}
	return &VoteHandler{ratings: ratings.NewStore(db), board: board, cfg: cfg}
}

// Vote handles POST /votes
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	result, err := h.ratings.ApplyVote(r.Context(), req.WinnerID, req.LoserID)
	if err != nil {
		writeStoreError(w, err, "apply vote")
		return
	}

	if err := h.board.Invalidate(r.Context()); err != nil {
		slog.Warn("leaderboard cache invalidation failed", "error", err)
	}

	slog.Info("vote recorded",
		"winner_id", result.Winner.ID,
		"winner_rating", result.Winner.NewRating,
		"loser_id", result.Loser.ID,
		"loser_rating", result.Loser.NewRating,
	)

	middleware.DataResponse(w, http.StatusOK, result)
}
