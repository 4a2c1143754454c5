// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/trend-off/auth"
	"github.com/danielhkuo/trend-off/cache"
	"github.com/danielhkuo/trend-off/cliparse"
	"github.com/danielhkuo/trend-off/middleware"
	"github.com/danielhkuo/trend-off/models"
	"github.com/danielhkuo/trend-off/pairing"
	"github.com/danielhkuo/trend-off/submissions"
)

// maxExcludeIDs bounds the exclusion list accepted by GET /submissions/pair.
const maxExcludeIDs = 500

// maxWinners bounds the winners list size.
const maxWinners = 50

type SubmissionHandler struct {
	store    *submissions.Store
	selector *pairing.Selector
	board    cache.Leaderboard
	cfg      cliparse.Config
	now      func() time.Time
}

func NewSubmissionHandler(db *sql.DB, cfg cliparse.Config, board cache.Leaderboard) *SubmissionHandler {
	if board == nil {
		board = cache.Noop{}
	}
	return &SubmissionHandler{
		store:    submissions.NewStore(db),
		selector: pairing.NewSelector(db, cfg.DayUTCOffset),
		board:    board,
		cfg:      cfg,
		now:      time.Now,
	}
}

// List handles GET /submissions
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.store.List(r.Context())
	if err != nil {
		writeStoreError(w, err, "list submissions")
		return
	}
	middleware.DataResponse(w, http.StatusOK, subs)
}

// Pair handles GET /submissions/pair?excludeIds=a,b&size=2
func (h *SubmissionHandler) Pair(w http.ResponseWriter, r *http.Request) {
	size := models.DefaultPairSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "size must be an integer")
			return
		}
		size = n
	}

	exclude := pairing.ParseExcludeIDs(r.URL.Query().Get("excludeIds"))
	if len(exclude) > maxExcludeIDs {
		middleware.ErrorResponse(w, http.StatusBadRequest, "too many excludeIds")
		return
	}

	subs, err := h.selector.SelectNext(r.Context(), exclude, size)
	if err != nil {
		writeStoreError(w, err, "select pair")
		return
	}

	// A short list tells the client the round is exhausted
	middleware.DataResponse(w, http.StatusOK, subs)
}

// DailyPair handles GET /submissions/daily-pair
func (h *SubmissionHandler) DailyPair(w http.ResponseWriter, r *http.Request) {
	subs, err := h.selector.SelectRandomPair(r.Context(), h.now())
	if err != nil {
		writeStoreError(w, err, "select daily pair")
		return
	}
	middleware.DataResponse(w, http.StatusOK, subs)
}

// Recent handles GET /submissions/recent?offset=6&limit=1
func (h *SubmissionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	offset, ok := intQuery(w, r, "offset", 0)
	if !ok {
		return
	}
	limit, ok := intQuery(w, r, "limit", 1)
	if !ok {
		return
	}
	if limit > maxWinners {
		limit = maxWinners
	}

	subs, err := h.store.Recent(r.Context(), offset, limit)
	if err != nil {
		writeStoreError(w, err, "list recent submissions")
		return
	}
	middleware.DataResponse(w, http.StatusOK, subs)
}

// Winners handles GET /submissions/winners?limit=3
func (h *SubmissionHandler) Winners(w http.ResponseWriter, r *http.Request) {
	limit, ok := intQuery(w, r, "limit", 3)
	if !ok {
		return
	}
	if limit < 1 || limit > maxWinners {
		middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxWinners))
		return
	}

	ctx := r.Context()
	if cached, hit, err := h.board.Get(ctx, limit); err != nil {
		slog.Warn("leaderboard cache read failed", "error", err)
	} else if hit {
		middleware.DataResponse(w, http.StatusOK, cached)
		return
	}

	subs, err := h.store.TopRated(ctx, limit)
	if err != nil {
		writeStoreError(w, err, "list winners")
		return
	}

	// A vote that lands between TopRated and Set has its Invalidate
	// overwritten by this stale list. The entry's TTL bounds how long it lives.
	if err := h.board.Set(ctx, limit, subs); err != nil {
		slog.Warn("leaderboard cache write failed", "error", err)
	}

	middleware.DataResponse(w, http.StatusOK, subs)
}

// ByOwner handles GET /submissions/owner/{ownerId}
func (h *SubmissionHandler) ByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := r.PathValue("ownerId")
	if !submissions.IsValidOwnerID(ownerID) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "ownerId must be a UUID")
		return
	}

	sub, err := h.store.LatestByOwner(r.Context(), ownerID)
	if err != nil {
		writeStoreError(w, err, "get owner submission")
		return
	}
	middleware.DataResponse(w, http.StatusOK, sub)
}

// Submit handles POST /submissions
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sub, created, err := h.store.Submit(r.Context(), req)
	if err != nil {
		writeStoreError(w, err, "submit")
		return
	}

	h.invalidateBoard(r.Context())

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	slog.Info("submission saved", "submission_id", sub.ID, "owner_id", sub.OwnerID, "created", created)

	middleware.DataResponse(w, status, sub)
}

// Clear handles DELETE /submissions (admin)
func (h *SubmissionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	n, err := h.store.DeleteAll(r.Context())
	if err != nil {
		writeStoreError(w, err, "clear submissions")
		return
	}

	h.invalidateBoard(r.Context())

	slog.Warn("all submissions cleared", "deleted_count", n)

	middleware.DataResponse(w, http.StatusOK, models.ClearResult{DeletedCount: n})
}

func (h *SubmissionHandler) invalidateBoard(ctx context.Context) {
	if err := h.board.Invalidate(ctx); err != nil {
		slog.Warn("leaderboard cache invalidation failed", "error", err)
	}
}

// intQuery reads an integer query parameter, writing a 400 on failure.
func intQuery(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
}
