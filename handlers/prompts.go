// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/trend-off/auth"
	"github.com/danielhkuo/trend-off/cliparse"
	"github.com/danielhkuo/trend-off/middleware"
	"github.com/danielhkuo/trend-off/models"
	"github.com/danielhkuo/trend-off/pairing"
	"github.com/danielhkuo/trend-off/prompts"
)

type PromptHandler struct {
	store    *prompts.Store
	selector *pairing.Selector
	cfg      cliparse.Config
	now      func() time.Time
}

func NewPromptHandler(db *sql.DB, cfg cliparse.Config) *PromptHandler {
	return &PromptHandler{
		store:    prompts.NewStore(db),
		selector: pairing.NewSelector(db, cfg.DayUTCOffset),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Today handles GET /prompts/today
func (h *PromptHandler) Today(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.ForDate(r.Context(), h.selector.DayKey(h.now()))
	if err != nil {
		writeStoreError(w, err, "get prompt")
		return
	}
	middleware.DataResponse(w, http.StatusOK, p)
}

// Set handles PUT /prompts/{date} (admin)
func (h *PromptHandler) Set(w http.ResponseWriter, r *http.Request) {
	if err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), h.cfg.AdminKey); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return
	}

	var req models.SetPromptRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.store.Set(r.Context(), r.PathValue("date"), req.Prompt)
	if err != nil {
		writeStoreError(w, err, "set prompt")
		return
	}

	slog.Info("prompt saved", "date", p.Date)

	middleware.DataResponse(w, http.StatusOK, p)
}
