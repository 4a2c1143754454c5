// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/trend-off/cliparse"
	"github.com/danielhkuo/trend-off/middleware"
	"github.com/danielhkuo/trend-off/models"
)

type RoundHandler struct {
	cfg cliparse.Config
}

func NewRoundHandler(cfg cliparse.Config) *RoundHandler {
	return &RoundHandler{cfg: cfg}
}

// Settings handles GET /rounds/settings
func (h *RoundHandler) Settings(w http.ResponseWriter, r *http.Request) {
	middleware.DataResponse(w, http.StatusOK, models.RoundSettings{Quota: h.cfg.RoundQuota})
}
