// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/trend-off/middleware"
	"github.com/danielhkuo/trend-off/models"
)

// writeStoreError maps store errors onto HTTP responses. Unclassified errors
// are logged and reported as a generic database error.
func writeStoreError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		middleware.ErrorResponse(w, http.StatusBadRequest, clientMessage(err, models.ErrInvalidRequest))
	case errors.Is(err, models.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, clientMessage(err, models.ErrNotFound))
	case errors.Is(err, models.ErrConflict):
		slog.Warn(op+" conflicted", "error", err)
		middleware.ErrorResponse(w, http.StatusConflict, "Concurrent update, please retry")
	default:
		slog.Error(op+" failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

// clientMessage strips the sentinel prefix so "invalid request: image is
// required" reads as "image is required".
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}
