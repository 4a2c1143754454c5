// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# CORS Middleware

Enable cross-origin requests for the web client:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
	}

An empty origin list or "*" allows any origin. Allows methods GET, POST,
PUT, DELETE, OPTIONS with headers Content-Type, Authorization, X-Admin-Key.

# JSON Helpers

Successful responses use the {"data": ...} envelope:

	middleware.DataResponse(w, http.StatusOK, submissions)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies (capped at MaxBodyBytes):

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Rate Limiting

RateLimiter keeps a token bucket per client and answers 429 once it is empty:

	limiter := middleware.NewRateLimiter(5, 10, nil)
	mux.HandleFunc("POST /votes", limiter.Wrap(handler))

# Client IP Extraction

GetClientIP returns the peer address and ignores forwarding headers:

	ip := middleware.GetClientIP(r)

Behind a reverse proxy, ClientIPBehind honors X-Forwarded-For and X-Real-IP
only on requests that arrive from one of the listed proxies:

	clientIP := middleware.ClientIPBehind(cfg.TrustedProxies)
*/
package middleware
