// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"

	"github.com/danielhkuo/trend-off/models"
)

func TestWithLogging_PreservesResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Created", http.StatusCreated, `{"data":{"id":"123"}}`},
		{"BadRequest", http.StatusBadRequest, `{"error":"bad request"}`},
		{"TooManyRequests", http.StatusTooManyRequests, "slow down"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/votes", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body '%s', got '%s'", tc.body, w.Body.String())
			}
		})
	}
}

func TestWithLogging_RecordsStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rec.WriteHeader(http.StatusNotFound)

	if rec.status != http.StatusNotFound {
		t.Errorf("Expected recorded status 404, got %d", rec.status)
	}

	// Handlers that never call WriteHeader report 200
	untouched := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	untouched.Write([]byte("x"))
	if untouched.status != http.StatusOK {
		t.Errorf("Expected default status 200, got %d", untouched.status)
	}
}

func TestJSONResponse(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "simple struct",
			statusCode: http.StatusOK,
			data:       map[string]string{"status": "healthy"},
			expected:   `{"status":"healthy"}`,
		},
		{
			name:       "error response",
			statusCode: http.StatusBadRequest,
			data:       models.ErrorResponse{Error: "Bad Request", Message: "missing field"},
			expected:   `{"error":"Bad Request","message":"missing field"}`,
		},
		{
			name:       "array data",
			statusCode: http.StatusOK,
			data:       []string{"a", "b", "c"},
			expected:   `["a","b","c"]`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}

			// Trim newline added by Encode
			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestDataResponse(t *testing.T) {
	testCases := []struct {
		name     string
		data     interface{}
		expected string
	}{
		{"vote result", models.VoteResult{
			Winner: models.RatingChange{ID: "a", OldRating: 1000, NewRating: 1001},
			Loser:  models.RatingChange{ID: "b", OldRating: 1000, NewRating: 999},
		}, `{"data":{"winner":{"id":"a","oldRating":1000,"newRating":1001},"loser":{"id":"b","oldRating":1000,"newRating":999}}}`},
		{"empty list", []models.Submission{}, `{"data":[]}`},
		{"clear result", models.ClearResult{DeletedCount: 4}, `{"data":{"deletedCount":4}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			DataResponse(w, http.StatusOK, tc.data)

			body := strings.TrimSpace(w.Body.String())
			if body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		statusCode    int
		message       string
		expectedError string
	}{
		{http.StatusBadRequest, "winnerId is required", "Bad Request"},
		{http.StatusUnauthorized, "invalid admin key", "Unauthorized"},
		{http.StatusNotFound, "submission not found", "Not Found"},
		{http.StatusConflict, "vote collided, retry", "Conflict"},
		{http.StatusTooManyRequests, "slow down", "Too Many Requests"},
		{http.StatusInternalServerError, "Database error", "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.expectedError, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("valid JSON", func(t *testing.T) {
		body := `{"winnerId":"a","loserId":"b"}`
		req := httptest.NewRequest("POST", "/votes", strings.NewReader(body))

		var parsed models.VoteRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.WinnerID != "a" || parsed.LoserID != "b" {
			t.Errorf("Unexpected parse result: %+v", parsed)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/votes", strings.NewReader(`{invalid json}`))

		var parsed models.VoteRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/votes", strings.NewReader(""))

		var parsed models.VoteRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for empty body")
		}
	})

	t.Run("extra fields ignored", func(t *testing.T) {
		body := `{"ownerId":"o","image":"data:image/png;base64,AA==","unknown":"ignored"}`
		req := httptest.NewRequest("POST", "/submissions", strings.NewReader(body))

		var parsed models.SubmitRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.OwnerID != "o" {
			t.Errorf("Expected ownerId 'o', got '%s'", parsed.OwnerID)
		}
	})

	t.Run("oversized body rejected", func(t *testing.T) {
		huge := `{"image":"` + strings.Repeat("A", MaxBodyBytes) + `"}`
		req := httptest.NewRequest("POST", "/submissions", strings.NewReader(huge))

		var parsed models.SubmitRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for body over MaxBodyBytes")
		}
	})

	t.Run("body is consumed after parsing", func(t *testing.T) {
		bodyReader := io.NopCloser(bytes.NewReader([]byte(`{"winnerId":"a","loserId":"b"}`)))
		req := httptest.NewRequest("POST", "/votes", bodyReader)

		var parsed models.VoteRequest
		_ = ParseJSONBody(req, &parsed)

		remaining, _ := io.ReadAll(req.Body)
		if len(remaining) > 0 {
			t.Error("Expected body to be consumed")
		}
	})
}

func TestCORS(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("handled"))
	})

	t.Run("preflight OPTIONS request", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/votes", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		CORS(nil)(nextHandler).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.String() != "" {
			t.Errorf("Expected empty body for preflight, got '%s'", w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}
		if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Error("Expected Access-Control-Allow-Credentials to be 'true'")
		}
	})

	t.Run("request without origin defaults to wildcard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/submissions", nil)
		w := httptest.NewRecorder()

		CORS([]string{"*"})(nextHandler).ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
	})

	t.Run("allow list", func(t *testing.T) {
		handler := CORS([]string{"https://trendoff.app"})(nextHandler)

		allowed := httptest.NewRequest("GET", "/submissions", nil)
		allowed.Header.Set("Origin", "https://trendoff.app")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, allowed)
		if w.Header().Get("Access-Control-Allow-Origin") != "https://trendoff.app" {
			t.Error("Expected listed origin to be allowed")
		}

		denied := httptest.NewRequest("GET", "/submissions", nil)
		denied.Header.Set("Origin", "https://evil.example.com")
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, denied)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Expected no Access-Control-Allow-Origin for unlisted origin, got '%s'", got)
		}
		if w.Header().Get("Vary") != "Origin" {
			t.Error("Expected Vary: Origin")
		}
	})

	t.Run("allows headers and methods", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/prompts/2025-06-01", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		CORS(nil)(nextHandler).ServeHTTP(w, req)

		allowedHeaders := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"Content-Type", "X-Admin-Key"} {
			if !strings.Contains(allowedHeaders, h) {
				t.Errorf("Expected %s in allowed headers", h)
			}
		}

		allowedMethods := w.Header().Get("Access-Control-Allow-Methods")
		for _, method := range []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"} {
			if !strings.Contains(allowedMethods, method) {
				t.Errorf("Expected %s in allowed methods", method)
			}
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "X-Forwarded-For ignored",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18"},
			remoteAddr: "127.0.0.1:12345",
			expectedIP: "127.0.0.1",
		},
		{
			name:       "X-Real-IP ignored",
			headers:    map[string]string{"X-Real-IP": "203.0.113.50"},
			remoteAddr: "10.0.0.1:12345",
			expectedIP: "10.0.0.1",
		},
		{
			name:       "RemoteAddr with port",
			remoteAddr: "192.168.1.50:54321",
			expectedIP: "192.168.1.50",
		},
		{
			name:       "IPv6 RemoteAddr",
			remoteAddr: "[2001:db8::1]:443",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.51",
			expectedIP: "192.168.1.51",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if result := GetClientIP(req); result != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, result)
			}
		})
	}
}

func TestClientIPBehind(t *testing.T) {
	clientIP := ClientIPBehind([]netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
	})

	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{
			name:       "untrusted peer headers ignored",
			headers:    map[string]string{"X-Forwarded-For": "10.0.0.7"},
			remoteAddr: "203.0.113.9:5000",
			expectedIP: "203.0.113.9",
		},
		{
			name:       "trusted peer forwards client",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.4"},
			remoteAddr: "10.1.2.3:5000",
			expectedIP: "198.51.100.4",
		},
		{
			name:       "spoofed left entries skipped",
			headers:    map[string]string{"X-Forwarded-For": "1.1.1.1, 198.51.100.4, 192.0.2.1"},
			remoteAddr: "10.1.2.3:5000",
			expectedIP: "198.51.100.4",
		},
		{
			name:       "X-Real-IP from trusted peer",
			headers:    map[string]string{"X-Real-IP": "198.51.100.5"},
			remoteAddr: "192.0.2.1:80",
			expectedIP: "198.51.100.5",
		},
		{
			name:       "garbage hop falls back to peer",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			remoteAddr: "10.1.2.3:5000",
			expectedIP: "10.1.2.3",
		},
		{
			name:       "trusted peer without headers",
			remoteAddr: "10.1.2.3:5000",
			expectedIP: "10.1.2.3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if result := clientIP(req); result != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, result)
			}
		})
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	if result := ClientIPBehind(nil)(req); result != "10.1.2.3" {
		t.Errorf("Expected no trusted proxies to ignore headers, got '%s'", result)
	}
}
