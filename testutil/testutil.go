// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/trend-off/cliparse"
	"github.com/danielhkuo/trend-off/db"
)

// TestImage is a minimal valid data URI.
const TestImage = "data:image/png;base64,iVBORw0KGgo="

// SetupTestDB creates a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), cliparse.Config{
		DatabaseType: cliparse.DatabaseSQLite,
		DatabaseURL:  ":memory:",
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  cliparse.DatabaseSQLite,
		AdminKey:      "test-admin-key",
		DayUTCOffset:  0,
		RoundQuota:    3,
		VoteRateLimit: 1000,
	}
}

// InsertSubmission writes a submission row directly and returns its id.
// A nil rating stores NULL.
func InsertSubmission(t *testing.T, conn *sql.DB, rating *int, updatedAt time.Time) string {
	t.Helper()

	id := uuid.NewString()
	InsertSubmissionWithID(t, conn, id, rating, updatedAt)
	return id
}

// InsertSubmissionWithID is InsertSubmission with a caller-chosen id.
func InsertSubmissionWithID(t *testing.T, conn *sql.DB, id string, rating *int, updatedAt time.Time) {
	t.Helper()

	ts := db.Normalize(updatedAt)
	_, err := conn.Exec(`
		INSERT INTO submission (id, owner_id, image, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, uuid.NewString(), TestImage, rating, ts, ts)
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}
}

// Rating reads a submission's stored rating; -1 means NULL.
func Rating(t *testing.T, conn *sql.DB, id string) int {
	t.Helper()

	var r sql.NullInt64
	if err := conn.QueryRow(`SELECT rating FROM submission WHERE id = $1`, id).Scan(&r); err != nil {
		t.Fatalf("Failed to read rating for %s: %v", id, err)
	}
	if !r.Valid {
		return -1
	}
	return int(r.Int64)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// DecodeData decodes a {"data": ...} response body into v
func DecodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	envelope := struct {
		Data interface{} `json:"data"`
	}{Data: v}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
