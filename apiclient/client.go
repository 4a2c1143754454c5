// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/trend-off/models"
)

const DefaultTimeout = 30 * time.Second

// ErrWaitTimeout is returned when a generated image does not appear within
// the allowed wait.
var ErrWaitTimeout = errors.New("timed out waiting for generated image")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match the server's error classes with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return models.ErrInvalidRequest
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrConflict
	}
	return nil
}

// Client talks to a TrendOff API server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	adminKey   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithAdminKey sets the key sent on administrative calls.
func (c *Client) WithAdminKey(key string) *Client {
	c.adminKey = key
	return c
}

// NextPair fetches the least recently judged pair not in excludeIDs.
func (c *Client) NextPair(ctx context.Context, excludeIDs []string) ([]models.Submission, error) {
	q := url.Values{}
	if len(excludeIDs) > 0 {
		q.Set("excludeIds", strings.Join(excludeIDs, ","))
	}
	var subs []models.Submission
	err := c.do(ctx, http.MethodGet, "/submissions/pair", q, nil, &subs)
	return subs, err
}

// DailyPair fetches two random submissions from today.
func (c *Client) DailyPair(ctx context.Context) ([]models.Submission, error) {
	var subs []models.Submission
	err := c.do(ctx, http.MethodGet, "/submissions/daily-pair", nil, nil, &subs)
	return subs, err
}

// RoundSettings fetches the server's judging round configuration.
func (c *Client) RoundSettings(ctx context.Context) (models.RoundSettings, error) {
	var settings models.RoundSettings
	err := c.do(ctx, http.MethodGet, "/rounds/settings", nil, nil, &settings)
	return settings, err
}

func (c *Client) Vote(ctx context.Context, winnerID, loserID string) (models.VoteResult, error) {
	var result models.VoteResult
	err := c.do(ctx, http.MethodPost, "/votes", nil, models.VoteRequest{WinnerID: winnerID, LoserID: loserID}, &result)
	return result, err
}

func (c *Client) Submit(ctx context.Context, req models.SubmitRequest) (models.Submission, error) {
	var sub models.Submission
	err := c.do(ctx, http.MethodPost, "/submissions", nil, req, &sub)
	return sub, err
}

func (c *Client) Winners(ctx context.Context, limit int) ([]models.Submission, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var subs []models.Submission
	err := c.do(ctx, http.MethodGet, "/submissions/winners", q, nil, &subs)
	return subs, err
}

func (c *Client) LatestByOwner(ctx context.Context, ownerID string) (models.Submission, error) {
	var sub models.Submission
	err := c.do(ctx, http.MethodGet, "/submissions/owner/"+url.PathEscape(ownerID), nil, nil, &sub)
	return sub, err
}

// Clear deletes every submission. Requires WithAdminKey.
func (c *Client) Clear(ctx context.Context) (int64, error) {
	var res models.ClearResult
	err := c.do(ctx, http.MethodDelete, "/submissions", nil, nil, &res)
	return res.DeletedCount, err
}

// WaitForGenerated polls the owner's latest submission every interval until
// its generated image is attached. It gives up with ErrWaitTimeout after
// maxWait, or with ctx's error if ctx ends first. Transient fetch errors are
// retried until the deadline.
func (c *Client) WaitForGenerated(ctx context.Context, ownerID string, interval, maxWait time.Duration) (models.Submission, error) {
	if interval <= 0 || maxWait <= 0 {
		return models.Submission{}, fmt.Errorf("%w: interval and maxWait must be positive", models.ErrInvalidRequest)
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(parent, maxWait)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		sub, err := c.LatestByOwner(ctx, ownerID)
		switch {
		case err == nil && sub.GeneratedImage != nil:
			return sub, nil
		case err != nil && errors.Is(err, models.ErrInvalidRequest):
			return models.Submission{}, err
		case err != nil:
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return models.Submission{}, err
			}
			if lastErr != nil && !errors.Is(lastErr, models.ErrNotFound) && !errors.Is(lastErr, context.DeadlineExceeded) {
				slog.Warn("gave up waiting for generated image", "owner_id", ownerID, "last_error", lastErr)
			}
			return models.Submission{}, fmt.Errorf("%w after %s", ErrWaitTimeout, maxWait)
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminKey != "" {
		req.Header.Set("X-Admin-Key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	envelope := models.Envelope{Data: out}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
