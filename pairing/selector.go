// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pairing

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/trend-off/models"
	"github.com/danielhkuo/trend-off/submissions"
)

// MaxBatchSize caps how many submissions one selection may return.
const MaxBatchSize = 10

type Selector struct {
	db     *sql.DB
	offset *time.Location
}

// NewSelector returns a selector whose daily window is the calendar day at
// the given fixed UTC offset (in hours).
func NewSelector(db *sql.DB, utcOffsetHours int) *Selector {
	return &Selector{
		db:     db,
		offset: time.FixedZone("UTC"+strconv.Itoa(utcOffsetHours), utcOffsetHours*3600),
	}
}

// SelectNext returns up to batchSize submissions not in excludeIDs, least
// recently updated first. Ties on updated_at are broken by id so repeated
// calls over the same data agree. A result shorter than batchSize means the
// candidates are exhausted; it is not an error.
func (s *Selector) SelectNext(ctx context.Context, excludeIDs []string, batchSize int) ([]models.Submission, error) {
	if batchSize < 1 || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch size must be between 1 and %d", models.ErrInvalidRequest, MaxBatchSize)
	}

	query := `SELECT ` + submissions.Columns + ` FROM submission`
	args := make([]any, 0, len(excludeIDs)+1)

	if len(excludeIDs) > 0 {
		placeholders := make([]string, len(excludeIDs))
		for i, id := range excludeIDs {
			args = append(args, id)
			placeholders[i] = "$" + strconv.Itoa(i+1)
		}
		query += ` WHERE id NOT IN (` + strings.Join(placeholders, ", ") + `)`
	}

	args = append(args, batchSize)
	query += ` ORDER BY updated_at ASC, id ASC LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select next submissions: %w", err)
	}
	return submissions.ScanAll(rows)
}

// SelectRandomPair returns two distinct submissions created during the day
// containing t, or fewer if the day has fewer.
func (s *Selector) SelectRandomPair(ctx context.Context, t time.Time) ([]models.Submission, error) {
	start, end := s.DayWindow(t)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+submissions.Columns+` FROM submission
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY RANDOM()
		LIMIT 2
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to select daily pair: %w", err)
	}
	return submissions.ScanAll(rows)
}

// DayWindow returns the UTC bounds [start, end) of the calendar day
// containing t at the selector's offset.
func (s *Selector) DayWindow(t time.Time) (start, end time.Time) {
	local := t.In(s.offset)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.offset)
	return midnight.UTC(), midnight.AddDate(0, 0, 1).UTC()
}

// DayKey formats the day containing t at the selector's offset as YYYY-MM-DD.
func (s *Selector) DayKey(t time.Time) string {
	return t.In(s.offset).Format(time.DateOnly)
}

// ParseExcludeIDs splits a comma-separated id list, dropping blanks and
// duplicates while keeping first-seen order.
func ParseExcludeIDs(raw string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
