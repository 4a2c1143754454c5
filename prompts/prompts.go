// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/trend-off/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ForDate returns the daily challenge prompt for a YYYY-MM-DD date.
func (s *Store) ForDate(ctx context.Context, date string) (models.DailyPrompt, error) {
	if err := validateDate(date); err != nil {
		return models.DailyPrompt{}, err
	}

	p := models.DailyPrompt{Date: date}
	err := s.db.QueryRowContext(ctx, `
		SELECT prompt FROM daily_prompt WHERE prompt_date = $1
	`, date).Scan(&p.Prompt)
	if err == sql.ErrNoRows {
		return models.DailyPrompt{}, fmt.Errorf("prompt for %s: %w", date, models.ErrNotFound)
	}
	if err != nil {
		return models.DailyPrompt{}, fmt.Errorf("failed to query prompt: %w", err)
	}
	return p, nil
}

// Set creates or replaces the prompt for a date.
func (s *Store) Set(ctx context.Context, date, prompt string) (models.DailyPrompt, error) {
	if err := validateDate(date); err != nil {
		return models.DailyPrompt{}, err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.DailyPrompt{}, fmt.Errorf("%w: prompt is required", models.ErrInvalidRequest)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_prompt (prompt_date, prompt)
		VALUES ($1, $2)
		ON CONFLICT (prompt_date) DO UPDATE SET prompt = excluded.prompt
	`, date, prompt)
	if err != nil {
		return models.DailyPrompt{}, fmt.Errorf("failed to save prompt: %w", err)
	}
	return models.DailyPrompt{Date: date, Prompt: prompt}, nil
}

func validateDate(date string) error {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", models.ErrInvalidRequest)
	}
	return nil
}
