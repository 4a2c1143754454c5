// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/trend-off/db"
	"github.com/danielhkuo/trend-off/models"
)

// maxAttempts bounds retries when a concurrent vote changes a rating between
// our read and our write.
const maxAttempts = 3

var errStale = errors.New("rating changed since read")

// Next applies the fixed-increment rule: the winner gains one point and the
// loser drops one, never below zero. This is intentionally not a
// probability-weighted ELO update.
func Next(winnerOld, loserOld int) (winnerNew, loserNew int) {
	winnerNew = winnerOld + 1
	loserNew = loserOld - 1
	if loserNew < 0 {
		loserNew = 0
	}
	return winnerNew, loserNew
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn, now: db.Now}
}

// WithClock returns a copy of the store that stamps updates with now.
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{db: s.db, now: func() time.Time { return db.Normalize(now()) }}
}

// ApplyVote records one judging decision. Both rows are written in a single
// transaction, so callers see either both new ratings or neither.
func (s *Store) ApplyVote(ctx context.Context, winnerID, loserID string) (models.VoteResult, error) {
	winnerID = strings.TrimSpace(winnerID)
	loserID = strings.TrimSpace(loserID)

	if winnerID == "" || loserID == "" {
		return models.VoteResult{}, fmt.Errorf("%w: winnerId and loserId are required", models.ErrInvalidRequest)
	}
	if winnerID == loserID {
		return models.VoteResult{}, fmt.Errorf("%w: winnerId and loserId must be different", models.ErrInvalidRequest)
	}

	for attempt := 1; ; attempt++ {
		result, err := s.applyOnce(ctx, winnerID, loserID)
		if !errors.Is(err, errStale) {
			return result, err
		}
		if attempt == maxAttempts {
			return models.VoteResult{}, fmt.Errorf("%w: vote on %s/%s", models.ErrConflict, winnerID, loserID)
		}
	}
}

func (s *Store) applyOnce(ctx context.Context, winnerID, loserID string) (models.VoteResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, rating FROM submission WHERE id IN ($1, $2)
	`, winnerID, loserID)
	if err != nil {
		return models.VoteResult{}, fmt.Errorf("failed to read ratings: %w", err)
	}

	current := make(map[string]sql.NullInt64, 2)
	for rows.Next() {
		var id string
		var rating sql.NullInt64
		if err := rows.Scan(&id, &rating); err != nil {
			rows.Close()
			return models.VoteResult{}, fmt.Errorf("failed to scan rating: %w", err)
		}
		current[id] = rating
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.VoteResult{}, fmt.Errorf("failed to read ratings: %w", err)
	}
	rows.Close()

	winnerRating, okW := current[winnerID]
	loserRating, okL := current[loserID]
	if !okW || !okL {
		return models.VoteResult{}, fmt.Errorf("%w: one or both submissions not found", models.ErrNotFound)
	}

	winnerOld := ratingOrDefault(winnerRating)
	loserOld := ratingOrDefault(loserRating)
	winnerNew, loserNew := Next(winnerOld, loserOld)
	now := s.now()

	// Lock rows in id order so two votes over the same pair cannot deadlock.
	updates := []struct {
		id   string
		old  sql.NullInt64
		next int
	}{
		{winnerID, winnerRating, winnerNew},
		{loserID, loserRating, loserNew},
	}
	if loserID < winnerID {
		updates[0], updates[1] = updates[1], updates[0]
	}
	for _, u := range updates {
		if err := updateGuarded(ctx, tx, u.id, u.old, u.next, now); err != nil {
			return models.VoteResult{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.VoteResult{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	return models.VoteResult{
		Winner: models.RatingChange{ID: winnerID, OldRating: winnerOld, NewRating: winnerNew},
		Loser:  models.RatingChange{ID: loserID, OldRating: loserOld, NewRating: loserNew},
	}, nil
}

// updateGuarded writes the new rating only if the stored value still equals
// what we read.
func updateGuarded(ctx context.Context, tx *sql.Tx, id string, old sql.NullInt64, next int, now time.Time) error {
	var res sql.Result
	var err error
	if old.Valid {
		res, err = tx.ExecContext(ctx, `
			UPDATE submission SET rating = $1, updated_at = $2
			WHERE id = $3 AND rating = $4
		`, next, now, id, old.Int64)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE submission SET rating = $1, updated_at = $2
			WHERE id = $3 AND rating IS NULL
		`, next, now, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update rating for %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update rating for %s: %w", id, err)
	}
	if n != 1 {
		return errStale
	}
	return nil
}

func ratingOrDefault(r sql.NullInt64) int {
	if !r.Valid {
		return models.DefaultRating
	}
	return int(r.Int64)
}
