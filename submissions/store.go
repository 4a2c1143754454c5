// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submissions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/trend-off/db"
	"github.com/danielhkuo/trend-off/models"
)

// Columns lists submission columns in the order ScanSubmission expects.
const Columns = `id, owner_id, image, generated_image, title, rating, product_ids, created_at, updated_at`

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn, now: db.Now}
}

// WithClock returns a copy of the store that stamps records with now.
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{db: s.db, now: func() time.Time { return db.Normalize(now()) }}
}

// Create inserts a new submission. The owner id is kept when it is a valid
// UUID and replaced with a fresh one otherwise.
func (s *Store) Create(ctx context.Context, in models.NewSubmission) (models.Submission, error) {
	return s.insert(ctx, in, "")
}

// insert writes the row in a single statement, generated image included,
// so a rejected insert leaves nothing behind.
func (s *Store) insert(ctx context.Context, in models.NewSubmission, generatedImage string) (models.Submission, error) {
	if err := ValidateImage(in.Image); err != nil {
		return models.Submission{}, err
	}

	ownerID := in.OwnerID
	if !IsValidOwnerID(ownerID) {
		ownerID = uuid.NewString()
	}

	productIDs, err := encodeProductIDs(in.ProductIDs)
	if err != nil {
		return models.Submission{}, err
	}

	var title *string
	if t := strings.TrimSpace(in.Title); t != "" {
		title = &t
	}

	now := s.now()
	sub := models.Submission{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Image:      in.Image,
		Title:      title,
		Rating:     models.DefaultRating,
		ProductIDs: cleanProductIDs(in.ProductIDs),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if generatedImage != "" {
		if err := ValidateImage(generatedImage); err != nil {
			return models.Submission{}, fmt.Errorf("generatedImage: %w", err)
		}
		sub.GeneratedImage = &generatedImage
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submission (id, owner_id, image, generated_image, title, rating, product_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, sub.ID, sub.OwnerID, sub.Image, sub.GeneratedImage, sub.Title, sub.Rating, productIDs, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return models.Submission{}, fmt.Errorf("failed to insert submission: %w", err)
	}

	return sub, nil
}

// AttachGenerated stores a transformed image on the owner's most recent
// submission. The title is replaced only when a non-empty one is given.
// updated_at is left alone so judging order is unaffected.
func (s *Store) AttachGenerated(ctx context.Context, ownerID, generatedImage, title string) (models.Submission, error) {
	if !IsValidOwnerID(ownerID) {
		return models.Submission{}, fmt.Errorf("%w: ownerId must be a UUID", models.ErrInvalidRequest)
	}
	if err := ValidateImage(generatedImage); err != nil {
		return models.Submission{}, fmt.Errorf("generatedImage: %w", err)
	}

	latest, err := s.LatestByOwner(ctx, ownerID)
	if err != nil {
		return models.Submission{}, err
	}

	var newTitle *string
	if t := strings.TrimSpace(title); t != "" {
		newTitle = &t
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE submission
		SET generated_image = $1, title = COALESCE($2, title)
		WHERE id = $3
	`, generatedImage, newTitle, latest.ID)
	if err != nil {
		return models.Submission{}, fmt.Errorf("failed to attach generated image: %w", err)
	}

	latest.GeneratedImage = &generatedImage
	if newTitle != nil {
		latest.Title = newTitle
	}
	return latest, nil
}

// Submit is the single entry point behind POST /submissions. A request that
// carries only a generated image attaches it to the owner's latest submission.
// A request with an image always creates a new submission, storing the
// generated image on it when one was sent. created reports which branch ran.
func (s *Store) Submit(ctx context.Context, req models.SubmitRequest) (sub models.Submission, created bool, err error) {
	if req.Image == "" && req.GeneratedImage != "" && IsValidOwnerID(req.OwnerID) {
		sub, err = s.AttachGenerated(ctx, req.OwnerID, req.GeneratedImage, req.Title)
		if err == nil {
			return sub, false, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return models.Submission{}, false, err
		}
	}

	if req.Image == "" {
		return models.Submission{}, false, fmt.Errorf("%w: image is required", models.ErrInvalidRequest)
	}

	sub, err = s.insert(ctx, models.NewSubmission{
		OwnerID:    req.OwnerID,
		Image:      req.Image,
		Title:      req.Title,
		ProductIDs: req.ProductIDs,
	}, req.GeneratedImage)
	if err != nil {
		return models.Submission{}, false, err
	}

	return sub, true, nil
}

func (s *Store) Get(ctx context.Context, id string) (models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+Columns+` FROM submission WHERE id = $1`, id)
	sub, err := ScanSubmission(row)
	if err == sql.ErrNoRows {
		return models.Submission{}, fmt.Errorf("submission %s: %w", id, models.ErrNotFound)
	}
	return sub, err
}

// LatestByOwner returns the owner's most recently created submission.
func (s *Store) LatestByOwner(ctx context.Context, ownerID string) (models.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+Columns+` FROM submission
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, ownerID)
	sub, err := ScanSubmission(row)
	if err == sql.ErrNoRows {
		return models.Submission{}, fmt.Errorf("submission for owner %s: %w", ownerID, models.ErrNotFound)
	}
	return sub, err
}

// List returns every submission, oldest first.
func (s *Store) List(ctx context.Context) ([]models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+Columns+` FROM submission
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return ScanAll(rows)
}

// Recent returns submissions by most recent update, skipping offset of them.
func (s *Store) Recent(ctx context.Context, offset, limit int) ([]models.Submission, error) {
	if offset < 0 || limit < 1 {
		return nil, fmt.Errorf("%w: offset must be >= 0 and limit >= 1", models.ErrInvalidRequest)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+Columns+` FROM submission
		ORDER BY updated_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent submissions: %w", err)
	}
	return ScanAll(rows)
}

// TopRated returns the highest rated submissions; ties go to the one judged
// most recently, then by id.
func (s *Store) TopRated(ctx context.Context, limit int) ([]models.Submission, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1", models.ErrInvalidRequest)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+Columns+` FROM submission
		ORDER BY COALESCE(rating, 1000) DESC, updated_at DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top submissions: %w", err)
	}
	return ScanAll(rows)
}

// DeleteAll removes every submission and reports how many were removed.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submission`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete submissions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted submissions: %w", err)
	}
	return n, nil
}

// ScanSubmission reads one row selected with Columns.
func ScanSubmission(row RowScanner) (models.Submission, error) {
	var sub models.Submission
	var generated, title, productIDs sql.NullString
	var rating sql.NullInt64

	err := row.Scan(&sub.ID, &sub.OwnerID, &sub.Image, &generated, &title, &rating, &productIDs, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return models.Submission{}, err
	}

	if generated.Valid {
		sub.GeneratedImage = &generated.String
	}
	if title.Valid {
		sub.Title = &title.String
	}
	sub.Rating = models.DefaultRating
	if rating.Valid {
		sub.Rating = int(rating.Int64)
	}
	if productIDs.Valid && productIDs.String != "" {
		if err := json.Unmarshal([]byte(productIDs.String), &sub.ProductIDs); err != nil {
			return models.Submission{}, fmt.Errorf("corrupt product_ids for %s: %w", sub.ID, err)
		}
	}
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()

	return sub, nil
}

// ScanAll drains and closes rows.
func ScanAll(rows *sql.Rows) ([]models.Submission, error) {
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		sub, err := ScanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}
	return subs, nil
}

// IsValidOwnerID reports whether id is a canonical UUID string.
func IsValidOwnerID(id string) bool {
	if len(id) != 36 {
		return false
	}
	return uuid.Validate(id) == nil
}

// ValidateImage accepts a data:image/ URI or an absolute http(s) URL.
func ValidateImage(image string) error {
	if image == "" {
		return fmt.Errorf("%w: image is required", models.ErrInvalidRequest)
	}
	if strings.HasPrefix(image, "data:image/") {
		if !strings.Contains(image, ",") {
			return fmt.Errorf("%w: malformed image data URI", models.ErrInvalidRequest)
		}
		return nil
	}
	u, err := url.Parse(image)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: image must be a data:image/ URI or http(s) URL", models.ErrInvalidRequest)
	}
	return nil
}

func cleanProductIDs(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func encodeProductIDs(ids []string) (*string, error) {
	cleaned := cleanProductIDs(ids)
	if len(cleaned) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product ids: %w", err)
	}
	s := string(b)
	return &s, nil
}
