package models

import "time"

// DefaultRating is the rating of a fresh submission and the value assumed
// when a stored rating is null.
const DefaultRating = 1000

// DefaultPairSize is the number of submissions shown per judging decision.
const DefaultPairSize = 2

// Request types

type SubmitRequest struct {
	OwnerID        string   `json:"ownerId"`
	Image          string   `json:"image"`
	GeneratedImage string   `json:"generatedImage"`
	Title          string   `json:"title"`
	ProductIDs     []string `json:"productIds"`
}

type VoteRequest struct {
	WinnerID string `json:"winnerId"`
	LoserID  string `json:"loserId"`
}

type SetPromptRequest struct {
	Prompt string `json:"prompt"`
}

// Response types

// Envelope wraps every successful response body.
type Envelope struct {
	Data any `json:"data"`
}

type RatingChange struct {
	ID        string `json:"id"`
	OldRating int    `json:"oldRating"`
	NewRating int    `json:"newRating"`
}

type VoteResult struct {
	Winner RatingChange `json:"winner"`
	Loser  RatingChange `json:"loser"`
}

type ClearResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

// RoundSettings tells judging clients how many votes make up a round.
type RoundSettings struct {
	Quota int `json:"quota"`
}

// Domain types

type Submission struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Image          string    `json:"image"`
	GeneratedImage *string   `json:"generatedImage,omitempty"`
	Title          *string   `json:"title,omitempty"`
	Rating         int       `json:"rating"`
	ProductIDs     []string  `json:"productIds,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewSubmission holds the fields accepted when creating a submission.
// A generated image is never part of creation.
type NewSubmission struct {
	OwnerID    string
	Image      string
	Title      string
	ProductIDs []string
}

type DailyPrompt struct {
	Date   string `json:"date"`
	Prompt string `json:"prompt"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
