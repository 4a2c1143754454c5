// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - SubmitRequest: ownerId, image, generatedImage, title, productIds
  - VoteRequest: winnerId, loserId
  - SetPromptRequest: prompt

# Response Types

Every success body is wrapped in Envelope ({"data": ...}); every failure is an
ErrorResponse ({"error": ..., "message": ...}).

  - VoteResult: winner and loser RatingChange (id, oldRating, newRating)
  - ClearResult: deletedCount

# Domain Types

  - Submission: a judged image with rating and updatedAt
  - NewSubmission: fields accepted on creation
  - DailyPrompt: the daily challenge prompt

# Errors

ErrInvalidRequest, ErrNotFound and ErrConflict are wrapped by the stores and
mapped to 400, 404 and 409 at the HTTP boundary.
*/
package models
