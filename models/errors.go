// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	// ErrInvalidRequest marks missing or malformed input. Nothing was mutated.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound marks a referenced record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a write that lost repeated races with concurrent writers.
	ErrConflict = errors.New("concurrent update")
)
