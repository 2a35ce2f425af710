// Package common defines shared constants and sentinel errors used across
// the moodsync client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Precondition errors (no session; no network call is attempted).
	ErrNotAuthenticated = errors.New("not authenticated")

	// Validation errors.
	ErrorInvalidEntry = errors.New("invalid entry")

	// Schedule errors.
	ErrTaskNotFound = errors.New("task not found")
)
