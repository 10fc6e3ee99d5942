package models

import "errors"

// Error kinds
var (
	// ErrInvalidParameter is returned before any simulation run executes when the
	// configuration cannot produce a valid batch.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrPersistenceUnavailable marks a batch whose records were not durably stored.
	// It never invalidates the computed results.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrNotFound               = errors.New("record not found")
)
