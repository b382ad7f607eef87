package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// Field-specific errors wrap it so callers can match either.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidQuality is returned when a review quality is outside the
	// closed Again..Easy range.
	ErrInvalidQuality = errors.New("invalid review quality")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
