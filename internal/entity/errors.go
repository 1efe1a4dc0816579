package entity

import "errors"

var (
	// Creation errors
	ErrInvalidURL              = errors.New("invalid destination URL")
	ErrEmptyDestinations       = errors.New("at least one destination URL is required")
	ErrCodeExists              = errors.New("short code already exists")
	ErrCodeGenerationExhausted = errors.New("could not generate a unique short code")

	// Resolution errors
	ErrLinkNotFound = errors.New("short link not found")
)
