package db

import "errors"

// Domain-level database error sentinels.
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Profile errors
	ErrProfileNotFound = errors.New("user profile not found")

	// Keyword search errors
	ErrSearchNotFound = errors.New("keyword search not found")
)
