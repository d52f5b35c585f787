package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates a missing, invalid or revoked access token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict indicates a uniqueness violation such as a reused bill number.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput indicates a request rejected before reaching the store.
	ErrInvalidInput = errors.New("invalid input")
)
