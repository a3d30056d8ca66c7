// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated indicates a missing identity or failed authentication.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden indicates the identity lacks the required membership, role or ownership.
	ErrForbidden = errors.New("not authorized")

	// ErrInvalidState indicates a domain rule violation (self-DM, duplicate join, exhausted invite).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument indicates malformed input that never reached storage.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)
