package shared

import "errors"

var (
	// ErrNotFound indicates the row is absent or belongs to another workspace.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates missing workspace membership or permission level.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
)
