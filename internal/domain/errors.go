package domain

import "errors"

var (
	// ErrNotFound means the row does not exist. It is an expected state, not a failure.
	ErrNotFound = errors.New("resource not found")
	// ErrProfileExists is returned when profile setup runs for an account that already has one.
	ErrProfileExists = errors.New("profile already exists")
	// ErrNoSession means the request carries no usable auth session.
	ErrNoSession = errors.New("no active session")
	ErrInvalidRole = errors.New("invalid role")
)
