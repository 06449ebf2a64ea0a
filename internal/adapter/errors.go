package adapter

import "errors"

// Sentinel errors mapped from transport-level failures so that callers can
// use [errors.Is] without knowing HTTP status codes.
var (
	// ErrUnauthorized is returned when the backend rejects the access token
	// (HTTP 401).
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrNotFound is returned when the targeted row does not exist on the
	// server (HTTP 404).
	ErrNotFound = errors.New("remote record not found")

	// ErrConflict is returned when an insert or update violates a server-side
	// constraint, e.g. a foreign key to a since-deleted parent (HTTP 409).
	ErrConflict = errors.New("remote constraint conflict")
)
