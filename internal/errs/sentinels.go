// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., template name taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrDependenciesExist indicates a delete blocked by referencing rows.
	ErrDependenciesExist = errors.New("dependencies exist")
)
