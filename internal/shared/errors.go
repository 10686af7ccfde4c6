package shared

import "errors"

var (
	// ErrUnauthenticated indicates the request carries no valid principal.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInsufficientCapability indicates the principal's role lacks a required capability.
	ErrInsufficientCapability = errors.New("insufficient capability")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrOutOfScope indicates the resource exists outside the principal's organization scope.
	ErrOutOfScope = errors.New("resource outside organization scope")
	// ErrValidation wraps request validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
