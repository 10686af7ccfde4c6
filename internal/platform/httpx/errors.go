// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/taskboard/taskboard/internal/shared"
)

// Problem types distinguishing client errors that share a status code.
const (
	TypeUnauthenticated        = "unauthenticated"
	TypeInsufficientCapability = "insufficient-capability"
	TypeOutOfScope             = "out-of-scope"
	TypeNotFound               = "not-found"
	TypeValidation             = "validation"
	TypeInvalidCredentials     = "invalid-credentials"
	TypeDuplicate              = "duplicate"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		TypedProblem(w, http.StatusUnauthorized, TypeUnauthenticated, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		TypedProblem(w, http.StatusUnauthorized, TypeInvalidCredentials, "Invalid Credentials", err.Error())
	case errors.Is(err, shared.ErrInsufficientCapability):
		TypedProblem(w, http.StatusForbidden, TypeInsufficientCapability, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrOutOfScope):
		TypedProblem(w, http.StatusForbidden, TypeOutOfScope, "Out Of Scope", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		TypedProblem(w, http.StatusNotFound, TypeNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		TypedProblem(w, http.StatusConflict, TypeDuplicate, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrValidation):
		TypedProblem(w, http.StatusBadRequest, TypeValidation, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
