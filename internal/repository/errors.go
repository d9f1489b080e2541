// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.  For
// example, ErrForbidden indicates that the current user is not authorized
// to perform an operation on a resource owned by someone else, while
// ErrEmailExists signals a duplicate account email.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when a user create or update would duplicate
// an existing email.  Handlers should translate this into an HTTP 409
// response.
var ErrEmailExists = errors.New("email already exists")
