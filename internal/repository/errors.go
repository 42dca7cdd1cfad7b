// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the ticket service to distinguish between different
// failure scenarios. For example, ErrEventNotFound indicates that a
// referenced event does not exist, while ErrDuplicate signals that an
// insert collided with a uniqueness constraint (e.g. a ticket number
// or a check-in for a ticket that already has one).
package repository

import "errors"

// ErrEventNotFound is returned when a lookup or mutation references an
// event that does not exist. Handlers should translate this into an
// HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint, such as a ticket number collision or a second check-in
// row for the same ticket. Handlers should translate this into an
// HTTP 409 response.
var ErrDuplicate = errors.New("duplicate record")

// ErrEmailExists is returned when registering a profile with an email
// address that is already taken.
var ErrEmailExists = errors.New("email already exists")
