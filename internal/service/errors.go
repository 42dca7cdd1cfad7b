// Package service contains the ticket lifecycle manager: issuance and
// check-in of tickets, plus the read paths built on top of them.  All
// coordination with concurrent callers is delegated to the per-row
// atomicity of the backing store; the service itself holds no shared
// mutable state.
package service

import "errors"

// Failure kinds surfaced by the ticket lifecycle manager.  Errors
// returned from operations wrap exactly one of these sentinels so
// callers can classify with errors.Is while still seeing the
// operation-specific message.
var (
	// ErrNotFound means a referenced entity (ticket) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input was malformed or missing a
	// required field.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyCheckedIn means the ticket has already been redeemed.
	// At most one check-in per ticket ever succeeds; every other
	// attempt, concurrent or later, gets this.
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")

	// ErrPartialFailure means the check-in sequence diverged: the
	// ticket was flipped to used but the check-in record could not be
	// written.  This is never reported as success; the state is
	// visible through ListUnreconciled so an operator can repair it.
	ErrPartialFailure = errors.New("check-in partially applied")

	// ErrStoreUnavailable means an underlying store call failed or
	// timed out.  The service does not retry; retry policy belongs to
	// an outer layer that can make check-in idempotent first.
	ErrStoreUnavailable = errors.New("store unavailable")
)
