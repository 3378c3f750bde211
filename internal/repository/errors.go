// Package repository defines raw-SQL data access for the planner's
// tables, plus the error types reused across repositories.  The
// sentinel values let handlers distinguish failure scenarios: for
// example, ErrForbidden means the current user does not own the
// classroom a request touches, while ErrConflict signals that an
// operation cannot proceed due to dependent records.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// classroom they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update or delete collides with
// existing state, such as creating a second constraint pinning the same
// student to a seat.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a lookup yields no rows.  Handlers
// translate this into HTTP 404.
var ErrNotFound = errors.New("not found")
