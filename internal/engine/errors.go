package engine

import "errors"

// Validation errors are returned before any state is touched; the
// operational errors below surface only after repair and retries have
// been exhausted, with the state rolled back by the caller.
var (
	ErrStudentNotFound  = errors.New("student not found in classroom")
	ErrSeatNotFound     = errors.New("seat not found")
	ErrNotAssignable    = errors.New("target cell is not a seat")
	ErrSeatEmpty        = errors.New("seat is empty")
	ErrDuplicateStudent = errors.New("duplicate student in batch")
	ErrDuplicateTarget  = errors.New("duplicate target seat in batch")
	ErrNotEnoughSeats   = errors.New("not enough seat cells for all students")
	ErrNoGroups         = errors.New("no groups or no group seats configured")
	ErrSeatCountsDiffer = errors.New("seat counts differ between groups")
	ErrUnknownMethod    = errors.New("unknown arrangement method")
)

// UnresolvedError reports an arrangement or repair that still violates
// constraints after the retry budget was spent.  Violations carries the
// human-readable description of each remaining break.
type UnresolvedError struct {
	Violations []Violation
}

func (e *UnresolvedError) Error() string {
	if len(e.Violations) == 1 {
		return "1 constraint violation could not be repaired"
	}
	return "constraint violations could not be repaired"
}
