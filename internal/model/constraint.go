package model

// ConstraintType enumerates the supported placement rules.
type ConstraintType string

const (
	MustSeat       ConstraintType = "must_seat"       // pin student to (row,col)
	ForbidSeat     ConstraintType = "forbid_seat"     // keep student off (row,col)
	MustRow        ConstraintType = "must_row"        // student must sit in row
	ForbidRow      ConstraintType = "forbid_row"      // student must avoid row
	MustCol        ConstraintType = "must_col"        // student must sit in col
	ForbidCol      ConstraintType = "forbid_col"      // student must avoid col
	MustTogether   ConstraintType = "must_together"   // pair within Distance
	ForbidTogether ConstraintType = "forbid_together" // pair farther than Distance
)

// ValidConstraintType reports whether s names a known constraint type.
func ValidConstraintType(s string) bool {
	switch ConstraintType(s) {
	case MustSeat, ForbidSeat, MustRow, ForbidRow, MustCol, ForbidCol, MustTogether, ForbidTogether:
		return true
	}
	return false
}

// SeatConstraint is one placement rule for a student.  Row/Col are used
// by the seat/row/col rules, TargetID and Distance by the pair rules.
// Distance is a Manhattan distance and is at least 1.  Disabled
// constraints are retained but never enforced.
type SeatConstraint struct {
	ID          uint64         // seat_constraints.id
	ClassroomID uint64         // seat_constraints.classroom_id
	Type        ConstraintType // seat_constraints.constraint_type
	StudentID   uint64         // seat_constraints.student_id (subject)
	TargetID    uint64         // seat_constraints.target_id, 0 = none
	Row         int            // seat_constraints.row_num, 0 = unset
	Col         int            // seat_constraints.col_num, 0 = unset
	Distance    int            // seat_constraints.distance, >= 1
	Enabled     bool           // seat_constraints.enabled
	Note        string         // seat_constraints.note
}
