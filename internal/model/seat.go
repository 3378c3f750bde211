package model

// CellType describes what a grid cell is used for.  Only SEAT cells can
// hold a student or belong to a group; the other kinds are layout
// decoration (aisles, the podium, intentionally empty space).
type CellType string

const (
	CellSeat   CellType = "seat"   // assignable seat
	CellAisle  CellType = "aisle"  // walkway, never assignable
	CellPodium CellType = "podium" // teacher's podium
	CellEmpty  CellType = "empty"  // unused cell
)

// ValidCellType reports whether s is one of the known cell kinds.
func ValidCellType(s string) bool {
	switch CellType(s) {
	case CellSeat, CellAisle, CellPodium, CellEmpty:
		return true
	}
	return false
}

// Seat is one cell of a classroom grid.  Row and Col are 1-based and
// unique per classroom.  StudentID and GroupID are zero when the seat is
// unoccupied or ungrouped; the repository layer maps zero to NULL.
type Seat struct {
	ID          uint64   // seats.id
	ClassroomID uint64   // seats.classroom_id
	Row         int      // seats.row (1-based)
	Col         int      // seats.col (1-based)
	CellType    CellType // seats.cell_type
	StudentID   uint64   // seats.student_id, 0 = empty
	GroupID     uint64   // seats.group_id, 0 = ungrouped
}
