package model

import "time"

// LayoutSnapshot is a named, JSON-serialized copy of a classroom layout
// (the SnapshotPayload below).  Snapshots are the stable import/export
// contract: any loader producing this shape can be applied to a
// classroom and arranged/repaired like interactively created state.
type LayoutSnapshot struct {
	ID          uint64    // layout_snapshots.id
	ClassroomID uint64    // layout_snapshots.classroom_id
	Name        string    // layout_snapshots.name, unique per classroom
	Data        []byte    // layout_snapshots.data, JSON SnapshotPayload
	CreatedAt   time.Time // layout_snapshots.created_at
}

// SnapshotPayload is the wire shape of an exported layout.  Students and
// Constraints are optional: a pure layout snapshot omits them, a full
// export carries both.
type SnapshotPayload struct {
	Meta        SnapshotMeta         `json:"meta"`
	Classroom   SnapshotClassroom    `json:"classroom"`
	Seats       []SnapshotSeat       `json:"seats"`
	Groups      []SnapshotGroup      `json:"groups"`
	Students    []SnapshotStudent    `json:"students,omitempty"`
	Constraints []SnapshotConstraint `json:"constraints,omitempty"`
}

// SnapshotMeta identifies the producing application and export time.
type SnapshotMeta struct {
	App        string `json:"app"`
	Version    string `json:"version"`
	ExportedAt string `json:"exported_at"`
}

// SnapshotClassroom carries the grid dimensions of the exported layout.
type SnapshotClassroom struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

// SnapshotSeat references its occupant three ways (pk, student number,
// name) so imports into a different roster can still match students.
type SnapshotSeat struct {
	Row         int      `json:"row"`
	Col         int      `json:"col"`
	CellType    CellType `json:"cell_type"`
	StudentPK   uint64   `json:"student_pk,omitempty"`
	StudentNo   string   `json:"student_no,omitempty"`
	StudentName string   `json:"student_name,omitempty"`
	GroupName   string   `json:"group_name,omitempty"`
}

// SnapshotGroup carries a group's name and display order.
type SnapshotGroup struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// SnapshotStudent is one roster entry of a full export.
type SnapshotStudent struct {
	Name      string  `json:"name"`
	StudentNo string  `json:"student_no,omitempty"`
	Gender    string  `json:"gender,omitempty"`
	Score     float64 `json:"score"`
}

// SnapshotConstraint mirrors SeatConstraint with the same triple student
// reference used by SnapshotSeat.
type SnapshotConstraint struct {
	Type        ConstraintType `json:"constraint_type"`
	StudentPK   uint64         `json:"student_pk,omitempty"`
	StudentNo   string         `json:"student_no,omitempty"`
	StudentName string         `json:"student_name,omitempty"`
	TargetPK    uint64         `json:"target_pk,omitempty"`
	TargetNo    string         `json:"target_no,omitempty"`
	TargetName  string         `json:"target_name,omitempty"`
	Row         int            `json:"row,omitempty"`
	Col         int            `json:"col,omitempty"`
	Distance    int            `json:"distance"`
	Enabled     bool           `json:"enabled"`
	Note        string         `json:"note,omitempty"`
}
