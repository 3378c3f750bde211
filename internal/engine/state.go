// Package engine implements the constraint-based seat assignment core:
// the constraint index, the feasibility predicate, the batch arrangers,
// the incremental move/swap operator and the bounded repair loop.  The
// engine is pure in-memory state; callers load a classroom into a State,
// run operations, and persist the result transactionally.  A State is
// never safe for concurrent mutation; requests for the same classroom
// must be serialized by the caller.
package engine

import (
	"sort"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// Coord addresses one grid cell, 1-based.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Manhattan returns |Δrow| + |Δcol| between two cells.
func Manhattan(a, b Coord) int {
	dr := a.Row - b.Row
	if dr < 0 {
		dr = -dr
	}
	dc := a.Col - b.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// State is the in-memory image of one classroom that all engine
// operations mutate.  The occupant index is derived and kept consistent
// by setOccupant/clearSeat; seat-occupant uniqueness holds at every
// exported-function boundary.
type State struct {
	Rows, Cols  int
	Seats       map[Coord]*model.Seat
	Students    map[uint64]*model.Student
	Groups      map[uint64]*model.SeatGroup
	Constraints []model.SeatConstraint

	occupant map[uint64]Coord // studentID -> seat, derived
}

// NewState assembles a State from loaded rows.  Seats carrying unknown
// students are treated as empty rather than rejected, mirroring the
// dangling-reference tolerance of replay.
func NewState(room model.Classroom, seats []model.Seat, students []model.Student, groups []model.SeatGroup, constraints []model.SeatConstraint) *State {
	st := &State{
		Rows:        room.Rows,
		Cols:        room.Cols,
		Seats:       make(map[Coord]*model.Seat, len(seats)),
		Students:    make(map[uint64]*model.Student, len(students)),
		Groups:      make(map[uint64]*model.SeatGroup, len(groups)),
		Constraints: append([]model.SeatConstraint(nil), constraints...),
		occupant:    make(map[uint64]Coord),
	}
	for i := range students {
		s := students[i]
		st.Students[s.ID] = &s
	}
	for i := range groups {
		g := groups[i]
		st.Groups[g.ID] = &g
	}
	for i := range seats {
		s := seats[i]
		if s.StudentID != 0 {
			if _, known := st.Students[s.StudentID]; !known {
				s.StudentID = 0
			}
		}
		c := Coord{Row: s.Row, Col: s.Col}
		st.Seats[c] = &s
		if s.StudentID != 0 {
			st.occupant[s.StudentID] = c
		}
	}
	return st
}

// Clone deep-copies the state.  Used for rollback scopes: operate on the
// clone, copy back only on success.
func (st *State) Clone() *State {
	cp := &State{
		Rows:        st.Rows,
		Cols:        st.Cols,
		Seats:       make(map[Coord]*model.Seat, len(st.Seats)),
		Students:    make(map[uint64]*model.Student, len(st.Students)),
		Groups:      make(map[uint64]*model.SeatGroup, len(st.Groups)),
		Constraints: append([]model.SeatConstraint(nil), st.Constraints...),
		occupant:    make(map[uint64]Coord, len(st.occupant)),
	}
	for c, s := range st.Seats {
		dup := *s
		cp.Seats[c] = &dup
	}
	for id, s := range st.Students {
		dup := *s
		cp.Students[id] = &dup
	}
	for id, g := range st.Groups {
		dup := *g
		cp.Groups[id] = &dup
	}
	for id, c := range st.occupant {
		cp.occupant[id] = c
	}
	return cp
}

// Restore overwrites st with the contents of snap (the counterpart of
// Clone for rolling a failed operation back in place).
func (st *State) Restore(snap *State) {
	*st = *snap.Clone()
}

// SeatAt returns the cell at c, nil when outside the grid.
func (st *State) SeatAt(c Coord) *model.Seat {
	return st.Seats[c]
}

// SeatOf returns the seat currently held by the student, or false.
func (st *State) SeatOf(studentID uint64) (*model.Seat, bool) {
	c, ok := st.occupant[studentID]
	if !ok {
		return nil, false
	}
	return st.Seats[c], true
}

// SeatCells returns every assignable seat cell in row-major order.  The
// deterministic order is what gives the greedy arranger its "first
// feasible seat in list order" semantics.
func (st *State) SeatCells() []*model.Seat {
	out := make([]*model.Seat, 0, len(st.Seats))
	for _, s := range st.Seats {
		if s.CellType == model.CellSeat {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// Roster returns all students ordered by ID for deterministic walks.
func (st *State) Roster() []*model.Student {
	out := make([]*model.Student, 0, len(st.Students))
	for _, s := range st.Students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GroupList returns groups by display order, then ID.
func (st *State) GroupList() []*model.SeatGroup {
	out := make([]*model.SeatGroup, 0, len(st.Groups))
	for _, g := range st.Groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GroupSeats returns the group's seat cells in row-major order.
func (st *State) GroupSeats(groupID uint64) []*model.Seat {
	var out []*model.Seat
	for _, s := range st.SeatCells() {
		if s.GroupID == groupID {
			out = append(out, s)
		}
	}
	return out
}

// UnseatedIDs lists students without a seat, ordered by ID.
func (st *State) UnseatedIDs() []uint64 {
	var out []uint64
	for id := range st.Students {
		if _, seated := st.occupant[id]; !seated {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// setOccupant writes a student into a seat and maintains the derived
// index.  A zero id clears the seat.  If the student already holds a
// different seat it is vacated first, so uniqueness cannot break even
// during replay of historic actions.
func (st *State) setOccupant(seat *model.Seat, studentID uint64) {
	if seat.StudentID != 0 {
		delete(st.occupant, seat.StudentID)
	}
	if studentID != 0 {
		if prev, ok := st.occupant[studentID]; ok {
			if ps := st.Seats[prev]; ps != nil && ps != seat {
				ps.StudentID = 0
			}
		}
	}
	seat.StudentID = studentID
	if studentID != 0 {
		st.occupant[studentID] = Coord{Row: seat.Row, Col: seat.Col}
	}
}

// ClearOccupancy empties every seat.  This is the in-memory half of the
// clear-then-write pattern; persistence repeats it inside the same
// transaction.
func (st *State) ClearOccupancy() {
	for _, s := range st.Seats {
		s.StudentID = 0
	}
	st.occupant = make(map[uint64]Coord)
}

// NormalizeLeaders clears any group leader who no longer occupies a seat
// belonging to that group.  Invoked after every structural change.
func (st *State) NormalizeLeaders() {
	for _, g := range st.Groups {
		if g.LeaderID == 0 {
			continue
		}
		seat, seated := st.SeatOf(g.LeaderID)
		if !seated || seat.GroupID != g.ID {
			g.LeaderID = 0
		}
	}
}

// RemoveStudent deletes a student and repairs every reference to them:
// seat occupancy, group leadership, and any constraint naming them as
// subject or target (the explicit SET_NULL/cascade semantics).
func (st *State) RemoveStudent(studentID uint64) {
	if seat, ok := st.SeatOf(studentID); ok {
		st.setOccupant(seat, 0)
	}
	for _, g := range st.Groups {
		if g.LeaderID == studentID {
			g.LeaderID = 0
		}
	}
	kept := st.Constraints[:0]
	for _, c := range st.Constraints {
		if c.StudentID == studentID || c.TargetID == studentID {
			continue
		}
		kept = append(kept, c)
	}
	st.Constraints = kept
	delete(st.Students, studentID)
}

// SyncGrid resizes the grid to rows×cols (clamped to 1..GridLimit):
// out-of-range cells are dropped together with their occupancy, missing
// cells are created as plain seats.
func (st *State) SyncGrid(rows, cols int) {
	rows = clamp(rows, 1, model.GridLimit)
	cols = clamp(cols, 1, model.GridLimit)
	st.Rows, st.Cols = rows, cols
	for c, s := range st.Seats {
		if c.Row > rows || c.Col > cols {
			if s.StudentID != 0 {
				delete(st.occupant, s.StudentID)
			}
			delete(st.Seats, c)
		}
	}
	for r := 1; r <= rows; r++ {
		for cl := 1; cl <= cols; cl++ {
			c := Coord{Row: r, Col: cl}
			if _, ok := st.Seats[c]; !ok {
				st.Seats[c] = &model.Seat{Row: r, Col: cl, CellType: model.CellSeat}
			}
		}
	}
	st.NormalizeLeaders()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
