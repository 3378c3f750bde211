package engine

import "github.com/iliyamo/classroom-seat-planner/internal/model"

// Feasible decides whether the student may take the given seat under the
// index, considering only partners already present in assigned.  The
// required map (grouped arrangement only) pins students to their
// bucketed group; pass nil to skip that check.
//
// Pair rules are evaluated against already-assigned partners only, so
// the verdict depends on placement order.  That incompleteness is
// intentional: the arranger places greedily and the repair loop patches
// pair breaks the predicate could not see (see Stabilize).
func (idx *Index) Feasible(studentID uint64, seat *model.Seat, assigned map[uint64]Coord, required map[uint64]uint64) bool {
	if seat == nil || seat.CellType != model.CellSeat {
		return false
	}
	at := Coord{Row: seat.Row, Col: seat.Col}

	if required != nil {
		if gid, ok := required[studentID]; ok && seat.GroupID != gid {
			return false
		}
	}
	if fixed, ok := idx.FixedSeat[studentID]; ok && fixed != at {
		return false
	}
	if rows, ok := idx.MustRows[studentID]; ok {
		if _, in := rows[seat.Row]; !in {
			return false
		}
	}
	if cols, ok := idx.MustCols[studentID]; ok {
		if _, in := cols[seat.Col]; !in {
			return false
		}
	}
	if rows, ok := idx.ForbidRows[studentID]; ok {
		if _, in := rows[seat.Row]; in {
			return false
		}
	}
	if cols, ok := idx.ForbidCols[studentID]; ok {
		if _, in := cols[seat.Col]; in {
			return false
		}
	}
	if seats, ok := idx.ForbidSeats[studentID]; ok {
		if _, in := seats[at]; in {
			return false
		}
	}
	for _, p := range idx.ForbidPairs[studentID] {
		if other, placed := assigned[p.Other]; placed && Manhattan(at, other) <= p.Distance {
			return false
		}
	}
	for _, p := range idx.MustPairs[studentID] {
		if other, placed := assigned[p.Other]; placed && Manhattan(at, other) > p.Distance {
			return false
		}
	}
	return true
}
