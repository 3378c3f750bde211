package engine

import (
	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// MoveRequest is one entry of a batch move: a student and the seat they
// should end up in.
type MoveRequest struct {
	StudentID uint64
	To        Coord
}

// PerformMove relocates one student to the target seat as one atomic
// unit.  When the target is occupied the sitting student is displaced
// into the mover's origin seat (a swap when both ends are occupied, a
// plain vacate+fill otherwise).  Group leaderships broken by the move
// are cleared.  The returned action inverts by swapping from/to.
func (st *State) PerformMove(studentID uint64, target Coord) (model.Action, error) {
	if _, ok := st.Students[studentID]; !ok {
		return model.Action{}, ErrStudentNotFound
	}
	targetSeat := st.SeatAt(target)
	if targetSeat == nil {
		return model.Action{}, ErrSeatNotFound
	}
	if targetSeat.CellType != model.CellSeat {
		return model.Action{}, ErrNotAssignable
	}

	origin, hadSeat := st.SeatOf(studentID)
	displaced := targetSeat.StudentID
	if displaced == studentID {
		displaced = 0 // moving onto one's own seat
	}

	item := model.MoveItem{StudentID: studentID, DisplacedID: displaced}
	if hadSeat {
		r, c := origin.Row, origin.Col
		item.FromRow, item.FromCol = &r, &c
	}
	tr, tc := target.Row, target.Col
	item.ToRow, item.ToCol = &tr, &tc

	// Clear both ends first, then write, so no identity ever sits in
	// two seats at once.
	if hadSeat {
		st.setOccupant(origin, 0)
	}
	st.setOccupant(targetSeat, 0)
	if hadSeat && displaced != 0 {
		st.setOccupant(origin, displaced)
	}
	st.setOccupant(targetSeat, studentID)

	st.NormalizeLeaders()
	return model.Action{Kind: model.ActionMove, Move: &item}, nil
}

// ClearSeat removes the occupant of a seat and returns the move action
// (a move with no destination) recording it.
func (st *State) ClearSeat(at Coord) (model.Action, error) {
	seat := st.SeatAt(at)
	if seat == nil {
		return model.Action{}, ErrSeatNotFound
	}
	if seat.StudentID == 0 {
		return model.Action{}, ErrSeatEmpty
	}
	r, c := at.Row, at.Col
	item := model.MoveItem{StudentID: seat.StudentID, FromRow: &r, FromCol: &c}
	st.setOccupant(seat, 0)
	st.NormalizeLeaders()
	return model.Action{Kind: model.ActionMove, Move: &item}, nil
}

// SwapSeats exchanges the occupants of two seats, clearing both before
// the cross-assignment to avoid transient uniqueness collisions.
func (st *State) SwapSeats(a, b Coord) error {
	if a == b {
		return nil
	}
	seatA, seatB := st.SeatAt(a), st.SeatAt(b)
	if seatA == nil || seatB == nil {
		return ErrSeatNotFound
	}
	if seatA.CellType != model.CellSeat || seatB.CellType != model.CellSeat {
		return ErrNotAssignable
	}
	occA, occB := seatA.StudentID, seatB.StudentID
	st.setOccupant(seatA, 0)
	st.setOccupant(seatB, 0)
	if occB != 0 {
		st.setOccupant(seatA, occB)
	}
	if occA != 0 {
		st.setOccupant(seatB, occA)
	}
	st.NormalizeLeaders()
	return nil
}

// MoveMany applies a batch of moves in order and records them as one
// MoveBatch action.  The whole batch is validated up front: duplicate
// students, duplicate targets, unknown students, missing or non-seat
// targets all reject with zero state change.
func (st *State) MoveMany(reqs []MoveRequest) (model.Action, error) {
	seenStudent := make(map[uint64]struct{}, len(reqs))
	seenTarget := make(map[Coord]struct{}, len(reqs))
	for _, req := range reqs {
		if _, dup := seenStudent[req.StudentID]; dup {
			return model.Action{}, ErrDuplicateStudent
		}
		seenStudent[req.StudentID] = struct{}{}
		if _, dup := seenTarget[req.To]; dup {
			return model.Action{}, ErrDuplicateTarget
		}
		seenTarget[req.To] = struct{}{}
		if _, ok := st.Students[req.StudentID]; !ok {
			return model.Action{}, ErrStudentNotFound
		}
		seat := st.SeatAt(req.To)
		if seat == nil {
			return model.Action{}, ErrSeatNotFound
		}
		if seat.CellType != model.CellSeat {
			return model.Action{}, ErrNotAssignable
		}
	}

	items := make([]model.MoveItem, 0, len(reqs))
	for _, req := range reqs {
		act, err := st.PerformMove(req.StudentID, req.To)
		if err != nil {
			// Unreachable after validation; surface rather than hide.
			return model.Action{}, err
		}
		items = append(items, *act.Move)
	}
	return model.Action{Kind: model.ActionMoveBatch, Moves: items}, nil
}
