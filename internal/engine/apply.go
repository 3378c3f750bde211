package engine

import "github.com/iliyamo/classroom-seat-planner/internal/model"

// ApplyAction replays an action against the live state.  Undo is just
// ApplyAction(action.Invert()).  Replay is tolerant of drift between
// the recorded action and the current roster or grid: items naming a
// student, seat, or group that no longer exists are skipped rather than
// failing the whole action, since history entries may outlive deletes.
func (st *State) ApplyAction(a model.Action) {
	switch a.Kind {
	case model.ActionMove:
		if a.Move != nil {
			st.applyMove(*a.Move)
		}
	case model.ActionMoveBatch:
		for _, m := range a.Moves {
			st.applyMove(m)
		}
	case model.ActionCellType:
		if a.CellType != nil {
			st.applyCellType(*a.CellType)
		}
	case model.ActionGroup:
		if a.Group != nil {
			st.applyGroup(*a.Group)
		}
	case model.ActionGroupBatch:
		for _, g := range a.GroupBatch {
			st.applyGroup(g)
		}
	case model.ActionSeatLayout:
		st.applyLayout(a.SeatLayout)
	}
	st.NormalizeLeaders()
}

func (st *State) applyMove(m model.MoveItem) {
	if _, ok := st.Students[m.StudentID]; !ok {
		return
	}
	from := st.seatAtPtr(m.FromRow, m.FromCol)
	to := st.seatAtPtr(m.ToRow, m.ToCol)
	if m.ToRow != nil && (to == nil || to.CellType != model.CellSeat) {
		return // recorded destination no longer exists, skip this item
	}

	// Clear both endpoints first so the swap below never passes through
	// a double occupancy.
	if from != nil && from.StudentID == m.StudentID {
		st.setOccupant(from, 0)
	}
	if cur, seated := st.SeatOf(m.StudentID); seated {
		st.setOccupant(cur, 0)
	}
	if to != nil {
		st.setOccupant(to, 0)
	}
	if m.DisplacedID != 0 && from != nil {
		if _, ok := st.Students[m.DisplacedID]; ok {
			st.setOccupant(from, m.DisplacedID)
		}
	}
	if to != nil && to.CellType == model.CellSeat {
		st.setOccupant(to, m.StudentID)
	}
}

func (st *State) applyCellType(ct model.CellTypeItem) {
	seat := st.SeatAt(Coord{Row: ct.Row, Col: ct.Col})
	if seat == nil || !model.ValidCellType(string(ct.After)) {
		return
	}
	seat.CellType = ct.After
	if ct.After != model.CellSeat {
		st.setOccupant(seat, 0)
		seat.GroupID = 0
		return
	}
	// Turning a cell back into a seat restores whatever it carried when
	// it stopped being one, provided the student is still free.
	if ct.PrevStudentID != 0 {
		if _, ok := st.Students[ct.PrevStudentID]; ok {
			if _, seated := st.SeatOf(ct.PrevStudentID); !seated {
				st.setOccupant(seat, ct.PrevStudentID)
			}
		}
	}
	if ct.PrevGroupID != 0 {
		if _, ok := st.Groups[ct.PrevGroupID]; ok {
			seat.GroupID = ct.PrevGroupID
		}
	}
}

func (st *State) applyGroup(g model.GroupItem) {
	seat := st.SeatAt(Coord{Row: g.Row, Col: g.Col})
	if seat == nil {
		return
	}
	if g.AfterGroupID != 0 {
		if _, ok := st.Groups[g.AfterGroupID]; !ok {
			return
		}
	}
	seat.GroupID = g.AfterGroupID
}

func (st *State) applyLayout(items []model.LayoutItem) {
	// Clear every touched seat before writing any occupant so that a
	// rotation of occupants cannot trip over itself midway.
	for _, it := range items {
		if seat := st.SeatAt(Coord{Row: it.Row, Col: it.Col}); seat != nil {
			st.setOccupant(seat, 0)
		}
	}
	for _, it := range items {
		seat := st.SeatAt(Coord{Row: it.Row, Col: it.Col})
		if seat == nil {
			continue
		}
		if it.AfterStudentID != 0 && seat.CellType == model.CellSeat {
			if _, ok := st.Students[it.AfterStudentID]; ok {
				st.setOccupant(seat, it.AfterStudentID)
			}
		}
		if it.AfterGroupID == 0 {
			seat.GroupID = 0
		} else if _, ok := st.Groups[it.AfterGroupID]; ok {
			seat.GroupID = it.AfterGroupID
		}
	}
}

func (st *State) seatAtPtr(row, col *int) *model.Seat {
	if row == nil || col == nil {
		return nil
	}
	return st.SeatAt(Coord{Row: *row, Col: *col})
}
