package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// roundTrip applies invert then forward and asserts the layout equals
// the post-action layout both times it should.
func roundTrip(t *testing.T, st *State, act model.Action) {
	t.Helper()
	after := st.Clone()
	st.ApplyAction(act.Invert())
	st.ApplyAction(act)
	for id := range after.Students {
		wantSeat, wantOK := after.SeatOf(id)
		gotSeat, gotOK := st.SeatOf(id)
		require.Equal(t, wantOK, gotOK, "student %d seated state", id)
		if wantOK {
			assert.Equal(t, wantSeat.Row, gotSeat.Row)
			assert.Equal(t, wantSeat.Col, gotSeat.Col)
		}
	}
	requireUnique(t, st)
}

func TestUndoRedoMove(t *testing.T) {
	st := seededState(t, 3)
	act, err := st.PerformMove(1, Coord{1, 3})
	require.NoError(t, err)
	roundTrip(t, st, act)
}

func TestUndoRedoMoveBatch(t *testing.T) {
	st := seededState(t, 4)
	act, err := st.MoveMany([]MoveRequest{
		{StudentID: 1, To: Coord{1, 4}},
		{StudentID: 2, To: Coord{1, 3}},
	})
	require.NoError(t, err)
	roundTrip(t, st, act)
}

func TestUndoRedoCellType(t *testing.T) {
	st := seededState(t, 2)
	act := model.Action{Kind: model.ActionCellType, CellType: &model.CellTypeItem{
		Row: 1, Col: 1,
		Before: model.CellSeat, After: model.CellAisle,
		PrevStudentID: 1,
	}}
	st.ApplyAction(act)

	assert.Equal(t, model.CellAisle, st.SeatAt(Coord{1, 1}).CellType)
	_, seated := st.SeatOf(1)
	assert.False(t, seated, "cell losing seat type evicts its occupant")

	st.ApplyAction(act.Invert())
	assert.Equal(t, model.CellSeat, st.SeatAt(Coord{1, 1}).CellType)
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1), "undo restores the evicted occupant")
}

func TestUndoRedoGroupChange(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[0].GroupID = 10
	groups := []model.SeatGroup{{ID: 10}, {ID: 20}}
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, nil, groups, nil)

	act := model.Action{Kind: model.ActionGroup, Group: &model.GroupItem{
		Row: 1, Col: 1, BeforeGroupID: 10, AfterGroupID: 20,
	}}
	st.ApplyAction(act)
	assert.Equal(t, uint64(20), st.SeatAt(Coord{1, 1}).GroupID)

	st.ApplyAction(act.Invert())
	assert.Equal(t, uint64(10), st.SeatAt(Coord{1, 1}).GroupID)
}

func TestUndoRedoGroupBatch(t *testing.T) {
	seats := gridSeats(1, 3)
	groups := []model.SeatGroup{{ID: 10}}
	st := NewState(model.Classroom{Rows: 1, Cols: 3}, seats, nil, groups, nil)

	act := model.Action{Kind: model.ActionGroupBatch, GroupBatch: []model.GroupItem{
		{Row: 1, Col: 1, AfterGroupID: 10},
		{Row: 1, Col: 2, AfterGroupID: 10},
	}}
	st.ApplyAction(act)
	assert.Equal(t, uint64(10), st.SeatAt(Coord{1, 1}).GroupID)
	assert.Equal(t, uint64(10), st.SeatAt(Coord{1, 2}).GroupID)

	st.ApplyAction(act.Invert())
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 1}).GroupID)
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 2}).GroupID)
}

func TestUndoRedoSeatLayout(t *testing.T) {
	st := seededState(t, 3)

	layout := model.Action{Kind: model.ActionSeatLayout, SeatLayout: []model.LayoutItem{
		{Row: 1, Col: 1, BeforeStudentID: 1, AfterStudentID: 3},
		{Row: 1, Col: 3, BeforeStudentID: 3, AfterStudentID: 1},
	}}
	st.ApplyAction(layout)
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 3))
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 2))
	roundTrip(t, st, layout)
}

func TestApplySkipsDanglingReferences(t *testing.T) {
	st := seededState(t, 2)
	act, err := st.PerformMove(1, Coord{1, 2})
	require.NoError(t, err)

	// Student 1 is deleted after the move; undoing it must skip their
	// part of the replay but still restore the displaced student.
	st.RemoveStudent(1)
	st.ApplyAction(act.Invert())

	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 2), "displaced student travels back")
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 2}).StudentID)
}

func TestApplySkipsUnknownSeatAndGroup(t *testing.T) {
	st := seededState(t, 1)

	r, c := 9, 9
	st.ApplyAction(model.Action{Kind: model.ActionMove, Move: &model.MoveItem{
		StudentID: 1, ToRow: &r, ToCol: &c,
	}})
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1), "move to a vanished seat is a no-op")

	st.ApplyAction(model.Action{Kind: model.ActionGroup, Group: &model.GroupItem{
		Row: 1, Col: 1, AfterGroupID: 42,
	}})
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 1}).GroupID, "unknown group id is skipped")
}

func TestApplyRejectsUnknownCellType(t *testing.T) {
	st := seededState(t, 1)

	st.ApplyAction(model.Action{Kind: model.ActionCellType, CellType: &model.CellTypeItem{
		Row: 1, Col: 1, Before: model.CellSeat, After: model.CellType("balcony"),
	}})

	assert.Equal(t, model.CellSeat, st.SeatAt(Coord{1, 1}).CellType, "unknown cell type is skipped")
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1), "occupant keeps the seat")
}
