package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// seededState returns a 1xN grid with students 1..n seated left to
// right.
func seededState(t *testing.T, n int) *State {
	t.Helper()
	seats := gridSeats(1, n)
	for i := range seats {
		seats[i].StudentID = uint64(i + 1)
	}
	return NewState(model.Classroom{Rows: 1, Cols: n}, seats, roster(n), nil, nil)
}

func TestPerformMoveSwapsOccupants(t *testing.T) {
	st := seededState(t, 2)

	act, err := st.PerformMove(1, Coord{1, 2})
	require.NoError(t, err)

	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 2), "displaced student takes the origin")
	requireUnique(t, st)

	require.Equal(t, model.ActionMove, act.Kind)
	require.NotNil(t, act.Move)
	assert.Equal(t, uint64(2), act.Move.DisplacedID)
}

func TestPerformMoveToFreeSeat(t *testing.T) {
	st := newGridState(1, 2, roster(1), nil, nil)

	act, err := st.PerformMove(1, Coord{1, 2})
	require.NoError(t, err)
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 1))
	assert.Nil(t, act.Move.FromRow, "unseated mover has no origin")
	assert.Equal(t, uint64(0), act.Move.DisplacedID)
}

func TestPerformMoveValidation(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[1].CellType = model.CellAisle
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(1), nil, nil)

	_, err := st.PerformMove(99, Coord{1, 1})
	assert.ErrorIs(t, err, ErrStudentNotFound)
	_, err = st.PerformMove(1, Coord{5, 5})
	assert.ErrorIs(t, err, ErrSeatNotFound)
	_, err = st.PerformMove(1, Coord{1, 2})
	assert.ErrorIs(t, err, ErrNotAssignable)
}

func TestMoveInverseLaw(t *testing.T) {
	st := seededState(t, 3)

	act, err := st.PerformMove(1, Coord{1, 3})
	require.NoError(t, err)

	st.ApplyAction(act.Invert())

	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 2))
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 3))
	requireUnique(t, st)
}

func TestClearSeat(t *testing.T) {
	st := seededState(t, 2)

	act, err := st.ClearSeat(Coord{1, 1})
	require.NoError(t, err)
	_, seated := st.SeatOf(1)
	assert.False(t, seated)

	// The inverse of a clear puts the student back.
	st.ApplyAction(act.Invert())
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1))

	_, err = st.ClearSeat(Coord{1, 1})
	require.NoError(t, err)
	_, err = st.ClearSeat(Coord{1, 1})
	assert.ErrorIs(t, err, ErrSeatEmpty)
}

func TestSwapSeats(t *testing.T) {
	st := seededState(t, 3)
	_, err := st.ClearSeat(Coord{1, 3})
	require.NoError(t, err)

	require.NoError(t, st.SwapSeats(Coord{1, 1}, Coord{1, 3}))
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 1), "swap with an empty seat is a plain move")
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 1}).StudentID)

	require.NoError(t, st.SwapSeats(Coord{1, 2}, Coord{1, 3}))
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 2))
	requireUnique(t, st)
}

func TestMoveManyRejectsWholeBatch(t *testing.T) {
	st := seededState(t, 3)
	before := st.Clone()

	cases := []struct {
		name string
		reqs []MoveRequest
		want error
	}{
		{"duplicate target", []MoveRequest{{1, Coord{1, 3}}, {2, Coord{1, 3}}}, ErrDuplicateTarget},
		{"duplicate student", []MoveRequest{{1, Coord{1, 2}}, {1, Coord{1, 3}}}, ErrDuplicateStudent},
		{"unknown student", []MoveRequest{{1, Coord{1, 2}}, {99, Coord{1, 3}}}, ErrStudentNotFound},
		{"missing seat", []MoveRequest{{1, Coord{9, 9}}}, ErrSeatNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := st.MoveMany(tc.reqs)
			assert.ErrorIs(t, err, tc.want)
			for id := range before.Students {
				assert.Equal(t, seatCoord(t, before, id), seatCoord(t, st, id), "occupancy unchanged")
			}
		})
	}
}

func TestMoveManyAppliesInOrder(t *testing.T) {
	st := seededState(t, 3)

	act, err := st.MoveMany([]MoveRequest{
		{StudentID: 1, To: Coord{1, 3}},
		{StudentID: 3, To: Coord{1, 2}},
	})
	require.NoError(t, err)
	require.Equal(t, model.ActionMoveBatch, act.Kind)
	require.Len(t, act.Moves, 2)

	// First move swaps 1 and 3; second swaps 3 and 2.
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 2))
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 3))
	requireUnique(t, st)

	// Batch inverse restores the starting layout.
	st.ApplyAction(act.Invert())
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 2))
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 3))
}
