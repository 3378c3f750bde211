package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

func TestRotateGroupsRejectsUnequalSizes(t *testing.T) {
	// 1x5 grid: a 3-seat group and a 2-seat group have no positional
	// mapping, so rotation must reject without touching anything.
	seats := gridSeats(1, 5)
	seats[0].GroupID, seats[1].GroupID, seats[2].GroupID = 10, 10, 10
	seats[3].GroupID, seats[4].GroupID = 20, 20
	seats[0].StudentID = 1
	seats[3].StudentID = 2
	groups := []model.SeatGroup{{ID: 10, Order: 1}, {ID: 20, Order: 2}}
	st := NewState(model.Classroom{Rows: 1, Cols: 5}, seats, roster(2), groups, nil)

	_, err := st.RotateGroups()
	assert.ErrorIs(t, err, ErrSeatCountsDiffer)
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 4}, seatCoord(t, st, 2))
}

func TestRotateGroupsNeedsTwoGroups(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[0].GroupID, seats[1].GroupID = 10, 10
	groups := []model.SeatGroup{{ID: 10}}
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, nil, groups, nil)

	_, err := st.RotateGroups()
	assert.ErrorIs(t, err, ErrNoGroups)
}

func TestRotateGroupsShiftsOccupants(t *testing.T) {
	seats := gridSeats(1, 4)
	seats[0].GroupID, seats[1].GroupID = 10, 10
	seats[2].GroupID, seats[3].GroupID = 20, 20
	seats[0].StudentID, seats[1].StudentID = 1, 2
	seats[2].StudentID = 3 // (1,4) stays empty
	groups := []model.SeatGroup{{ID: 10, Order: 1}, {ID: 20, Order: 2}}
	st := NewState(model.Classroom{Rows: 1, Cols: 4}, seats, roster(3), groups, nil)

	act, err := st.RotateGroups()
	require.NoError(t, err)
	require.Equal(t, model.ActionSeatLayout, act.Kind)

	// Group 10's occupants land on group 20's seats and vice versa.
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 4}, seatCoord(t, st, 2))
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 3))
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 2}).StudentID)
	requireUnique(t, st)

	// Seats keep their group labels; only people rotate.
	assert.Equal(t, uint64(10), st.SeatAt(Coord{1, 1}).GroupID)
	assert.Equal(t, uint64(20), st.SeatAt(Coord{1, 3}).GroupID)

	// The inverse restores the starting layout.
	st.ApplyAction(act.Invert())
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 2))
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 3))
}

func TestRotateGroupsThreeWay(t *testing.T) {
	seats := gridSeats(1, 3)
	for i := range seats {
		seats[i].GroupID = uint64(10 * (i + 1))
		seats[i].StudentID = uint64(i + 1)
	}
	groups := []model.SeatGroup{
		{ID: 10, Order: 1}, {ID: 20, Order: 2}, {ID: 30, Order: 3},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 3}, seats, roster(3), groups, nil)

	_, err := st.RotateGroups()
	require.NoError(t, err)
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 2))
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 3), "last group wraps to the first")
}
