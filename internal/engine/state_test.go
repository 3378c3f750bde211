package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// gridSeats builds a full rows x cols grid of plain seat cells.
func gridSeats(rows, cols int) []model.Seat {
	seats := make([]model.Seat, 0, rows*cols)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			seats = append(seats, model.Seat{Row: r, Col: c, CellType: model.CellSeat})
		}
	}
	return seats
}

func newGridState(rows, cols int, students []model.Student, groups []model.SeatGroup, cons []model.SeatConstraint) *State {
	return NewState(model.Classroom{Rows: rows, Cols: cols}, gridSeats(rows, cols), students, groups, cons)
}

func roster(n int) []model.Student {
	out := make([]model.Student, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Student{ID: uint64(i), Name: string(rune('A' + i - 1)), Score: float64(100 - i*10)})
	}
	return out
}

// seatCoord fails the test when the student is unseated.
func seatCoord(t *testing.T, st *State, studentID uint64) Coord {
	t.Helper()
	seat, ok := st.SeatOf(studentID)
	require.True(t, ok, "student %d should be seated", studentID)
	return Coord{Row: seat.Row, Col: seat.Col}
}

// requireUnique asserts the occupancy invariant: no student in two
// seats, no seat with a phantom occupant.
func requireUnique(t *testing.T, st *State) {
	t.Helper()
	seen := make(map[uint64]Coord)
	for _, s := range st.SeatCells() {
		if s.StudentID == 0 {
			continue
		}
		prev, dup := seen[s.StudentID]
		require.False(t, dup, "student %d sits at both %v and (%d,%d)", s.StudentID, prev, s.Row, s.Col)
		seen[s.StudentID] = Coord{Row: s.Row, Col: s.Col}
	}
	for id, c := range seen {
		at, ok := st.SeatOf(id)
		require.True(t, ok)
		assert.Equal(t, c, Coord{Row: at.Row, Col: at.Col})
	}
}

func TestManhattan(t *testing.T) {
	assert.Equal(t, 0, Manhattan(Coord{1, 1}, Coord{1, 1}))
	assert.Equal(t, 3, Manhattan(Coord{1, 1}, Coord{2, 3}))
	assert.Equal(t, 3, Manhattan(Coord{2, 3}, Coord{1, 1}))
}

func TestNewStateIndexesOccupants(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[0].StudentID = 1
	seats[1].StudentID = 99 // not on the roster, treated as empty
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(1), nil, nil)

	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1))
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 2}).StudentID)
}

func TestRemoveStudentRepairsReferences(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[0].StudentID = 1
	seats[0].GroupID = 10
	groups := []model.SeatGroup{{ID: 10, Name: "left", LeaderID: 1}}
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustTogether, StudentID: 1, TargetID: 2, Distance: 1, Enabled: true},
		{ID: 2, Type: model.MustRow, StudentID: 2, Row: 1, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(2), groups, cons)

	st.RemoveStudent(1)

	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 1}).StudentID)
	assert.Equal(t, uint64(0), st.Groups[10].LeaderID)
	require.Len(t, st.Constraints, 1)
	assert.Equal(t, uint64(2), st.Constraints[0].ID)
	_, ok := st.Students[1]
	assert.False(t, ok)
}

func TestNormalizeLeadersClearsDisplacedLeader(t *testing.T) {
	seats := gridSeats(1, 3)
	seats[0].StudentID = 1
	seats[0].GroupID = 10
	seats[1].GroupID = 10
	groups := []model.SeatGroup{{ID: 10, Name: "front", LeaderID: 1}}
	st := NewState(model.Classroom{Rows: 1, Cols: 3}, seats, roster(1), groups, nil)

	// Moving the leader out of the group's seats drops the leadership.
	_, err := st.PerformMove(1, Coord{1, 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), st.Groups[10].LeaderID)
}

func TestSyncGrid(t *testing.T) {
	seats := gridSeats(2, 2)
	seats[3].StudentID = 1 // (2,2)
	st := NewState(model.Classroom{Rows: 2, Cols: 2}, seats, roster(1), nil, nil)

	st.SyncGrid(1, 3)

	assert.Nil(t, st.SeatAt(Coord{2, 2}), "shrunk row should be gone")
	require.NotNil(t, st.SeatAt(Coord{1, 3}), "grown column should exist")
	assert.Equal(t, model.CellSeat, st.SeatAt(Coord{1, 3}).CellType)
	_, seated := st.SeatOf(1)
	assert.False(t, seated, "occupant of a dropped cell is unseated")

	// Dimensions clamp to the supported range.
	st.SyncGrid(0, model.GridLimit+5)
	assert.Equal(t, 1, st.Rows)
	assert.Equal(t, model.GridLimit, st.Cols)
}

func TestCloneIsIndependent(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[0].StudentID = 1
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(2), nil, nil)

	snap := st.Clone()
	_, err := st.PerformMove(1, Coord{1, 2})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snap.SeatAt(Coord{1, 1}).StudentID, "clone keeps the old layout")
	st.Restore(snap)
	assert.Equal(t, uint64(1), st.SeatAt(Coord{1, 1}).StudentID)
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 2}).StudentID)
	requireUnique(t, st)
}
