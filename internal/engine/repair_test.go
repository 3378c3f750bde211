package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

func TestStabilizeSwapsPinnedStudentBack(t *testing.T) {
	// A belongs in (1,1).  Moving A onto B leaves A at (1,2) and B at
	// (1,1); the repair loop must swap them back.
	seats := gridSeats(1, 2)
	seats[0].StudentID = 1
	seats[1].StudentID = 2
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustSeat, StudentID: 1, Row: 1, Col: 1, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(2), nil, cons)

	_, err := st.PerformMove(1, Coord{1, 2})
	require.NoError(t, err)
	require.NotEmpty(t, st.Evaluate())

	assert.True(t, st.Stabilize())
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 2))
	requireUnique(t, st)
}

func TestStabilizeSeparatesForbiddenPair(t *testing.T) {
	seats := gridSeats(1, 3)
	seats[0].StudentID = 1
	seats[1].StudentID = 2
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.ForbidTogether, StudentID: 1, TargetID: 2, Distance: 1, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 3}, seats, roster(2), nil, cons)

	assert.True(t, st.Stabilize())
	d := Manhattan(seatCoord(t, st, 1), seatCoord(t, st, 2))
	assert.Greater(t, d, 1)
	requireUnique(t, st)
}

func TestStabilizePullsPairTogether(t *testing.T) {
	seats := gridSeats(1, 4)
	seats[0].StudentID = 1
	seats[3].StudentID = 2
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustTogether, StudentID: 1, TargetID: 2, Distance: 1, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 4}, seats, roster(2), nil, cons)

	assert.True(t, st.Stabilize())
	d := Manhattan(seatCoord(t, st, 1), seatCoord(t, st, 2))
	assert.LessOrEqual(t, d, 1)
}

func TestStabilizeIgnoresDisabledConstraints(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[1].StudentID = 1
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustSeat, StudentID: 1, Row: 1, Col: 1, Enabled: false},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(1), nil, cons)

	assert.True(t, st.Stabilize())
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 1), "disabled rule must not trigger a move")
}

func TestAttemptAutoFixRecovers(t *testing.T) {
	// Adjacent seating violates the rule; the diagonal of a 2x2 grid
	// satisfies it, so the ladder must find a clean layout.
	seats := gridSeats(2, 2)
	seats[0].StudentID = 1
	seats[1].StudentID = 2
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.ForbidTogether, StudentID: 1, TargetID: 2, Distance: 1, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 2, Cols: 2}, seats, roster(2), nil, cons)

	err := st.AttemptAutoFix(MethodScoreDesc, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Empty(t, st.Evaluate())
	assert.Equal(t, 0, st.UnseatedCount())
	assert.Greater(t, Manhattan(seatCoord(t, st, 1), seatCoord(t, st, 2)), 1)
}

func TestAttemptAutoFixLeavesStateUntouchedOnFailure(t *testing.T) {
	// Two students on a 1x2 grid can never be more than one apart, so
	// the constraint is unsatisfiable.
	seats := gridSeats(1, 2)
	seats[0].StudentID = 1
	seats[1].StudentID = 2
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.ForbidTogether, StudentID: 1, TargetID: 2, Distance: 5, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(2), nil, cons)

	err := st.AttemptAutoFix(MethodScoreDesc, rand.New(rand.NewSource(1)))

	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.NotEmpty(t, unresolved.Violations)
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1), "failed fix rolls back")
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 2))
}
