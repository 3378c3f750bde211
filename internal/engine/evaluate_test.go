package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

func TestEvaluateReportsEachBreak(t *testing.T) {
	seats := gridSeats(2, 2)
	seats[0].StudentID = 1 // (1,1)
	seats[3].StudentID = 2 // (2,2)
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustSeat, StudentID: 1, Row: 2, Col: 1, Enabled: true},
		{ID: 2, Type: model.ForbidCol, StudentID: 2, Col: 2, Enabled: true},
		{ID: 3, Type: model.MustTogether, StudentID: 1, TargetID: 2, Distance: 1, Enabled: true},
		{ID: 4, Type: model.MustRow, StudentID: 1, Row: 2, Enabled: false}, // disabled
		{ID: 5, Type: model.MustTogether, StudentID: 1, TargetID: 3, Distance: 1, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 2, Cols: 2}, seats, roster(3), nil, cons)

	viols := st.Evaluate()
	require.Len(t, viols, 4)

	byID := make(map[uint64]Violation, len(viols))
	for _, v := range viols {
		byID[v.ConstraintID] = v
	}
	assert.Contains(t, byID[1].Message, "required seat")
	assert.Contains(t, byID[2].Message, "forbidden column")
	assert.Contains(t, byID[3].Message, "farther apart")
	assert.Contains(t, byID[5].Message, "not both seated", "unseated partner counts as a break")
	_, disabled := byID[4]
	assert.False(t, disabled)
}

func TestEvaluateCleanLayout(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[0].StudentID = 1
	seats[1].StudentID = 2
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustSeat, StudentID: 1, Row: 1, Col: 1, Enabled: true},
		{ID: 2, Type: model.MustTogether, StudentID: 1, TargetID: 2, Distance: 1, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(2), nil, cons)

	assert.Empty(t, st.Evaluate())
	assert.Equal(t, 0, st.UnseatedCount())
}

func TestSuggestBalanceSwap(t *testing.T) {
	seats := gridSeats(1, 4)
	seats[0].GroupID, seats[1].GroupID = 10, 10
	seats[2].GroupID, seats[3].GroupID = 20, 20
	seats[0].StudentID, seats[1].StudentID = 1, 2
	seats[2].StudentID, seats[3].StudentID = 3, 4
	groups := []model.SeatGroup{{ID: 10, Order: 1}, {ID: 20, Order: 2}}
	students := []model.Student{
		{ID: 1, Name: "A", Score: 95},
		{ID: 2, Name: "B", Score: 85},
		{ID: 3, Name: "C", Score: 55},
		{ID: 4, Name: "D", Score: 45},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 4}, seats, students, groups, nil)

	swap := st.SuggestBalanceSwap()
	require.NotNil(t, swap, "40-point gap should trigger a suggestion")
	assert.Equal(t, uint64(1), swap.HighStudentID)
	assert.Equal(t, uint64(3), swap.LowStudentID, "95/55 swap levels both averages exactly")
	assert.InDelta(t, 40.0, swap.GapBefore, 0.001)
	assert.InDelta(t, 0.0, swap.GapAfter, 0.001)
}

func TestSuggestBalanceSwapNilWhenBalanced(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[0].GroupID, seats[1].GroupID = 10, 20
	seats[0].StudentID, seats[1].StudentID = 1, 2
	groups := []model.SeatGroup{{ID: 10}, {ID: 20}}
	students := []model.Student{
		{ID: 1, Score: 80},
		{ID: 2, Score: 78},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, students, groups, nil)

	assert.Nil(t, st.SuggestBalanceSwap())
}
