package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

func TestValidMethod(t *testing.T) {
	for _, m := range Methods {
		assert.True(t, ValidMethod(string(m)))
	}
	assert.False(t, ValidMethod("alphabetical"))
}

func TestArrangeSeatsEveryoneMustTogether(t *testing.T) {
	// 2x2 grid, 3 students, A and B must sit at distance 1.
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustTogether, StudentID: 1, TargetID: 2, Distance: 1, Enabled: true},
	}
	st := newGridState(2, 2, roster(3), nil, cons)

	require.NoError(t, st.Arrange(MethodScoreDesc, nil))

	requireUnique(t, st)
	assert.Equal(t, 0, st.UnseatedCount())
	a, b := seatCoord(t, st, 1), seatCoord(t, st, 2)
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, Manhattan(a, b), 1)
	assert.Empty(t, st.Evaluate())
}

func TestArrangeMentorHonorsFixedSeat(t *testing.T) {
	// 1x4 grid split into two 2-seat groups; student 1 is pinned to
	// (1,2).  Grouped arranging must not override the pin.
	seats := gridSeats(1, 4)
	seats[0].GroupID, seats[1].GroupID = 10, 10
	seats[2].GroupID, seats[3].GroupID = 20, 20
	groups := []model.SeatGroup{
		{ID: 10, Name: "left", Order: 1},
		{ID: 20, Name: "right", Order: 2},
	}
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustSeat, StudentID: 1, Row: 1, Col: 2, Enabled: true},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 4}, seats, roster(4), groups, cons)

	require.NoError(t, st.Arrange(MethodGroupMentor, nil))

	requireUnique(t, st)
	assert.Equal(t, 0, st.UnseatedCount())
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 1))
}

func TestArrangeMustSeatIdempotent(t *testing.T) {
	cons := []model.SeatConstraint{
		{ID: 1, Type: model.MustSeat, StudentID: 3, Row: 2, Col: 1, Enabled: true},
	}
	st := newGridState(2, 3, roster(5), nil, cons)

	for i := 0; i < 3; i++ {
		require.NoError(t, st.Arrange(MethodScoreDesc, nil))
		assert.Equal(t, Coord{2, 1}, seatCoord(t, st, 3), "run %d", i)
	}
}

func TestArrangeRandomDeterministicPerSeed(t *testing.T) {
	layout := func(seed int64) map[uint64]Coord {
		st := newGridState(2, 3, roster(6), nil, nil)
		require.NoError(t, st.Arrange(MethodRandom, rand.New(rand.NewSource(seed))))
		out := make(map[uint64]Coord)
		for id := range st.Students {
			out[id] = seatCoord(t, st, id)
		}
		return out
	}
	assert.Equal(t, layout(7), layout(7), "same seed, same layout")
}

func TestArrangeGoodBackFillsFromBack(t *testing.T) {
	st := newGridState(2, 2, roster(4), nil, nil)
	require.NoError(t, st.Arrange(MethodGoodBack, nil))
	// Student 1 holds the best score and should land in the last cell.
	assert.Equal(t, Coord{2, 2}, seatCoord(t, st, 1))
}

func TestArrangeScoreSpreadAlternates(t *testing.T) {
	st := newGridState(1, 4, roster(4), nil, nil)
	require.NoError(t, st.Arrange(MethodScoreSpread, nil))
	// Order is best, worst, second-best, second-worst.
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1))
	assert.Equal(t, Coord{1, 2}, seatCoord(t, st, 4))
	assert.Equal(t, Coord{1, 3}, seatCoord(t, st, 2))
	assert.Equal(t, Coord{1, 4}, seatCoord(t, st, 3))
}

func TestArrangeRejectsWithoutMutating(t *testing.T) {
	seats := gridSeats(1, 2)
	seats[0].StudentID = 1
	st := NewState(model.Classroom{Rows: 1, Cols: 2}, seats, roster(3), nil, nil)

	err := st.Arrange(MethodScoreDesc, nil)
	assert.ErrorIs(t, err, ErrNotEnoughSeats)
	assert.Equal(t, Coord{1, 1}, seatCoord(t, st, 1), "layout untouched on rejection")

	assert.ErrorIs(t, st.Arrange(MethodGroupBalanced, nil), ErrNoGroups)

	roomy := newGridState(2, 2, roster(2), nil, nil)
	assert.ErrorIs(t, roomy.Arrange(Method("bogus"), nil), ErrUnknownMethod)
}

func TestArrangeSkipsNonSeatCells(t *testing.T) {
	seats := gridSeats(2, 2)
	seats[0].CellType = model.CellPodium
	st := NewState(model.Classroom{Rows: 2, Cols: 2}, seats, roster(3), nil, nil)

	require.NoError(t, st.Arrange(MethodScoreAsc, nil))
	assert.Equal(t, uint64(0), st.SeatAt(Coord{1, 1}).StudentID)
	assert.Equal(t, 0, st.UnseatedCount())
}

func TestBucketBalanced(t *testing.T) {
	groups := []model.SeatGroup{{ID: 10, Order: 1}, {ID: 20, Order: 2}}
	students := []model.Student{
		{ID: 1, Score: 100},
		{ID: 2, Score: 60},
		{ID: 3, Score: 30},
	}
	sorted := []*model.Student{&students[0], &students[1], &students[2]}

	plan, ordered := bucketBalanced(sorted, []*model.SeatGroup{&groups[0], &groups[1]})

	assert.Equal(t, uint64(10), plan[1], "best score opens the first bucket")
	assert.Equal(t, uint64(20), plan[2], "next goes to the empty bucket")
	assert.Equal(t, uint64(20), plan[3], "lowest joins the weaker bucket")
	assert.Len(t, ordered, 3)
}

func TestArrangeGroupMentorPairsExtremes(t *testing.T) {
	seats := gridSeats(1, 4)
	seats[0].GroupID, seats[1].GroupID = 10, 10
	seats[2].GroupID, seats[3].GroupID = 20, 20
	groups := []model.SeatGroup{{ID: 10, Order: 1}, {ID: 20, Order: 2}}
	students := []model.Student{
		{ID: 1, Name: "A", Score: 90},
		{ID: 2, Name: "B", Score: 80},
		{ID: 3, Name: "C", Score: 20},
		{ID: 4, Name: "D", Score: 10},
	}
	st := NewState(model.Classroom{Rows: 1, Cols: 4}, seats, students, groups, nil)

	require.NoError(t, st.Arrange(MethodGroupMentor, nil))
	requireUnique(t, st)

	groupOf := func(id uint64) uint64 { return seatCoordSeat(t, st, id).GroupID }
	assert.Equal(t, groupOf(1), groupOf(4), "best and worst share a group")
	assert.Equal(t, groupOf(2), groupOf(3), "middle pair shares the other group")
	assert.NotEqual(t, groupOf(1), groupOf(2))
}

func seatCoordSeat(t *testing.T, st *State, studentID uint64) *model.Seat {
	t.Helper()
	seat, ok := st.SeatOf(studentID)
	require.True(t, ok)
	return seat
}
