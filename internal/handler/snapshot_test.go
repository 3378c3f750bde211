package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/engine"
	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

func demoState(t *testing.T) (*engine.State, *model.Classroom) {
	t.Helper()
	room := &model.Classroom{ID: 1, Name: "3-B", Rows: 1, Cols: 3}
	seats := []model.Seat{
		{Row: 1, Col: 1, CellType: model.CellSeat, StudentID: 10, GroupID: 100},
		{Row: 1, Col: 2, CellType: model.CellAisle},
		{Row: 1, Col: 3, CellType: model.CellSeat, StudentID: 20},
	}
	students := []model.Student{
		{ID: 10, Name: "Ada", StudentNo: "S-01", Score: 92},
		{ID: 20, Name: "Ben", StudentNo: "S-02", Score: 71},
	}
	groups := []model.SeatGroup{{ID: 100, Name: "window", Order: 1}}
	return engine.NewState(*room, seats, students, groups, nil), room
}

func TestBuildPayloadCarriesTripleStudentReference(t *testing.T) {
	st, room := demoState(t)

	p := buildPayload(st, room, false)

	assert.Equal(t, snapshotApp, p.Meta.App)
	assert.Equal(t, 1, p.Classroom.Rows)
	assert.Equal(t, 3, p.Classroom.Cols)
	require.Len(t, p.Seats, 3)

	first := p.Seats[0]
	assert.Equal(t, uint64(10), first.StudentPK)
	assert.Equal(t, "S-01", first.StudentNo)
	assert.Equal(t, "Ada", first.StudentName)
	assert.Equal(t, "window", first.GroupName)

	assert.Equal(t, model.CellAisle, p.Seats[1].CellType)
	assert.Empty(t, p.Students, "layout-only export carries no roster")
}

func TestBuildPayloadFullIncludesRosterAndConstraints(t *testing.T) {
	st, room := demoState(t)
	st.Constraints = []model.SeatConstraint{
		{ID: 7, Type: model.MustTogether, StudentID: 10, TargetID: 20, Distance: 1, Enabled: true},
	}

	p := buildPayload(st, room, true)

	require.Len(t, p.Students, 2)
	require.Len(t, p.Constraints, 1)
	cn := p.Constraints[0]
	assert.Equal(t, "Ada", cn.StudentName)
	assert.Equal(t, "Ben", cn.TargetName)
	assert.Equal(t, "S-02", cn.TargetNo)
}

func TestRestoreLayoutMatchesByStudentNoWhenPKChanged(t *testing.T) {
	st, room := demoState(t)
	p := buildPayload(st, room, false)

	// Simulate a roster re-import: same people, new primary keys.
	rebuilt := engine.NewState(*room,
		[]model.Seat{
			{Row: 1, Col: 1, CellType: model.CellSeat},
			{Row: 1, Col: 2, CellType: model.CellSeat},
			{Row: 1, Col: 3, CellType: model.CellSeat},
		},
		[]model.Student{
			{ID: 31, Name: "Ada", StudentNo: "S-01"},
			{ID: 32, Name: "Ben", StudentNo: "S-02"},
		},
		[]model.SeatGroup{{ID: 200, Name: "window"}}, nil)

	restoreLayout(rebuilt, p)

	ada := rebuilt.SeatAt(engine.Coord{Row: 1, Col: 1})
	require.NotNil(t, ada)
	assert.Equal(t, uint64(31), ada.StudentID)
	assert.Equal(t, uint64(200), ada.GroupID, "group matched by name")

	aisle := rebuilt.SeatAt(engine.Coord{Row: 1, Col: 2})
	assert.Equal(t, model.CellAisle, aisle.CellType, "cell type restored from snapshot")
	assert.Zero(t, aisle.StudentID)

	ben := rebuilt.SeatAt(engine.Coord{Row: 1, Col: 3})
	assert.Equal(t, uint64(32), ben.StudentID)
}

func TestRestoreLayoutSkipsUnknownStudents(t *testing.T) {
	st, room := demoState(t)
	p := buildPayload(st, room, false)

	empty := engine.NewState(*room,
		[]model.Seat{
			{Row: 1, Col: 1, CellType: model.CellSeat},
			{Row: 1, Col: 3, CellType: model.CellSeat},
		}, nil, nil, nil)

	restoreLayout(empty, p)

	assert.Zero(t, empty.SeatAt(engine.Coord{Row: 1, Col: 1}).StudentID)
	assert.Zero(t, empty.SeatAt(engine.Coord{Row: 1, Col: 3}).StudentID)
}

func TestBuildGroupActionValidates(t *testing.T) {
	st, _ := demoState(t)

	_, err := buildGroupAction(st, []seatGroupReq{{Row: 9, Col: 9, GroupID: 100}})
	assert.ErrorIs(t, err, engine.ErrSeatNotFound)

	_, err = buildGroupAction(st, []seatGroupReq{{Row: 1, Col: 2, GroupID: 100}})
	assert.ErrorIs(t, err, engine.ErrNotAssignable, "aisles cannot join groups")

	_, err = buildGroupAction(st, []seatGroupReq{{Row: 1, Col: 3, GroupID: 999}})
	assert.ErrorIs(t, err, engine.ErrNoGroups)

	act, err := buildGroupAction(st, []seatGroupReq{{Row: 1, Col: 3, GroupID: 100}})
	require.NoError(t, err)
	assert.Equal(t, model.ActionGroup, act.Kind)
	assert.Equal(t, uint64(100), act.Group.AfterGroupID)
	assert.Zero(t, act.Group.BeforeGroupID)

	act, err = buildGroupAction(st, []seatGroupReq{
		{Row: 1, Col: 1, GroupID: 0},
		{Row: 1, Col: 3, GroupID: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ActionGroupBatch, act.Kind)
	require.Len(t, act.GroupBatch, 2)
	assert.Equal(t, uint64(100), act.GroupBatch[0].BeforeGroupID, "detach records prior membership")
}
