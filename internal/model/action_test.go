package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveItemInvertIsInvolution(t *testing.T) {
	fr, fc, tr, tc := 1, 1, 2, 3
	item := MoveItem{StudentID: 7, FromRow: &fr, FromCol: &fc, ToRow: &tr, ToCol: &tc, DisplacedID: 9}

	inv := item.Invert()
	assert.Equal(t, &tr, inv.FromRow)
	assert.Equal(t, &fr, inv.ToRow)
	assert.Equal(t, item, inv.Invert())
}

func TestMoveBatchInvertReversesOrder(t *testing.T) {
	r1, c1, r2, c2 := 1, 1, 1, 2
	act := Action{Kind: ActionMoveBatch, Moves: []MoveItem{
		{StudentID: 1, ToRow: &r1, ToCol: &c1},
		{StudentID: 2, ToRow: &r2, ToCol: &c2},
	}}

	inv := act.Invert()
	require.Len(t, inv.Moves, 2)
	assert.Equal(t, uint64(2), inv.Moves[0].StudentID, "last item undone first")
	assert.Equal(t, &r2, inv.Moves[0].FromRow)
	assert.Nil(t, inv.Moves[0].ToRow, "undoing a seat-from-nowhere move clears the seat")
}

func TestBeforeAfterVariantsSwapOnInvert(t *testing.T) {
	act := Action{Kind: ActionCellType, CellType: &CellTypeItem{
		Row: 2, Col: 2, Before: CellSeat, After: CellAisle, PrevStudentID: 5,
	}}
	inv := act.Invert()
	assert.Equal(t, CellAisle, inv.CellType.Before)
	assert.Equal(t, CellSeat, inv.CellType.After)
	assert.Equal(t, uint64(5), inv.CellType.PrevStudentID, "restore payload rides along")

	grp := Action{Kind: ActionGroup, Group: &GroupItem{Row: 1, Col: 1, BeforeGroupID: 3, AfterGroupID: 4}}
	ginv := grp.Invert()
	assert.Equal(t, uint64(4), ginv.Group.BeforeGroupID)
	assert.Equal(t, uint64(3), ginv.Group.AfterGroupID)
}

func TestActionJSONRoundTrip(t *testing.T) {
	r, c := 3, 4
	act := Action{Kind: ActionMove, Move: &MoveItem{StudentID: 11, ToRow: &r, ToCol: &c}}

	raw, err := json.Marshal(act)
	require.NoError(t, err)

	var back Action
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, act.Kind, back.Kind)
	require.NotNil(t, back.Move)
	assert.Equal(t, act.Move.StudentID, back.Move.StudentID)
	require.NotNil(t, back.Move.ToRow)
	assert.Equal(t, r, *back.Move.ToRow)
	assert.Nil(t, back.Move.FromRow)
}
