package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

func moveAction(studentID uint64, row, col int) model.Action {
	r, c := row, col
	return model.Action{Kind: model.ActionMove, Move: &model.MoveItem{
		StudentID: studentID, ToRow: &r, ToCol: &c,
	}}
}

func TestUndoRedoOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	require.NoError(t, s.Push(ctx, 1, moveAction(1, 1, 1)))
	require.NoError(t, s.Push(ctx, 1, moveAction(2, 1, 2)))

	act, err := s.Undo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), act.Move.StudentID, "last action undone first")

	act, err = s.Redo(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), act.Move.StudentID)

	undo, redo, err := s.Depths(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, undo)
	assert.Equal(t, 0, redo)
}

func TestEmptyStacks(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	_, err := s.Undo(ctx, 1)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = s.Redo(ctx, 1)
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestPushClearsRedo(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	require.NoError(t, s.Push(ctx, 1, moveAction(1, 1, 1)))
	_, err := s.Undo(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, s.Push(ctx, 1, moveAction(2, 1, 2)))
	_, err = s.Redo(ctx, 1)
	assert.ErrorIs(t, err, ErrNothingToRedo, "new action invalidates the redo stack")
}

func TestResetDropsBothStacks(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	require.NoError(t, s.Push(ctx, 1, moveAction(1, 1, 1)))
	_, err := s.Undo(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, s.Reset(ctx, 1))
	_, err = s.Undo(ctx, 1)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = s.Redo(ctx, 1)
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestClassroomsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	require.NoError(t, s.Push(ctx, 1, moveAction(1, 1, 1)))
	_, err := s.Undo(ctx, 2)
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoCapIsEnforced(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	for i := 0; i < historyLimit+10; i++ {
		require.NoError(t, s.Push(ctx, 1, moveAction(uint64(i+1), 1, 1)))
	}
	undo, _, err := s.Depths(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, historyLimit, undo)
}
