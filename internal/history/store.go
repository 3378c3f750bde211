// Package history keeps the per-classroom undo/redo stacks.  The
// stacks live in Redis under one JSON value per classroom so that undo
// survives server restarts; the engine itself never touches them.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

const (
	// historyLimit caps each stack; the oldest entries fall off first.
	historyLimit = 100
	// historyTTL expires idle classroom history.
	historyTTL = 24 * time.Hour
)

// stacks is the stored shape: every committed action is pushed onto
// Undo, and Redo holds what undo has peeled off.
type stacks struct {
	Undo []model.Action `json:"undo"`
	Redo []model.Action `json:"redo"`
}

// Store reads and writes the undo/redo stacks.  With a nil Redis client
// it degrades to an in-process map, which keeps tests and single-node
// development working without a running Redis.
type Store struct {
	rdb *redis.Client

	mu  sync.Mutex
	mem map[uint64]*stacks
}

// NewStore creates a history store backed by rdb (nil for in-memory).
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, mem: make(map[uint64]*stacks)}
}

func key(classroomID uint64) string {
	return fmt.Sprintf("history:%d", classroomID)
}

// Push records a committed action and clears the redo stack: a new
// action invalidates any not-yet-redone future.
func (s *Store) Push(ctx context.Context, classroomID uint64, act model.Action) error {
	st, err := s.load(ctx, classroomID)
	if err != nil {
		return err
	}
	st.Undo = append(st.Undo, act)
	if len(st.Undo) > historyLimit {
		st.Undo = st.Undo[len(st.Undo)-historyLimit:]
	}
	st.Redo = nil
	return s.save(ctx, classroomID, st)
}

// Undo pops the most recent action and moves it to the redo stack.  The
// caller applies the returned action's inverse to the live state.
func (s *Store) Undo(ctx context.Context, classroomID uint64) (model.Action, error) {
	st, err := s.load(ctx, classroomID)
	if err != nil {
		return model.Action{}, err
	}
	if len(st.Undo) == 0 {
		return model.Action{}, ErrNothingToUndo
	}
	act := st.Undo[len(st.Undo)-1]
	st.Undo = st.Undo[:len(st.Undo)-1]
	st.Redo = append(st.Redo, act)
	if err := s.save(ctx, classroomID, st); err != nil {
		return model.Action{}, err
	}
	return act, nil
}

// Redo pops the most recently undone action and moves it back to the
// undo stack.  The caller re-applies the returned action forward.
func (s *Store) Redo(ctx context.Context, classroomID uint64) (model.Action, error) {
	st, err := s.load(ctx, classroomID)
	if err != nil {
		return model.Action{}, err
	}
	if len(st.Redo) == 0 {
		return model.Action{}, ErrNothingToRedo
	}
	act := st.Redo[len(st.Redo)-1]
	st.Redo = st.Redo[:len(st.Redo)-1]
	st.Undo = append(st.Undo, act)
	if err := s.save(ctx, classroomID, st); err != nil {
		return model.Action{}, err
	}
	return act, nil
}

// Reset drops both stacks.  Called after a full rearrangement, where
// stepping back through pre-shuffle actions makes no sense.
func (s *Store) Reset(ctx context.Context, classroomID uint64) error {
	if s.rdb == nil {
		s.mu.Lock()
		delete(s.mem, classroomID)
		s.mu.Unlock()
		return nil
	}
	return s.rdb.Del(ctx, key(classroomID)).Err()
}

// Depths reports the current stack sizes, used by the UI to enable or
// disable its undo/redo buttons.
func (s *Store) Depths(ctx context.Context, classroomID uint64) (undo, redo int, err error) {
	st, err := s.load(ctx, classroomID)
	if err != nil {
		return 0, 0, err
	}
	return len(st.Undo), len(st.Redo), nil
}

func (s *Store) load(ctx context.Context, classroomID uint64) (*stacks, error) {
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if st, ok := s.mem[classroomID]; ok {
			cp := *st
			return &cp, nil
		}
		return &stacks{}, nil
	}
	raw, err := s.rdb.Get(ctx, key(classroomID)).Result()
	if errors.Is(err, redis.Nil) {
		return &stacks{}, nil
	}
	if err != nil {
		return nil, err
	}
	var st stacks
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		// A corrupt value should not wedge the classroom forever.
		return &stacks{}, nil
	}
	return &st, nil
}

func (s *Store) save(ctx context.Context, classroomID uint64, st *stacks) error {
	if s.rdb == nil {
		s.mu.Lock()
		s.mem[classroomID] = st
		s.mu.Unlock()
		return nil
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(classroomID), raw, historyTTL).Err()
}
