package model

// ActionKind tags the variants of the Action union below.
type ActionKind string

const (
	ActionMove       ActionKind = "move"        // single student relocation
	ActionMoveBatch  ActionKind = "move_batch"  // ordered list of relocations
	ActionCellType   ActionKind = "cell_type"   // one cell's type changed
	ActionGroup      ActionKind = "group"       // one seat's group changed
	ActionGroupBatch ActionKind = "group_batch" // several seats regrouped
	ActionSeatLayout ActionKind = "seat_layout" // bulk occupant/group rewrite
)

// MoveItem records one student relocation with enough state to build its
// own inverse.  From coordinates are nil when the student was unseated
// before the move; To coordinates are nil when the move cleared the
// seat.  DisplacedID names the student pushed into the origin seat by a
// swap, 0 when the target seat was free.
type MoveItem struct {
	StudentID   uint64 `json:"student_id"`
	FromRow     *int   `json:"from_row,omitempty"`
	FromCol     *int   `json:"from_col,omitempty"`
	ToRow       *int   `json:"to_row,omitempty"`
	ToCol       *int   `json:"to_col,omitempty"`
	DisplacedID uint64 `json:"displaced_id,omitempty"`
}

// Invert returns the move that undoes m: from and to swap places, the
// displaced student travels back with it.
func (m MoveItem) Invert() MoveItem {
	return MoveItem{
		StudentID:   m.StudentID,
		FromRow:     m.ToRow,
		FromCol:     m.ToCol,
		ToRow:       m.FromRow,
		ToCol:       m.FromCol,
		DisplacedID: m.DisplacedID,
	}
}

// CellTypeItem records a cell type change.  PrevStudentID/PrevGroupID
// hold whatever the cell carried before a change away from a seat cell,
// so that undo can restore the occupant and group.
type CellTypeItem struct {
	Row           int      `json:"row"`
	Col           int      `json:"col"`
	Before        CellType `json:"before"`
	After         CellType `json:"after"`
	PrevStudentID uint64   `json:"prev_student_id,omitempty"`
	PrevGroupID   uint64   `json:"prev_group_id,omitempty"`
}

// GroupItem records one seat changing group membership.
type GroupItem struct {
	Row           int    `json:"row"`
	Col           int    `json:"col"`
	BeforeGroupID uint64 `json:"before_group_id,omitempty"`
	AfterGroupID  uint64 `json:"after_group_id,omitempty"`
}

// LayoutItem records the full before/after occupant and group of one
// seat, used when a snapshot or import rewrites the whole layout.
type LayoutItem struct {
	Row             int    `json:"row"`
	Col             int    `json:"col"`
	BeforeStudentID uint64 `json:"before_student_id,omitempty"`
	AfterStudentID  uint64 `json:"after_student_id,omitempty"`
	BeforeGroupID   uint64 `json:"before_group_id,omitempty"`
	AfterGroupID    uint64 `json:"after_group_id,omitempty"`
}

// Action is a closed tagged union over the undoable mutations.  Exactly
// one payload field is set, selected by Kind.  The struct form (rather
// than an interface) keeps the type round-trippable through JSON for the
// Redis-backed history store.
type Action struct {
	Kind       ActionKind     `json:"kind"`
	Move       *MoveItem      `json:"move,omitempty"`
	Moves      []MoveItem     `json:"moves,omitempty"`
	CellType   *CellTypeItem  `json:"cell_type,omitempty"`
	Group      *GroupItem     `json:"group,omitempty"`
	GroupBatch []GroupItem    `json:"group_batch,omitempty"`
	SeatLayout []LayoutItem   `json:"seat_layout,omitempty"`
}

// Invert derives the action that exactly undoes a.  Moves invert per
// item (batches additionally reverse order); the before/after variants
// invert by swapping their before and after fields.
func (a Action) Invert() Action {
	switch a.Kind {
	case ActionMove:
		if a.Move == nil {
			return a
		}
		inv := a.Move.Invert()
		return Action{Kind: ActionMove, Move: &inv}
	case ActionMoveBatch:
		items := make([]MoveItem, 0, len(a.Moves))
		for i := len(a.Moves) - 1; i >= 0; i-- {
			items = append(items, a.Moves[i].Invert())
		}
		return Action{Kind: ActionMoveBatch, Moves: items}
	case ActionCellType:
		if a.CellType == nil {
			return a
		}
		ct := *a.CellType
		ct.Before, ct.After = ct.After, ct.Before
		return Action{Kind: ActionCellType, CellType: &ct}
	case ActionGroup:
		if a.Group == nil {
			return a
		}
		g := *a.Group
		g.BeforeGroupID, g.AfterGroupID = g.AfterGroupID, g.BeforeGroupID
		return Action{Kind: ActionGroup, Group: &g}
	case ActionGroupBatch:
		items := make([]GroupItem, len(a.GroupBatch))
		for i, g := range a.GroupBatch {
			g.BeforeGroupID, g.AfterGroupID = g.AfterGroupID, g.BeforeGroupID
			items[i] = g
		}
		return Action{Kind: ActionGroupBatch, GroupBatch: items}
	case ActionSeatLayout:
		items := make([]LayoutItem, len(a.SeatLayout))
		for i, it := range a.SeatLayout {
			it.BeforeStudentID, it.AfterStudentID = it.AfterStudentID, it.BeforeStudentID
			it.BeforeGroupID, it.AfterGroupID = it.AfterGroupID, it.BeforeGroupID
			items[i] = it
		}
		return Action{Kind: ActionSeatLayout, SeatLayout: items}
	}
	return a
}
