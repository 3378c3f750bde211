package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/engine"
	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

type moveReq struct {
	StudentID uint64 `json:"student_id"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
}

type cellTypeReq struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	CellType string `json:"cell_type"`
}

type seatGroupReq struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	GroupID uint64 `json:"group_id"` // 0 clears the assignment
}

// engineFail maps engine validation errors onto 4xx responses.
func engineFail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrStudentNotFound),
		errors.Is(err, engine.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrNotAssignable),
		errors.Is(err, engine.ErrSeatEmpty),
		errors.Is(err, engine.ErrDuplicateStudent),
		errors.Is(err, engine.ErrDuplicateTarget),
		errors.Is(err, engine.ErrNotEnoughSeats),
		errors.Is(err, engine.ErrNoGroups),
		errors.Is(err, engine.ErrSeatCountsDiffer),
		errors.Is(err, engine.ErrUnknownMethod):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	default:
		return fail(c, err)
	}
}

// MoveStudent relocates one student, swapping with whoever sits in the
// target seat.  The recorded action lands on the undo stack.
func (h *PlannerHandler) MoveStudent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req moveReq
	if err := c.Bind(&req); err != nil || req.StudentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "student_id, row and col required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}

	act, err := st.PerformMove(req.StudentID, engine.Coord{Row: req.Row, Col: req.Col})
	if err != nil {
		return engineFail(c, err)
	}
	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Push(ctx, classroomID, act); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"action": act, "seats": layoutParts(st)})
}

// MoveStudents applies a batch of moves in request order as one undoable
// unit.  Any invalid entry rejects the whole batch before a single
// student moves.
func (h *PlannerHandler) MoveStudents(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var reqs []moveReq
	if err := c.Bind(&reqs); err != nil || len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "non-empty move array required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}

	moves := make([]engine.MoveRequest, 0, len(reqs))
	for _, r := range reqs {
		moves = append(moves, engine.MoveRequest{
			StudentID: r.StudentID,
			To:        engine.Coord{Row: r.Row, Col: r.Col},
		})
	}
	act, err := st.MoveMany(moves)
	if err != nil {
		return engineFail(c, err) // nothing moved, nothing pushed
	}
	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Push(ctx, classroomID, act); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"action": act, "seats": layoutParts(st)})
}

// ClearSeat sends the occupant of one seat back to the unseated pool.
func (h *PlannerHandler) ClearSeat(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req moveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "row and col required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}

	act, err := st.ClearSeat(engine.Coord{Row: req.Row, Col: req.Col})
	if err != nil {
		return engineFail(c, err)
	}
	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Push(ctx, classroomID, act); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"action": act, "seats": layoutParts(st)})
}

// SetCellType changes what one grid cell is.  Turning a seat into an
// aisle or podium evicts its occupant; the eviction rides in the action
// so undo can restore it.
func (h *PlannerHandler) SetCellType(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req cellTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidCellType(req.CellType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown cell_type"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}

	seat := st.SeatAt(engine.Coord{Row: req.Row, Col: req.Col})
	if seat == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no such cell"})
	}
	after := model.CellType(req.CellType)
	if seat.CellType == after {
		return c.JSON(http.StatusOK, echo.Map{"seats": layoutParts(st)}) // nothing to record
	}

	item := model.CellTypeItem{
		Row: req.Row, Col: req.Col,
		Before: seat.CellType, After: after,
	}
	if after != model.CellSeat {
		item.PrevStudentID = seat.StudentID
		item.PrevGroupID = seat.GroupID
	}
	act := model.Action{Kind: model.ActionCellType, CellType: &item}
	st.ApplyAction(act)

	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Push(ctx, classroomID, act); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"action": act, "seats": layoutParts(st)})
}

// AssignSeatGroup attaches one cell to a group (or detaches with
// group_id 0).
func (h *PlannerHandler) AssignSeatGroup(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req seatGroupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}
	act, err := buildGroupAction(st, []seatGroupReq{req})
	if err != nil {
		return engineFail(c, err)
	}
	st.ApplyAction(act)

	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Push(ctx, classroomID, act); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"action": act, "seats": layoutParts(st)})
}

// AssignSeatGroups regroups several cells as one undoable unit.  Used
// when the teacher paints a group across a region of the grid.
func (h *PlannerHandler) AssignSeatGroups(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var reqs []seatGroupReq
	if err := c.Bind(&reqs); err != nil || len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "non-empty assignment array required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}
	act, err := buildGroupAction(st, reqs)
	if err != nil {
		return engineFail(c, err)
	}
	st.ApplyAction(act)

	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Push(ctx, classroomID, act); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"action": act, "seats": layoutParts(st)})
}

// buildGroupAction validates the requested assignments against the
// current state and records before/after pairs.  Only seat cells can
// belong to a group and the group must exist.
func buildGroupAction(st *engine.State, reqs []seatGroupReq) (model.Action, error) {
	items := make([]model.GroupItem, 0, len(reqs))
	for _, r := range reqs {
		seat := st.SeatAt(engine.Coord{Row: r.Row, Col: r.Col})
		if seat == nil {
			return model.Action{}, engine.ErrSeatNotFound
		}
		if seat.CellType != model.CellSeat {
			return model.Action{}, engine.ErrNotAssignable
		}
		if r.GroupID != 0 {
			if _, ok := st.Groups[r.GroupID]; !ok {
				return model.Action{}, engine.ErrNoGroups
			}
		}
		items = append(items, model.GroupItem{
			Row: r.Row, Col: r.Col,
			BeforeGroupID: seat.GroupID, AfterGroupID: r.GroupID,
		})
	}
	if len(items) == 1 {
		return model.Action{Kind: model.ActionGroup, Group: &items[0]}, nil
	}
	return model.Action{Kind: model.ActionGroupBatch, GroupBatch: items}, nil
}
