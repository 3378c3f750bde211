package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

type classroomReq struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

type classroomPart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
}

func toClassroomPart(c model.Classroom) classroomPart {
	return classroomPart{ID: c.ID, Name: c.Name, Rows: c.Rows, Cols: c.Cols}
}

func validGrid(rows, cols int) bool {
	return rows >= 1 && rows <= model.GridLimit && cols >= 1 && cols <= model.GridLimit
}

// CreateClassroom inserts the room and its full grid of seat cells in
// one transaction.  Every cell starts as a plain seat; aisles and the
// podium are carved out afterwards via the cell type endpoint.
func (h *PlannerHandler) CreateClassroom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req classroomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || !validGrid(req.Rows, req.Cols) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and grid dimensions (1..30) required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	room := model.Classroom{OwnerID: uid, Name: req.Name, Rows: req.Rows, Cols: req.Cols}
	if err := h.Classrooms.Create(ctx, &room); err != nil {
		return fail(c, err)
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	defer tx.Rollback()
	seats := make([]model.Seat, 0, req.Rows*req.Cols)
	for r := 1; r <= req.Rows; r++ {
		for col := 1; col <= req.Cols; col++ {
			seats = append(seats, model.Seat{
				ClassroomID: room.ID, Row: r, Col: col, CellType: model.CellSeat,
			})
		}
	}
	if err := h.Seats.CreateBulkTx(ctx, tx, seats); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, toClassroomPart(room))
}

// ListClassrooms returns the caller's rooms, newest first.
func (h *PlannerHandler) ListClassrooms(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Classrooms.ListByOwner(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	out := make([]classroomPart, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toClassroomPart(r))
	}
	return c.JSON(http.StatusOK, out)
}

// GetClassroom returns the room with its full layout, roster, groups,
// constraints and history depths in one response.
func (h *PlannerHandler) GetClassroom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, room, err := h.loadState(ctx, id, uid)
	if err != nil {
		return fail(c, err)
	}

	students := make([]studentPart, 0, len(st.Students))
	for _, s := range st.Roster() {
		students = append(students, toStudentPart(*s))
	}
	groups := make([]groupPart, 0, len(st.Groups))
	for _, g := range st.GroupList() {
		groups = append(groups, toGroupPart(*g))
	}
	cons := make([]constraintPart, 0, len(st.Constraints))
	for _, cn := range st.Constraints {
		cons = append(cons, toConstraintPart(cn))
	}
	undo, redo, _ := h.History.Depths(ctx, id) // depth errors degrade to 0/0

	return c.JSON(http.StatusOK, echo.Map{
		"classroom":   toClassroomPart(*room),
		"seats":       layoutParts(st),
		"students":    students,
		"groups":      groups,
		"constraints": cons,
		"violations":  st.Evaluate(),
		"unseated":    st.UnseatedIDs(),
		"history":     echo.Map{"undo_depth": undo, "redo_depth": redo},
	})
}

// UpdateClassroom renames and/or resizes the grid.  Shrinking drops the
// cells outside the new bounds together with whoever sat there; growing
// creates fresh seat cells.  Both sides commit in one transaction with
// the dimension update.
func (h *PlannerHandler) UpdateClassroom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req classroomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || !validGrid(req.Rows, req.Cols) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and grid dimensions (1..30) required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	room, err := h.Classrooms.GetByIDAndOwner(ctx, id, uid)
	if err != nil {
		return fail(c, err)
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	defer tx.Rollback()
	if err := h.Classrooms.UpdateGridTx(ctx, tx, id, req.Name, req.Rows, req.Cols); err != nil {
		return fail(c, err)
	}
	if err := h.Seats.DeleteOutsideTx(ctx, tx, id, req.Rows, req.Cols); err != nil {
		return fail(c, err)
	}
	var fresh []model.Seat
	for r := 1; r <= req.Rows; r++ {
		for col := 1; col <= req.Cols; col++ {
			if r <= room.Rows && col <= room.Cols {
				continue // cell already exists
			}
			fresh = append(fresh, model.Seat{
				ClassroomID: id, Row: r, Col: col, CellType: model.CellSeat,
			})
		}
	}
	if err := h.Seats.CreateBulkTx(ctx, tx, fresh); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}

	room.Name, room.Rows, room.Cols = req.Name, req.Rows, req.Cols
	return c.JSON(http.StatusOK, toClassroomPart(*room))
}

// DeleteClassroom removes the room; dependent rows cascade.
func (h *PlannerHandler) DeleteClassroom(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Classrooms.Delete(ctx, id, uid); err != nil {
		return fail(c, err)
	}
	_ = h.History.Reset(ctx, id) // drop the undo stacks of a room that no longer exists
	return c.NoContent(http.StatusNoContent)
}
