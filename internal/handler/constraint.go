package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/engine"
	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

type constraintReq struct {
	Type      string `json:"type"`
	StudentID uint64 `json:"student_id"`
	TargetID  uint64 `json:"target_id"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Distance  int    `json:"distance"`
	Note      string `json:"note"`
}

type enabledReq struct {
	Enabled bool `json:"enabled"`
}

type constraintPart struct {
	ID        uint64 `json:"id"`
	Type      string `json:"type"`
	StudentID uint64 `json:"student_id"`
	TargetID  uint64 `json:"target_id,omitempty"`
	Row       int    `json:"row,omitempty"`
	Col       int    `json:"col,omitempty"`
	Distance  int    `json:"distance,omitempty"`
	Enabled   bool   `json:"enabled"`
	Note      string `json:"note,omitempty"`
}

func toConstraintPart(cn model.SeatConstraint) constraintPart {
	return constraintPart{
		ID: cn.ID, Type: string(cn.Type), StudentID: cn.StudentID, TargetID: cn.TargetID,
		Row: cn.Row, Col: cn.Col, Distance: cn.Distance, Enabled: cn.Enabled, Note: cn.Note,
	}
}

// CreateConstraint records a placement rule.  Field requirements depend
// on the rule type: the seat rules need a full coordinate, the row/col
// rules one axis, the pair rules a distinct partner and a distance.
func (h *PlannerHandler) CreateConstraint(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req constraintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidConstraintType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown constraint type"})
	}
	if req.StudentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "student_id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}
	if _, ok := st.Students[req.StudentID]; !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
	}

	cn := model.SeatConstraint{
		ClassroomID: classroomID,
		Type:        model.ConstraintType(req.Type),
		StudentID:   req.StudentID,
		Enabled:     true,
		Note:        req.Note,
	}
	switch cn.Type {
	case model.MustSeat, model.ForbidSeat:
		if st.SeatAt(engine.Coord{Row: req.Row, Col: req.Col}) == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "row/col outside grid"})
		}
		cn.Row, cn.Col = req.Row, req.Col
	case model.MustRow, model.ForbidRow:
		if req.Row < 1 || req.Row > st.Rows {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "row outside grid"})
		}
		cn.Row = req.Row
	case model.MustCol, model.ForbidCol:
		if req.Col < 1 || req.Col > st.Cols {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "col outside grid"})
		}
		cn.Col = req.Col
	case model.MustTogether, model.ForbidTogether:
		if req.TargetID == 0 || req.TargetID == req.StudentID {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "distinct target_id required"})
		}
		if _, ok := st.Students[req.TargetID]; !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "target student not found"})
		}
		cn.TargetID = req.TargetID
		cn.Distance = req.Distance
		if cn.Distance < 1 {
			cn.Distance = 1
		}
	}

	if err := h.Constraints.Create(ctx, &cn); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toConstraintPart(cn))
}

// ListConstraints returns every rule, enabled or not.
func (h *PlannerHandler) ListConstraints(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}
	cons, err := h.Constraints.ListByClassroom(ctx, classroomID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]constraintPart, 0, len(cons))
	for _, cn := range cons {
		out = append(out, toConstraintPart(cn))
	}
	return c.JSON(http.StatusOK, out)
}

// ToggleConstraint enables or disables a rule without deleting it, so a
// rule can be parked during special seatings and restored later.
func (h *PlannerHandler) ToggleConstraint(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	constraintID, err := pathID(c, "constraintId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid constraint id"})
	}
	var req enabledReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}
	if err := h.Constraints.SetEnabled(ctx, classroomID, constraintID, req.Enabled); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteConstraint removes a rule permanently.
func (h *PlannerHandler) DeleteConstraint(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	constraintID, err := pathID(c, "constraintId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid constraint id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}
	if err := h.Constraints.Delete(ctx, classroomID, constraintID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
