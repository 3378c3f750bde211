package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/history"
)

// Undo pops the newest action, replays its inverse against the current
// layout and persists the result.  Entries referring to students or
// seats deleted since the action was recorded are replayed with those
// items skipped rather than rejected.
func (h *PlannerHandler) Undo(c echo.Context) error {
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

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}

	act, err := h.History.Undo(ctx, classroomID)
	if err != nil {
		if errors.Is(err, history.ErrNothingToUndo) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to undo"})
		}
		return fail(c, err)
	}

	st.ApplyAction(act.Invert())
	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}

	undo, redo, _ := h.History.Depths(ctx, classroomID)
	return c.JSON(http.StatusOK, echo.Map{
		"undone":  act,
		"seats":   layoutParts(st),
		"history": echo.Map{"undo_depth": undo, "redo_depth": redo},
	})
}

// Redo replays the most recently undone action forward.
func (h *PlannerHandler) Redo(c echo.Context) error {
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

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}

	act, err := h.History.Redo(ctx, classroomID)
	if err != nil {
		if errors.Is(err, history.ErrNothingToRedo) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to redo"})
		}
		return fail(c, err)
	}

	st.ApplyAction(act)
	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}

	undo, redo, _ := h.History.Depths(ctx, classroomID)
	return c.JSON(http.StatusOK, echo.Map{
		"redone":  act,
		"seats":   layoutParts(st),
		"history": echo.Map{"undo_depth": undo, "redo_depth": redo},
	})
}

// HistoryDepths reports how deep both stacks are, for enabling and
// disabling the undo/redo buttons.
func (h *PlannerHandler) HistoryDepths(c echo.Context) error {
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
	undo, redo, err := h.History.Depths(ctx, classroomID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"undo_depth": undo, "redo_depth": redo})
}
