package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

type groupReq struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type leaderReq struct {
	LeaderID uint64 `json:"leader_id"` // 0 clears the leader
}

type groupPart struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	LeaderID uint64 `json:"leader_id,omitempty"`
	Order    int    `json:"order"`
}

func toGroupPart(g model.SeatGroup) groupPart {
	return groupPart{ID: g.ID, Name: g.Name, LeaderID: g.LeaderID, Order: g.Order}
}

// CreateGroup adds a named seat group.  Seats join it afterwards via
// the seat grouping endpoints.
func (h *PlannerHandler) CreateGroup(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req groupReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}
	g := model.SeatGroup{ClassroomID: classroomID, Name: strings.TrimSpace(req.Name), Order: req.Order}
	if err := h.Groups.Create(ctx, &g); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toGroupPart(g))
}

// ListGroups returns the classroom's groups in display order.
func (h *PlannerHandler) ListGroups(c echo.Context) error {
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
	groups, err := h.Groups.ListByClassroom(ctx, classroomID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]groupPart, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupPart(g))
	}
	return c.JSON(http.StatusOK, out)
}

// RenameGroup changes a group's display name.
func (h *PlannerHandler) RenameGroup(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	groupID, err := pathID(c, "groupId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	var req groupReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}
	if err := h.Groups.Rename(ctx, classroomID, groupID, strings.TrimSpace(req.Name)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetGroupLeader designates a seated member as the group's leader.  The
// student must currently occupy one of the group's seats; leader_id 0
// clears the designation.
func (h *PlannerHandler) SetGroupLeader(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	groupID, err := pathID(c, "groupId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}
	var req leaderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}
	if _, ok := st.Groups[groupID]; !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
	}
	if req.LeaderID != 0 {
		seat, seated := st.SeatOf(req.LeaderID)
		if !seated || seat.GroupID != groupID {
			return c.JSON(http.StatusUnprocessableEntity,
				echo.Map{"error": "leader must occupy a seat of the group"})
		}
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	defer tx.Rollback()
	if err := h.Groups.SetLeaderTx(ctx, tx, classroomID, groupID, req.LeaderID); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteGroup removes a group and detaches its seats.
func (h *PlannerHandler) DeleteGroup(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	groupID, err := pathID(c, "groupId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid group id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	defer tx.Rollback()
	if err := h.Groups.DeleteTx(ctx, tx, classroomID, groupID); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RotateGroups shifts every group's occupants to the next group's seats
// in display order, the last wrapping to the first.  Requires at least
// two groups with identical seat counts.  The rotation is one undoable
// action.
func (h *PlannerHandler) RotateGroups(c echo.Context) error {
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
	act, err := st.RotateGroups()
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
