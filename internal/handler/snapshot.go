package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/engine"
	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

const snapshotApp = "classroom-seat-planner"

type snapshotReq struct {
	Name string `json:"name"`
	Full bool   `json:"full"` // include roster and constraints
}

type snapshotPart struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// buildPayload serializes the current layout.  A full export adds the
// roster and constraints so the snapshot can be restored into an empty
// classroom elsewhere.
func buildPayload(st *engine.State, room *model.Classroom, full bool) model.SnapshotPayload {
	p := model.SnapshotPayload{
		Meta: model.SnapshotMeta{
			App:        snapshotApp,
			Version:    "1.0",
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
		},
		Classroom: model.SnapshotClassroom{Name: room.Name, Rows: st.Rows, Cols: st.Cols},
	}
	for _, g := range st.GroupList() {
		p.Groups = append(p.Groups, model.SnapshotGroup{Name: g.Name, Order: g.Order})
	}
	for r := 1; r <= st.Rows; r++ {
		for col := 1; col <= st.Cols; col++ {
			seat := st.SeatAt(engine.Coord{Row: r, Col: col})
			if seat == nil {
				continue
			}
			ss := model.SnapshotSeat{Row: seat.Row, Col: seat.Col, CellType: seat.CellType}
			if seat.StudentID != 0 {
				if stu, ok := st.Students[seat.StudentID]; ok {
					// The triple reference lets an import into a rebuilt
					// roster still find the right student.
					ss.StudentPK = stu.ID
					ss.StudentNo = stu.StudentNo
					ss.StudentName = stu.Name
				}
			}
			if seat.GroupID != 0 {
				if g, ok := st.Groups[seat.GroupID]; ok {
					ss.GroupName = g.Name
				}
			}
			p.Seats = append(p.Seats, ss)
		}
	}
	if full {
		for _, s := range st.Roster() {
			p.Students = append(p.Students, model.SnapshotStudent{
				Name: s.Name, StudentNo: s.StudentNo, Gender: s.Gender, Score: s.Score,
			})
		}
		for _, cn := range st.Constraints {
			sc := model.SnapshotConstraint{
				Type: cn.Type, Row: cn.Row, Col: cn.Col,
				Distance: cn.Distance, Enabled: cn.Enabled, Note: cn.Note,
			}
			if stu, ok := st.Students[cn.StudentID]; ok {
				sc.StudentPK, sc.StudentNo, sc.StudentName = stu.ID, stu.StudentNo, stu.Name
			}
			if cn.TargetID != 0 {
				if tgt, ok := st.Students[cn.TargetID]; ok {
					sc.TargetPK, sc.TargetNo, sc.TargetName = tgt.ID, tgt.StudentNo, tgt.Name
				}
			}
			p.Constraints = append(p.Constraints, sc)
		}
	}
	return p
}

// ExportLayout returns the current layout as a payload document without
// storing anything, for client-side download.
func (h *PlannerHandler) ExportLayout(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	full := c.QueryParam("full") == "true"

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, room, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, buildPayload(st, room, full))
}

// SaveSnapshot stores the current layout under a name.
func (h *PlannerHandler) SaveSnapshot(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req snapshotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, room, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}
	data, err := json.Marshal(buildPayload(st, room, req.Full))
	if err != nil {
		return fail(c, err)
	}
	snap := model.LayoutSnapshot{
		ClassroomID: classroomID,
		Name:        strings.TrimSpace(req.Name),
		Data:        data,
	}
	if err := h.Snapshots.Create(ctx, &snap); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, snapshotPart{ID: snap.ID, Name: snap.Name, CreatedAt: snap.CreatedAt})
}

// ListSnapshots returns snapshot metadata without the payloads.
func (h *PlannerHandler) ListSnapshots(c echo.Context) error {
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
	snaps, err := h.Snapshots.ListByClassroom(ctx, classroomID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]snapshotPart, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapshotPart{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// ApplySnapshot restores a stored layout onto the current grid.  Seats
// outside today's grid and occupants no longer on the roster are
// skipped.  The history resets because actions recorded against the
// old layout no longer describe this one.
func (h *PlannerHandler) ApplySnapshot(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	snapshotID, err := pathID(c, "snapshotId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid snapshot id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}
	snap, err := h.Snapshots.GetByID(ctx, classroomID, snapshotID)
	if err != nil {
		return fail(c, err)
	}
	var payload model.SnapshotPayload
	if err := json.Unmarshal(snap.Data, &payload); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "snapshot payload is corrupt"})
	}

	restoreLayout(st, payload)

	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Reset(ctx, classroomID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": layoutParts(st)})
}

// DeleteSnapshot removes a stored snapshot.
func (h *PlannerHandler) DeleteSnapshot(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	snapshotID, err := pathID(c, "snapshotId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid snapshot id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}
	if err := h.Snapshots.Delete(ctx, classroomID, snapshotID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// restoreLayout overlays a payload onto the state: cell types and
// occupants for every snapshot seat that still exists on the grid.
// Occupants resolve by primary key first, then student number, then
// name, so an export survives a roster re-import.
func restoreLayout(st *engine.State, payload model.SnapshotPayload) {
	byNo := make(map[string]uint64)
	byName := make(map[string]uint64)
	for id, s := range st.Students {
		if s.StudentNo != "" {
			byNo[s.StudentNo] = id
		}
		if _, dup := byName[s.Name]; !dup {
			byName[s.Name] = id
		}
	}
	groupByName := make(map[string]uint64)
	for id, g := range st.Groups {
		groupByName[g.Name] = id
	}

	items := make([]model.LayoutItem, 0, len(payload.Seats))
	for _, ss := range payload.Seats {
		seat := st.SeatAt(engine.Coord{Row: ss.Row, Col: ss.Col})
		if seat == nil {
			continue
		}
		if model.ValidCellType(string(ss.CellType)) {
			seat.CellType = ss.CellType
		}

		var studentID uint64
		if _, ok := st.Students[ss.StudentPK]; ok {
			studentID = ss.StudentPK
		} else if id, ok := byNo[ss.StudentNo]; ok && ss.StudentNo != "" {
			studentID = id
		} else if id, ok := byName[ss.StudentName]; ok && ss.StudentName != "" {
			studentID = id
		}
		if seat.CellType != model.CellSeat {
			studentID = 0
		}

		item := model.LayoutItem{
			Row: ss.Row, Col: ss.Col,
			BeforeStudentID: seat.StudentID, BeforeGroupID: seat.GroupID,
			AfterStudentID: studentID,
		}
		if gid, ok := groupByName[ss.GroupName]; ok && ss.GroupName != "" && seat.CellType == model.CellSeat {
			item.AfterGroupID = gid
		}
		items = append(items, item)
	}
	st.ApplyAction(model.Action{Kind: model.ActionSeatLayout, SeatLayout: items})
}
