// Package handler implements the HTTP endpoints of the seat planner.
// Handlers bind request DTOs, enforce ownership through the repositories,
// run the seating engine on an in-memory State and persist the result in
// one transaction.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/engine"
	"github.com/iliyamo/classroom-seat-planner/internal/history"
	"github.com/iliyamo/classroom-seat-planner/internal/model"
	"github.com/iliyamo/classroom-seat-planner/internal/repository"
)

// dbTimeout bounds every request-scoped database interaction.
const dbTimeout = 5 * time.Second

// PlannerHandler bundles everything the classroom-scoped endpoints need.
type PlannerHandler struct {
	DB          *sql.DB
	Classrooms  *repository.ClassroomRepo
	Seats       *repository.SeatRepo
	Students    *repository.StudentRepo
	Groups      *repository.GroupRepo
	Constraints *repository.ConstraintRepo
	Snapshots   *repository.SnapshotRepo
	History     *history.Store
}

// NewPlannerHandler wires the handler; a nil dependency is a programming
// error and panics at startup rather than at request time.
func NewPlannerHandler(db *sql.DB, cls *repository.ClassroomRepo, seats *repository.SeatRepo,
	students *repository.StudentRepo, groups *repository.GroupRepo,
	cons *repository.ConstraintRepo, snaps *repository.SnapshotRepo, hist *history.Store) *PlannerHandler {
	if db == nil || cls == nil || seats == nil || students == nil ||
		groups == nil || cons == nil || snaps == nil || hist == nil {
		panic("handler: nil dependency")
	}
	return &PlannerHandler{
		DB: db, Classrooms: cls, Seats: seats, Students: students,
		Groups: groups, Constraints: cons, Snapshots: snaps, History: hist,
	}
}

// getUserID extracts the authenticated user id set by the JWT middleware.
// The claim travels through JSON so the concrete type varies.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		id, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bad user_id claim: %w", err)
		}
		return id, nil
	default:
		return 0, errors.New("missing user_id claim")
	}
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// reqCtx derives the standard request-scoped DB context.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// loadState assembles the engine State of one classroom after the
// ownership check.  Every mutating endpoint goes through here so the
// engine always sees the full picture (seats, roster, groups, rules).
func (h *PlannerHandler) loadState(ctx context.Context, classroomID, ownerID uint64) (*engine.State, *model.Classroom, error) {
	room, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, ownerID)
	if err != nil {
		return nil, nil, err
	}
	seats, err := h.Seats.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, nil, err
	}
	students, err := h.Students.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, nil, err
	}
	groups, err := h.Groups.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, nil, err
	}
	cons, err := h.Constraints.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, nil, err
	}
	return engine.NewState(*room, seats, students, groups, cons), room, nil
}

// persistState writes the in-memory layout back in one transaction:
// every cell's type, occupant and group, plus the (possibly cleared)
// group leaderships.
func (h *PlannerHandler) persistState(ctx context.Context, classroomID uint64, st *engine.State) error {
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	seats := make([]model.Seat, 0, len(st.Seats))
	for _, s := range st.Seats {
		seats = append(seats, *s)
	}
	if err := h.Seats.ReplaceStateTx(ctx, tx, classroomID, seats); err != nil {
		return err
	}
	groups := make([]model.SeatGroup, 0, len(st.Groups))
	for _, g := range st.Groups {
		groups = append(groups, *g)
	}
	if err := h.Groups.SyncLeadersTx(ctx, tx, classroomID, groups); err != nil {
		return err
	}
	return tx.Commit()
}

// fail maps repository sentinel errors onto HTTP responses; anything
// unrecognized becomes a 500 with a generic message.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not yours"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// seatPart is the wire shape of one grid cell in layout responses.
type seatPart struct {
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	CellType  string `json:"cell_type"`
	StudentID uint64 `json:"student_id,omitempty"`
	GroupID   uint64 `json:"group_id,omitempty"`
}

// layoutParts flattens the grid in row-major order for responses.
func layoutParts(st *engine.State) []seatPart {
	out := make([]seatPart, 0, st.Rows*st.Cols)
	for r := 1; r <= st.Rows; r++ {
		for col := 1; col <= st.Cols; col++ {
			s := st.SeatAt(engine.Coord{Row: r, Col: col})
			if s == nil {
				continue
			}
			out = append(out, seatPart{
				Row: s.Row, Col: s.Col, CellType: string(s.CellType),
				StudentID: s.StudentID, GroupID: s.GroupID,
			})
		}
	}
	return out
}
