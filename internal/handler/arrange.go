package handler

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/engine"
	"github.com/iliyamo/classroom-seat-planner/internal/queue"
	queue_publisher "github.com/iliyamo/classroom-seat-planner/internal/service"
)

type arrangeReq struct {
	Method    string `json:"method"`
	Seed      int64  `json:"seed"`        // optional, random method only
	NoAutoFix bool   `json:"no_auto_fix"` // report violations instead of retrying
}

// Arrange reseats the whole roster with the requested method, repairs
// residual constraint breaks and, when repair alone is not enough, runs
// the retry ladder over the other methods.  Success persists and resets
// the undo history, since the previous layout's actions no longer apply.
// Failure leaves the stored layout untouched and returns the remaining
// violations.
func (h *PlannerHandler) Arrange(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req arrangeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !engine.ValidMethod(req.Method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown arrangement method"})
	}
	method := engine.Method(req.Method)

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, room, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}

	if err := st.Arrange(method, rng); err != nil {
		return engineFail(c, err)
	}
	clean := st.Stabilize()
	autoFixed := false
	if !clean || st.UnseatedCount() > 0 {
		if req.NoAutoFix {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":      "constraints could not be satisfied",
				"violations": st.Evaluate(),
				"unseated":   st.UnseatedIDs(),
			})
		}
		if err := st.AttemptAutoFix(method, rng); err != nil {
			var unresolved *engine.UnresolvedError
			if errors.As(err, &unresolved) {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{
					"error":      "constraints could not be satisfied",
					"violations": unresolved.Violations,
				})
			}
			return fail(c, err)
		}
		autoFixed = true
	}

	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Reset(ctx, classroomID); err != nil {
		return fail(c, err)
	}

	// Best effort: a broker outage must not fail the arrangement.
	event := queue.LayoutArrangedEvent{
		ClassroomID:   classroomID,
		ClassroomName: room.Name,
		UserID:        uid,
		Method:        string(method),
		AutoFixed:     autoFixed,
		Students:      len(st.Students),
		Violations:    len(st.Evaluate()),
		ArrangedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishLayoutArranged(pubCtx, event)
	}()

	return c.JSON(http.StatusOK, echo.Map{
		"method":     string(method),
		"auto_fixed": autoFixed,
		"seats":      layoutParts(st),
	})
}

type balanceReq struct {
	Apply bool `json:"apply"`
}

// SuggestBalance proposes (and optionally applies) the single swap that
// best narrows the score gap between the strongest and weakest group.
func (h *PlannerHandler) SuggestBalance(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req balanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, _, err := h.loadState(ctx, classroomID, uid)
	if err != nil {
		return fail(c, err)
	}

	swap := st.SuggestBalanceSwap()
	if swap == nil {
		return c.JSON(http.StatusOK, echo.Map{"suggestion": nil})
	}
	if !req.Apply {
		return c.JSON(http.StatusOK, echo.Map{"suggestion": swap})
	}

	_, ok1 := st.SeatOf(swap.HighStudentID)
	lowSeat, ok2 := st.SeatOf(swap.LowStudentID)
	if !ok1 || !ok2 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "suggested students are no longer seated"})
	}
	// Moving onto an occupied seat swaps, which is exactly the exchange.
	act, err := st.PerformMove(swap.HighStudentID, engine.Coord{Row: lowSeat.Row, Col: lowSeat.Col})
	if err != nil {
		return engineFail(c, err)
	}
	if err := h.persistState(ctx, classroomID, st); err != nil {
		return fail(c, err)
	}
	if err := h.History.Push(ctx, classroomID, act); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"suggestion": swap,
		"action":     act,
		"seats":      layoutParts(st),
	})
}
