package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
	"github.com/iliyamo/classroom-seat-planner/internal/repository"
)

type studentReq struct {
	Name      string  `json:"name"`
	StudentNo string  `json:"student_no"`
	Gender    string  `json:"gender"`
	Score     float64 `json:"score"`
}

type studentPart struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	StudentNo string  `json:"student_no,omitempty"`
	Gender    string  `json:"gender,omitempty"`
	Score     float64 `json:"score"`
}

func toStudentPart(s model.Student) studentPart {
	return studentPart{ID: s.ID, Name: s.Name, StudentNo: s.StudentNo, Gender: s.Gender, Score: s.Score}
}

func (r studentReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name required"
	}
	switch r.Gender {
	case "", "M", "F":
	default:
		return "gender must be M or F"
	}
	if r.Score < 0 {
		return "score must not be negative"
	}
	return ""
}

// CreateStudent adds one roster member.
func (h *PlannerHandler) CreateStudent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var req studentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}

	s := model.Student{
		ClassroomID: classroomID, Name: strings.TrimSpace(req.Name),
		StudentNo: strings.TrimSpace(req.StudentNo), Gender: req.Gender, Score: req.Score,
	}
	if err := h.Students.Create(ctx, &s); err != nil {
		if errors.Is(err, repository.ErrStudentNoExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "student number already taken"})
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toStudentPart(s))
}

// ImportStudents bulk-creates roster members in one transaction.  The
// whole batch is rejected when any student number collides.
func (h *PlannerHandler) ImportStudents(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	var reqs []studentReq
	if err := c.Bind(&reqs); err != nil || len(reqs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "non-empty student array required"})
	}
	for i, r := range reqs {
		if msg := r.validate(); msg != "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "index": i})
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}

	batch := make([]model.Student, 0, len(reqs))
	for _, r := range reqs {
		batch = append(batch, model.Student{
			ClassroomID: classroomID, Name: strings.TrimSpace(r.Name),
			StudentNo: strings.TrimSpace(r.StudentNo), Gender: r.Gender, Score: r.Score,
		})
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return fail(c, err)
	}
	defer tx.Rollback()
	if err := h.Students.CreateBulkTx(ctx, tx, batch); err != nil {
		if errors.Is(err, repository.ErrStudentNoExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate student number in import"})
		}
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"imported": len(batch)})
}

// ListStudents returns the roster ordered by student number.
func (h *PlannerHandler) ListStudents(c echo.Context) error {
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
	students, err := h.Students.ListByClassroom(ctx, classroomID)
	if err != nil {
		return fail(c, err)
	}
	out := make([]studentPart, 0, len(students))
	for _, s := range students {
		out = append(out, toStudentPart(s))
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateStudent edits one roster member.
func (h *PlannerHandler) UpdateStudent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	studentID, err := pathID(c, "studentId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid student id"})
	}
	var req studentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classrooms.GetByIDAndOwner(ctx, classroomID, uid); err != nil {
		return fail(c, err)
	}

	s := model.Student{
		ID: studentID, ClassroomID: classroomID, Name: strings.TrimSpace(req.Name),
		StudentNo: strings.TrimSpace(req.StudentNo), Gender: req.Gender, Score: req.Score,
	}
	if err := h.Students.Update(ctx, &s); err != nil {
		if errors.Is(err, repository.ErrStudentNoExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "student number already taken"})
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toStudentPart(s))
}

// DeleteStudent removes a roster member.  Their seat empties, any group
// leadership clears and constraints naming them disappear, all in one
// transaction.  History entries mentioning the student stay; replay
// skips the dangling references.
func (h *PlannerHandler) DeleteStudent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	classroomID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid classroom id"})
	}
	studentID, err := pathID(c, "studentId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid student id"})
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
	if err := h.Students.DeleteTx(ctx, tx, classroomID, studentID); err != nil {
		return fail(c, err)
	}
	if err := tx.Commit(); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
