package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// ErrStudentNoExists flags a duplicate student number within one
// classroom (unique key on classroom_id + student_no).
var ErrStudentNoExists = errors.New("student number already exists in classroom")

// StudentRepo provides methods to work with the roster.
type StudentRepo struct {
	db *sql.DB
}

func NewStudentRepo(db *sql.DB) *StudentRepo {
	return &StudentRepo{db: db}
}

// Create inserts a student and populates the ID.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	const q = `INSERT INTO students (classroom_id, name, student_no, gender, score) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.ClassroomID, s.Name, s.StudentNo, s.Gender, s.Score)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrStudentNoExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// CreateBulkTx inserts several students in one statement, used by the
// roster import.
func (r *StudentRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	query := `INSERT INTO students (classroom_id, name, student_no, gender, score) VALUES `
	args := make([]interface{}, 0, len(students)*5)
	for i, s := range students {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, s.ClassroomID, s.Name, s.StudentNo, s.Gender, s.Score)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrStudentNoExists
	}
	return err
}

// ListByClassroom returns the roster ordered by student number.
func (r *StudentRepo) ListByClassroom(ctx context.Context, classroomID uint64) ([]model.Student, error) {
	const q = `SELECT id, classroom_id, name, student_no, gender, score
	           FROM students WHERE classroom_id = ? ORDER BY student_no, id`
	rows, err := r.db.QueryContext(ctx, q, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.ClassroomID, &s.Name, &s.StudentNo, &s.Gender, &s.Score); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Update rewrites the editable fields of one student.
func (r *StudentRepo) Update(ctx context.Context, s *model.Student) error {
	const q = `UPDATE students SET name = ?, student_no = ?, gender = ?, score = ?
	           WHERE id = ? AND classroom_id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.StudentNo, s.Gender, s.Score, s.ID, s.ClassroomID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrStudentNoExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no such student" from "nothing changed".
		var exists int
		if err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM students WHERE id = ? AND classroom_id = ?", s.ID, s.ClassroomID).
			Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
	}
	return nil
}

// DeleteTx removes a student and repairs every reference inside one
// transaction: seat occupancy, group leaderships, and constraints
// naming the student as subject or target.
func (r *StudentRepo) DeleteTx(ctx context.Context, tx *sql.Tx, classroomID, studentID uint64) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE seats SET student_id = NULL WHERE classroom_id = ? AND student_id = ?",
		classroomID, studentID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE seat_groups SET leader_id = NULL WHERE classroom_id = ? AND leader_id = ?",
		classroomID, studentID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM seat_constraints WHERE classroom_id = ? AND (student_id = ? OR target_id = ?)",
		classroomID, studentID, studentID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM students WHERE id = ? AND classroom_id = ?", studentID, classroomID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
