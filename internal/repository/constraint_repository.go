package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// ConstraintRepo provides methods to work with seating constraints.
type ConstraintRepo struct {
	db *sql.DB
}

func NewConstraintRepo(db *sql.DB) *ConstraintRepo {
	return &ConstraintRepo{db: db}
}

// Create inserts a constraint and populates the ID.
func (r *ConstraintRepo) Create(ctx context.Context, c *model.SeatConstraint) error {
	const q = `INSERT INTO seat_constraints
	           (classroom_id, constraint_type, student_id, target_id, row_num, col_num, distance, enabled, note)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		c.ClassroomID, c.Type, c.StudentID, nullable(c.TargetID),
		c.Row, c.Col, c.Distance, c.Enabled, c.Note)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ListByClassroom returns every constraint of a classroom, enabled or
// not; the engine filters by Enabled itself.
func (r *ConstraintRepo) ListByClassroom(ctx context.Context, classroomID uint64) ([]model.SeatConstraint, error) {
	const q = `SELECT id, classroom_id, constraint_type, student_id, COALESCE(target_id, 0),
	                  row_num, col_num, distance, enabled, note
	           FROM seat_constraints WHERE classroom_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.SeatConstraint
	for rows.Next() {
		var c model.SeatConstraint
		if err := rows.Scan(&c.ID, &c.ClassroomID, &c.Type, &c.StudentID, &c.TargetID,
			&c.Row, &c.Col, &c.Distance, &c.Enabled, &c.Note); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// SetEnabled toggles a constraint without deleting it, so a teacher can
// park a rule during exam seating and bring it back afterwards.
func (r *ConstraintRepo) SetEnabled(ctx context.Context, classroomID, constraintID uint64, enabled bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE seat_constraints SET enabled = ? WHERE id = ? AND classroom_id = ?",
		enabled, constraintID, classroomID)
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

// Delete removes a constraint.
func (r *ConstraintRepo) Delete(ctx context.Context, classroomID, constraintID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM seat_constraints WHERE id = ? AND classroom_id = ?", constraintID, classroomID)
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

// GetByID fetches one constraint scoped to a classroom.
func (r *ConstraintRepo) GetByID(ctx context.Context, classroomID, constraintID uint64) (*model.SeatConstraint, error) {
	const q = `SELECT id, classroom_id, constraint_type, student_id, COALESCE(target_id, 0),
	                  row_num, col_num, distance, enabled, note
	           FROM seat_constraints WHERE id = ? AND classroom_id = ?`
	var c model.SeatConstraint
	err := r.db.QueryRowContext(ctx, q, constraintID, classroomID).
		Scan(&c.ID, &c.ClassroomID, &c.Type, &c.StudentID, &c.TargetID,
			&c.Row, &c.Col, &c.Distance, &c.Enabled, &c.Note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
