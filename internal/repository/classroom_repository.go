package repository // repository defines data access for classrooms

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// ClassroomRepo provides methods to work with classrooms in the database.
type ClassroomRepo struct {
	db *sql.DB
}

// NewClassroomRepo constructs a ClassroomRepo with the given DB handle.
func NewClassroomRepo(db *sql.DB) *ClassroomRepo {
	return &ClassroomRepo{db: db}
}

// Create inserts a classroom record.  On success the ID is populated.
func (r *ClassroomRepo) Create(ctx context.Context, c *model.Classroom) error {
	const q = `INSERT INTO classrooms (owner_id, name, grid_rows, grid_cols) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.OwnerID, c.Name, c.Rows, c.Cols)
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

// GetByIDAndOwner retrieves a classroom while enforcing ownership.
// Returns ErrNotFound when the room is missing, ErrForbidden when it
// belongs to someone else.
func (r *ClassroomRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Classroom, error) {
	const q = `SELECT id, owner_id, name, grid_rows, grid_cols, created_at FROM classrooms WHERE id = ?`
	var c model.Classroom
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&c.ID, &c.OwnerID, &c.Name, &c.Rows, &c.Cols, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if c.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return &c, nil
}

// ListByOwner returns all classrooms of one owner, newest first.
func (r *ClassroomRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Classroom, error) {
	const q = `SELECT id, owner_id, name, grid_rows, grid_cols, created_at
	           FROM classrooms WHERE owner_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Classroom
	for rows.Next() {
		var c model.Classroom
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Rows, &c.Cols, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// UpdateGridTx updates name and dimensions inside a caller transaction,
// since resizing must commit together with the seat sync.
func (r *ClassroomRepo) UpdateGridTx(ctx context.Context, tx *sql.Tx, id uint64, name string, rows, cols int) error {
	const q = `UPDATE classrooms SET name = ?, grid_rows = ?, grid_cols = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, name, rows, cols, id)
	return err
}

// Delete removes a classroom; seats, students, groups, constraints and
// snapshots cascade via foreign keys.
func (r *ClassroomRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM classrooms WHERE id = ? AND owner_id = ?", id, ownerID)
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
