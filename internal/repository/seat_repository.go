package repository // repository defines data access for seat cells

import (
	"context"
	"database/sql"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// SeatRepo provides methods to work with seat cells in the database.
// Seat occupancy carries a uniqueness constraint on (classroom_id,
// student_id), which is why every bulk rewrite clears occupancy first
// inside the same transaction.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// ListByClassroom retrieves all cells of a classroom ordered by
// row then column.
func (r *SeatRepo) ListByClassroom(ctx context.Context, classroomID uint64) ([]model.Seat, error) {
	const q = `SELECT id, classroom_id, grid_row, grid_col, cell_type,
	                  COALESCE(student_id, 0), COALESCE(group_id, 0)
	           FROM seats
	           WHERE classroom_id = ?
	           ORDER BY grid_row, grid_col`
	rows, err := r.db.QueryContext(ctx, q, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ClassroomID, &s.Row, &s.Col, &s.CellType,
			&s.StudentID, &s.GroupID); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CreateBulkTx inserts multiple cells in a single statement.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (classroom_id, grid_row, grid_col, cell_type) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, s.ClassroomID, s.Row, s.Col, s.CellType)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// DeleteOutsideTx drops cells beyond the new grid bounds.  Run inside
// the resize transaction together with CreateBulkTx for new cells.
func (r *SeatRepo) DeleteOutsideTx(ctx context.Context, tx *sql.Tx, classroomID uint64, rows, cols int) error {
	const q = `DELETE FROM seats WHERE classroom_id = ? AND (grid_row > ? OR grid_col > ?)`
	_, err := tx.ExecContext(ctx, q, classroomID, rows, cols)
	return err
}

// ClearOccupancyTx sets every seat of the classroom to unoccupied.
// Always the first statement of a bulk rewrite, so the uniqueness
// constraint never sees a student in two seats mid-update.
func (r *SeatRepo) ClearOccupancyTx(ctx context.Context, tx *sql.Tx, classroomID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE seats SET student_id = NULL WHERE classroom_id = ?", classroomID)
	return err
}

// ReplaceStateTx persists the full in-memory layout: occupancy is
// cleared, then every cell's type, occupant and group are written back.
func (r *SeatRepo) ReplaceStateTx(ctx context.Context, tx *sql.Tx, classroomID uint64, seats []model.Seat) error {
	if err := r.ClearOccupancyTx(ctx, tx, classroomID); err != nil {
		return err
	}
	const q = `UPDATE seats SET cell_type = ?, student_id = ?, group_id = ?
	           WHERE classroom_id = ? AND grid_row = ? AND grid_col = ?`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, s := range seats {
		if _, err := stmt.ExecContext(ctx,
			s.CellType, nullable(s.StudentID), nullable(s.GroupID),
			classroomID, s.Row, s.Col); err != nil {
			return err
		}
	}
	return nil
}

// UpdateCellTypeTx changes one cell's type; turning a cell into a
// non-seat clears its occupant and group in the same statement.
func (r *SeatRepo) UpdateCellTypeTx(ctx context.Context, tx *sql.Tx, classroomID uint64, row, col int, cellType model.CellType) error {
	if cellType == model.CellSeat {
		const q = `UPDATE seats SET cell_type = ? WHERE classroom_id = ? AND grid_row = ? AND grid_col = ?`
		_, err := tx.ExecContext(ctx, q, cellType, classroomID, row, col)
		return err
	}
	const q = `UPDATE seats SET cell_type = ?, student_id = NULL, group_id = NULL
	           WHERE classroom_id = ? AND grid_row = ? AND grid_col = ?`
	_, err := tx.ExecContext(ctx, q, cellType, classroomID, row, col)
	return err
}

// SetGroupTx assigns or clears (groupID 0) the group of one cell.
func (r *SeatRepo) SetGroupTx(ctx context.Context, tx *sql.Tx, classroomID uint64, row, col int, groupID uint64) error {
	const q = `UPDATE seats SET group_id = ? WHERE classroom_id = ? AND grid_row = ? AND grid_col = ?`
	_, err := tx.ExecContext(ctx, q, nullable(groupID), classroomID, row, col)
	return err
}

// nullable maps the in-memory "0 means none" convention onto SQL NULL.
func nullable(id uint64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}
