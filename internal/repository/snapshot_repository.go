package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// SnapshotRepo stores named layout exports.  The data column holds
// the JSON document produced by the snapshot handler; the database
// never inspects it.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Create inserts a snapshot and populates ID and CreatedAt.
func (r *SnapshotRepo) Create(ctx context.Context, s *model.LayoutSnapshot) error {
	const q = `INSERT INTO layout_snapshots (classroom_id, name, data) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.ClassroomID, s.Name, s.Data)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.CreatedAt = time.Now().UTC()
	return nil
}

// ListByClassroom returns snapshot metadata, newest first.  Payloads
// are omitted; GetByID fetches the full document.
func (r *SnapshotRepo) ListByClassroom(ctx context.Context, classroomID uint64) ([]model.LayoutSnapshot, error) {
	const q = `SELECT id, classroom_id, name, created_at
	           FROM layout_snapshots WHERE classroom_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.LayoutSnapshot
	for rows.Next() {
		var s model.LayoutSnapshot
		if err := rows.Scan(&s.ID, &s.ClassroomID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetByID fetches a snapshot with its payload.
func (r *SnapshotRepo) GetByID(ctx context.Context, classroomID, snapshotID uint64) (*model.LayoutSnapshot, error) {
	const q = `SELECT id, classroom_id, name, data, created_at
	           FROM layout_snapshots WHERE id = ? AND classroom_id = ?`
	var s model.LayoutSnapshot
	err := r.db.QueryRowContext(ctx, q, snapshotID, classroomID).
		Scan(&s.ID, &s.ClassroomID, &s.Name, &s.Data, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes a snapshot.
func (r *SnapshotRepo) Delete(ctx context.Context, classroomID, snapshotID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM layout_snapshots WHERE id = ? AND classroom_id = ?", snapshotID, classroomID)
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
