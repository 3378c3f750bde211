package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// GroupRepo provides methods to work with seat groups.  Membership is
// stored on the seats themselves (seats.group_id); this repo owns only
// the group records and their leader references.
type GroupRepo struct {
	db *sql.DB
}

func NewGroupRepo(db *sql.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// Create inserts a group and populates the ID.
func (r *GroupRepo) Create(ctx context.Context, g *model.SeatGroup) error {
	const q = `INSERT INTO seat_groups (classroom_id, name, sort_order) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, g.ClassroomID, g.Name, g.Order)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict // name unique per classroom
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// ListByClassroom returns the groups in display order.
func (r *GroupRepo) ListByClassroom(ctx context.Context, classroomID uint64) ([]model.SeatGroup, error) {
	const q = `SELECT id, classroom_id, name, COALESCE(leader_id, 0), sort_order
	           FROM seat_groups WHERE classroom_id = ? ORDER BY sort_order, id`
	rows, err := r.db.QueryContext(ctx, q, classroomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.SeatGroup
	for rows.Next() {
		var g model.SeatGroup
		if err := rows.Scan(&g.ID, &g.ClassroomID, &g.Name, &g.LeaderID, &g.Order); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// Rename updates a group's display name.
func (r *GroupRepo) Rename(ctx context.Context, classroomID, groupID uint64, name string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE seat_groups SET name = ? WHERE id = ? AND classroom_id = ?",
		name, groupID, classroomID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
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

// SetLeaderTx writes the leader reference (0 clears it).  Runs inside
// the caller's transaction so leader normalization commits atomically
// with the seat changes that triggered it.
func (r *GroupRepo) SetLeaderTx(ctx context.Context, tx *sql.Tx, classroomID, groupID, leaderID uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE seat_groups SET leader_id = ? WHERE id = ? AND classroom_id = ?",
		nullable(leaderID), groupID, classroomID)
	return err
}

// SyncLeadersTx persists the in-memory leader state of every group.
func (r *GroupRepo) SyncLeadersTx(ctx context.Context, tx *sql.Tx, classroomID uint64, groups []model.SeatGroup) error {
	for _, g := range groups {
		if err := r.SetLeaderTx(ctx, tx, classroomID, g.ID, g.LeaderID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteTx removes a group and detaches its seats.
func (r *GroupRepo) DeleteTx(ctx context.Context, tx *sql.Tx, classroomID, groupID uint64) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE seats SET group_id = NULL WHERE classroom_id = ? AND group_id = ?",
		classroomID, groupID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"DELETE FROM seat_groups WHERE id = ? AND classroom_id = ?", groupID, classroomID)
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

// GetByID fetches one group scoped to a classroom.
func (r *GroupRepo) GetByID(ctx context.Context, classroomID, groupID uint64) (*model.SeatGroup, error) {
	const q = `SELECT id, classroom_id, name, COALESCE(leader_id, 0), sort_order
	           FROM seat_groups WHERE id = ? AND classroom_id = ?`
	var g model.SeatGroup
	err := r.db.QueryRowContext(ctx, q, groupID, classroomID).
		Scan(&g.ID, &g.ClassroomID, &g.Name, &g.LeaderID, &g.Order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}
