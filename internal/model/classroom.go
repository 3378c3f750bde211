package model

import "time"

// GridLimit caps either axis of a classroom grid.  Real rooms top out far
// below this; the limit keeps a bad resize request from allocating an
// absurd grid.
const GridLimit = 30

// Classroom is one teacher-owned room with a fixed seating grid.  Rows
// and Cols describe the grid dimensions; the individual cells live in the
// seats table.
type Classroom struct {
	ID        uint64    // classrooms.id
	OwnerID   uint64    // classrooms.owner_id
	Name      string    // classrooms.name
	Rows      int       // classrooms.grid_rows
	Cols      int       // classrooms.grid_cols
	CreatedAt time.Time // classrooms.created_at
}
