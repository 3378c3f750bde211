package engine

import "github.com/iliyamo/classroom-seat-planner/internal/model"

// Pair is one side of a must/forbid-together constraint as seen from a
// subject: the other student and the Manhattan distance bound.
type Pair struct {
	Other    uint64
	Distance int
}

// Index compiles the enabled constraints of a classroom into lookup maps
// keyed by student id.  Building is a single pass; disabled constraints
// and constraints missing a required coordinate are skipped silently.
type Index struct {
	FixedSeat   map[uint64]Coord
	ForbidSeats map[uint64]map[Coord]struct{}
	MustRows    map[uint64]map[int]struct{}
	ForbidRows  map[uint64]map[int]struct{}
	MustCols    map[uint64]map[int]struct{}
	ForbidCols  map[uint64]map[int]struct{}
	MustPairs   map[uint64][]Pair
	ForbidPairs map[uint64][]Pair
}

// BuildIndex compiles constraints into an Index.
func BuildIndex(constraints []model.SeatConstraint) *Index {
	idx := &Index{
		FixedSeat:   make(map[uint64]Coord),
		ForbidSeats: make(map[uint64]map[Coord]struct{}),
		MustRows:    make(map[uint64]map[int]struct{}),
		ForbidRows:  make(map[uint64]map[int]struct{}),
		MustCols:    make(map[uint64]map[int]struct{}),
		ForbidCols:  make(map[uint64]map[int]struct{}),
		MustPairs:   make(map[uint64][]Pair),
		ForbidPairs: make(map[uint64][]Pair),
	}
	for _, c := range constraints {
		if !c.Enabled {
			continue
		}
		sid := c.StudentID
		switch c.Type {
		case model.MustSeat:
			if c.Row > 0 && c.Col > 0 {
				idx.FixedSeat[sid] = Coord{Row: c.Row, Col: c.Col}
			}
		case model.ForbidSeat:
			if c.Row > 0 && c.Col > 0 {
				addCoord(idx.ForbidSeats, sid, Coord{Row: c.Row, Col: c.Col})
			}
		case model.MustRow:
			if c.Row > 0 {
				addInt(idx.MustRows, sid, c.Row)
			}
		case model.ForbidRow:
			if c.Row > 0 {
				addInt(idx.ForbidRows, sid, c.Row)
			}
		case model.MustCol:
			if c.Col > 0 {
				addInt(idx.MustCols, sid, c.Col)
			}
		case model.ForbidCol:
			if c.Col > 0 {
				addInt(idx.ForbidCols, sid, c.Col)
			}
		case model.MustTogether:
			if c.TargetID != 0 {
				idx.MustPairs[sid] = append(idx.MustPairs[sid], Pair{Other: c.TargetID, Distance: c.Distance})
			}
		case model.ForbidTogether:
			if c.TargetID != 0 {
				idx.ForbidPairs[sid] = append(idx.ForbidPairs[sid], Pair{Other: c.TargetID, Distance: c.Distance})
			}
		}
	}
	return idx
}

func addCoord(m map[uint64]map[Coord]struct{}, id uint64, c Coord) {
	set, ok := m[id]
	if !ok {
		set = make(map[Coord]struct{})
		m[id] = set
	}
	set[c] = struct{}{}
}

func addInt(m map[uint64]map[int]struct{}, id uint64, v int) {
	set, ok := m[id]
	if !ok {
		set = make(map[int]struct{})
		m[id] = set
	}
	set[v] = struct{}{}
}
