package engine

import (
	"math/rand"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

const (
	// stabilizeRounds bounds the local-repair loop.
	stabilizeRounds = 6
	// occupiedPenalty biases candidate selection toward free seats; an
	// occupied candidate still wins when it is much closer.
	occupiedPenalty = 2
	// randomizedRetries is how often the auto-fix ladder re-runs a
	// shuffling method before moving on.
	randomizedRetries = 3
)

// Stabilize runs up to stabilizeRounds rounds of single-best corrective
// moves against the currently violated constraints.  It returns true
// when no violations remain.  It is a best-effort local search: callers
// must re-check Evaluate and decide whether to accept, retry with a
// different arrangement, or roll back.
func (st *State) Stabilize() bool {
	for round := 0; round < stabilizeRounds; round++ {
		viols := st.Evaluate()
		if len(viols) == 0 {
			st.NormalizeLeaders()
			return true
		}
		moved := 0
		for _, v := range viols {
			if v.ConstraintID == 0 {
				continue
			}
			if c, ok := st.constraintByID(v.ConstraintID); ok && st.repairOne(c) {
				moved++
			}
		}
		if moved == 0 {
			break
		}
	}
	st.NormalizeLeaders()
	return len(st.Evaluate()) == 0
}

func (st *State) constraintByID(id uint64) (model.SeatConstraint, bool) {
	for _, c := range st.Constraints {
		if c.ID == id {
			return c, true
		}
	}
	return model.SeatConstraint{}, false
}

// repairOne attempts the single best corrective move for a violated
// constraint.  Candidate seats match the required condition (or avoid
// the forbidden one); the candidate minimizing Manhattan distance from
// the subject's current seat plus an occupied penalty wins, and the
// move itself displaces any sitting student (swap-based repair).
func (st *State) repairOne(c model.SeatConstraint) bool {
	switch c.Type {
	case model.MustSeat:
		return st.moveToBest(c.StudentID, []Coord{{Row: c.Row, Col: c.Col}})
	case model.ForbidSeat:
		return st.moveToBest(c.StudentID, st.candidateSeats(func(s *model.Seat) bool {
			return s.Row != c.Row || s.Col != c.Col
		}))
	case model.MustRow:
		return st.moveToBest(c.StudentID, st.candidateSeats(func(s *model.Seat) bool { return s.Row == c.Row }))
	case model.ForbidRow:
		return st.moveToBest(c.StudentID, st.candidateSeats(func(s *model.Seat) bool { return s.Row != c.Row }))
	case model.MustCol:
		return st.moveToBest(c.StudentID, st.candidateSeats(func(s *model.Seat) bool { return s.Col == c.Col }))
	case model.ForbidCol:
		return st.moveToBest(c.StudentID, st.candidateSeats(func(s *model.Seat) bool { return s.Col != c.Col }))
	case model.MustTogether:
		return st.repairPair(c, true)
	case model.ForbidTogether:
		return st.repairPair(c, false)
	}
	return false
}

// repairPair relocates the subject relative to the partner (near for
// must-together, away for forbid-together); when the partner is the one
// without a usable position the roles flip and the partner moves
// relative to the subject instead.
func (st *State) repairPair(c model.SeatConstraint, together bool) bool {
	if partnerSeat, seated := st.SeatOf(c.TargetID); seated {
		at := Coord{Row: partnerSeat.Row, Col: partnerSeat.Col}
		cands := st.candidateSeats(func(s *model.Seat) bool {
			d := Manhattan(Coord{Row: s.Row, Col: s.Col}, at)
			if together {
				return d >= 1 && d <= c.Distance
			}
			return d > c.Distance
		})
		if st.moveToBest(c.StudentID, cands) {
			return true
		}
	}
	subjectSeat, seated := st.SeatOf(c.StudentID)
	if !seated {
		return false
	}
	at := Coord{Row: subjectSeat.Row, Col: subjectSeat.Col}
	cands := st.candidateSeats(func(s *model.Seat) bool {
		d := Manhattan(Coord{Row: s.Row, Col: s.Col}, at)
		if together {
			return d >= 1 && d <= c.Distance
		}
		return d > c.Distance
	})
	return st.moveToBest(c.TargetID, cands)
}

func (st *State) candidateSeats(keep func(*model.Seat) bool) []Coord {
	var out []Coord
	for _, s := range st.SeatCells() {
		if keep(s) {
			out = append(out, Coord{Row: s.Row, Col: s.Col})
		}
	}
	return out
}

// moveToBest picks the cheapest candidate (distance from the current
// seat plus a penalty when taken) and moves the student there.
func (st *State) moveToBest(studentID uint64, candidates []Coord) bool {
	if _, ok := st.Students[studentID]; !ok {
		return false
	}
	var current *Coord
	if seat, seated := st.SeatOf(studentID); seated {
		c := Coord{Row: seat.Row, Col: seat.Col}
		current = &c
	}
	bestCost := -1
	var best *Coord
	for _, cand := range candidates {
		if current != nil && cand == *current {
			return false // already satisfying; nothing to do
		}
		seat := st.SeatAt(cand)
		if seat == nil || seat.CellType != model.CellSeat {
			continue
		}
		cost := 0
		if current != nil {
			cost = Manhattan(*current, cand)
		}
		if seat.StudentID != 0 {
			cost += occupiedPenalty
		}
		if bestCost < 0 || cost < bestCost {
			bestCost = cost
			c := cand
			best = &c
		}
	}
	if best == nil {
		return false
	}
	_, err := st.PerformMove(studentID, *best)
	return err == nil
}

// AttemptAutoFix retries the full arrangement under a ladder of
// methods: the preferred method first, then the whole repertoire.
// Randomized methods get several tries.  Each attempt runs in its own
// rollback scope; the first attempt whose post-arrangement Stabilize
// leaves zero violations replaces the live state.  When the ladder is
// exhausted the state is left untouched and an UnresolvedError with the
// current violations is returned.
func (st *State) AttemptAutoFix(preferred Method, rng *rand.Rand) error {
	ladder := make([]Method, 0, len(Methods)+1)
	ladder = append(ladder, preferred)
	for _, m := range Methods {
		if m != preferred {
			ladder = append(ladder, m)
		}
	}
	for _, method := range ladder {
		tries := 1
		if method.Randomized() {
			tries = randomizedRetries
		}
		for i := 0; i < tries; i++ {
			work := st.Clone()
			if err := work.Arrange(method, rng); err != nil {
				break // method not applicable (no groups, short on seats)
			}
			work.Stabilize()
			if work.UnseatedCount() == 0 && len(work.Evaluate()) == 0 {
				st.Restore(work)
				return nil
			}
		}
	}
	return &UnresolvedError{Violations: st.Evaluate()}
}
