package engine

import (
	"math/rand"
	"sort"
	"time"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// Method names an arrangement strategy.  The first six order an
// ungrouped roster; the group_* methods bucket students into seat
// groups before placement.
type Method string

const (
	MethodRandom        Method = "random"         // shuffled roster
	MethodScoreDesc     Method = "score_desc"     // best scores first
	MethodScoreAsc      Method = "score_asc"      // worst scores first
	MethodGoodFront     Method = "good_front"     // best scores, front seats
	MethodGoodBack      Method = "good_back"      // best scores, back seats
	MethodScoreSpread   Method = "score_spread"   // alternate high/low
	MethodGroupBalanced Method = "group_balanced" // equalize group averages
	MethodGroupMentor   Method = "group_mentor"   // pair extremes per group
)

// Methods is the full repertoire, in the order the auto-fix ladder
// tries them.
var Methods = []Method{
	MethodRandom, MethodScoreDesc, MethodScoreAsc,
	MethodGoodFront, MethodGoodBack, MethodScoreSpread,
	MethodGroupBalanced, MethodGroupMentor,
}

// ValidMethod reports whether s names a known method.
func ValidMethod(s string) bool {
	for _, m := range Methods {
		if string(m) == s {
			return true
		}
	}
	return false
}

// Grouped reports whether the method buckets students into seat groups.
func (m Method) Grouped() bool {
	return m == MethodGroupBalanced || m == MethodGroupMentor
}

// Randomized reports whether repeated runs can produce different
// layouts; the auto-fix ladder retries such methods more than once.
func (m Method) Randomized() bool { return m == MethodRandom }

// Arrange performs a full (re)arrangement of the classroom using the
// given method.  It rejects before mutating when there are fewer seat
// cells than students.  rng is consulted only by randomized methods and
// may be nil, in which case a time-seeded source is used.
func (st *State) Arrange(method Method, rng *rand.Rand) error {
	if method.Grouped() {
		return st.arrangeGrouped(method)
	}
	seats := st.SeatCells()
	if len(seats) < len(st.Students) {
		return ErrNotEnoughSeats
	}
	ordered, reverseSeats, err := orderRoster(st.Roster(), method, rng)
	if err != nil {
		return err
	}
	if reverseSeats {
		for i, j := 0, len(seats)-1; i < j; i, j = i+1, j-1 {
			seats[i], seats[j] = seats[j], seats[i]
		}
	}
	st.arrangeStandard(ordered, seats, nil)
	return nil
}

// ArrangeOrdered runs the standard machinery with a caller-supplied
// student order, for loaders and pre-arrangement plans that decide
// ordering themselves.
func (st *State) ArrangeOrdered(ordered []*model.Student) error {
	seats := st.SeatCells()
	if len(seats) < len(st.Students) {
		return ErrNotEnoughSeats
	}
	st.arrangeStandard(ordered, seats, nil)
	return nil
}

// orderRoster applies the method's ordering heuristic.  Sorts are
// stable with an ID tie-break so equal scores keep a deterministic
// order for tests and repeated runs.
func orderRoster(roster []*model.Student, method Method, rng *rand.Rand) ([]*model.Student, bool, error) {
	out := append([]*model.Student(nil), roster...)
	byScoreDesc := func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	}
	byScoreAsc := func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].ID < out[j].ID
	}
	switch method {
	case MethodRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out, false, nil
	case MethodScoreDesc, MethodGoodFront:
		sort.Slice(out, byScoreDesc)
		return out, false, nil
	case MethodScoreAsc:
		sort.Slice(out, byScoreAsc)
		return out, false, nil
	case MethodGoodBack:
		sort.Slice(out, byScoreDesc)
		return out, true, nil
	case MethodScoreSpread:
		sort.Slice(out, byScoreAsc)
		spread := make([]*model.Student, 0, len(out))
		lo, hi := 0, len(out)-1
		for lo <= hi {
			spread = append(spread, out[hi])
			hi--
			if lo <= hi {
				spread = append(spread, out[lo])
				lo++
			}
		}
		return spread, false, nil
	}
	return nil, false, ErrUnknownMethod
}

// seatPool tracks the free seats during placement with an ordered arena
// plus a free set, so scans never mutate the slice they iterate.
type seatPool struct {
	arena []*model.Seat
	free  map[Coord]bool
}

func newSeatPool(seats []*model.Seat) *seatPool {
	p := &seatPool{arena: seats, free: make(map[Coord]bool, len(seats))}
	for _, s := range seats {
		p.free[Coord{Row: s.Row, Col: s.Col}] = true
	}
	return p
}

func (p *seatPool) isFree(c Coord) bool { return p.free[c] }

func (p *seatPool) take(c Coord) { delete(p.free, c) }

// each yields the free seats in arena order.
func (p *seatPool) each(fn func(*model.Seat) bool) {
	for _, s := range p.arena {
		if !p.free[Coord{Row: s.Row, Col: s.Col}] {
			continue
		}
		if !fn(s) {
			return
		}
	}
}

// arrangeStandard implements the three-stage greedy placement: fixed
// seats, must-together pairs, then first-feasible fill, followed by a
// plain zip of whatever could not be placed feasibly.  Occupancy is
// cleared and rewritten at the end so identities moving between seats
// never transiently collide.
func (st *State) arrangeStandard(ordered []*model.Student, seats []*model.Seat, required map[uint64]uint64) {
	idx := BuildIndex(st.Constraints)
	assigned := make(map[uint64]Coord, len(ordered))
	pool := newSeatPool(seats)

	// Stage 1: pinned students take their fixed seat when it is
	// feasible; grouping never overrides a pin.
	for _, stu := range ordered {
		fixed, ok := idx.FixedSeat[stu.ID]
		if !ok || !pool.isFree(fixed) {
			continue
		}
		seat := st.SeatAt(fixed)
		if idx.Feasible(stu.ID, seat, assigned, nil) {
			assigned[stu.ID] = fixed
			pool.take(fixed)
		}
	}

	st.assignPairs(idx, ordered, pool, assigned, required)

	// Stage 3: first feasible free seat in scan order.
	for _, stu := range ordered {
		if _, done := assigned[stu.ID]; done {
			continue
		}
		pool.each(func(seat *model.Seat) bool {
			if idx.Feasible(stu.ID, seat, assigned, required) {
				c := Coord{Row: seat.Row, Col: seat.Col}
				assigned[stu.ID] = c
				pool.take(c)
				return false
			}
			return true
		})
	}

	// Spill: in grouped mode, students whose group ran out of seats take
	// any remaining feasible seat.
	if required != nil {
		for _, stu := range ordered {
			if _, done := assigned[stu.ID]; done {
				continue
			}
			pool.each(func(seat *model.Seat) bool {
				if idx.Feasible(stu.ID, seat, assigned, nil) {
					c := Coord{Row: seat.Row, Col: seat.Col}
					assigned[stu.ID] = c
					pool.take(c)
					return false
				}
				return true
			})
		}
	}

	// Remainder: pair leftover students with leftover seats in order so
	// everyone sits somewhere; the repair loop deals with the fallout.
	var leftover []*model.Student
	for _, stu := range ordered {
		if _, done := assigned[stu.ID]; !done {
			leftover = append(leftover, stu)
		}
	}
	i := 0
	pool.each(func(seat *model.Seat) bool {
		if i >= len(leftover) {
			return false
		}
		c := Coord{Row: seat.Row, Col: seat.Col}
		assigned[leftover[i].ID] = c
		pool.take(c)
		i++
		return true
	})

	st.ClearOccupancy()
	for _, stu := range ordered {
		if c, ok := assigned[stu.ID]; ok {
			st.setOccupant(st.SeatAt(c), stu.ID)
		}
	}
	st.NormalizeLeaders()
}

// assignPairs resolves must-together pairs greedily.  When one side is
// already placed the free side searches for a feasible seat within the
// distance; when neither is placed it scans anchors and, per anchor, a
// diamond of offsets within the distance for a feasible partner seat.
// First workable combination in scan order wins.
func (st *State) assignPairs(idx *Index, ordered []*model.Student, pool *seatPool, assigned map[uint64]Coord, required map[uint64]uint64) {
	byID := make(map[uint64]*model.Student, len(ordered))
	for _, s := range ordered {
		byID[s.ID] = s
	}
	for _, stu := range ordered {
		if _, done := assigned[stu.ID]; done {
			continue
		}
		for _, pair := range idx.MustPairs[stu.ID] {
			if _, done := assigned[stu.ID]; done {
				break
			}
			if otherAt, placed := assigned[pair.Other]; placed {
				pool.each(func(seat *model.Seat) bool {
					c := Coord{Row: seat.Row, Col: seat.Col}
					if Manhattan(c, otherAt) <= pair.Distance && idx.Feasible(stu.ID, seat, assigned, required) {
						assigned[stu.ID] = c
						pool.take(c)
						return false
					}
					return true
				})
				continue
			}
			other, known := byID[pair.Other]
			if !known {
				continue
			}
			st.placePairTogether(idx, stu.ID, other.ID, pair.Distance, pool, assigned, required)
		}
	}
}

// placePairTogether seats two unplaced partners: each free anchor seat
// feasible for the subject is probed against the diamond of cells
// within dist for a free, feasible seat for the partner.
func (st *State) placePairTogether(idx *Index, subject, partner uint64, dist int, pool *seatPool, assigned map[uint64]Coord, required map[uint64]uint64) {
	pool.each(func(anchor *model.Seat) bool {
		ac := Coord{Row: anchor.Row, Col: anchor.Col}
		if !idx.Feasible(subject, anchor, assigned, required) {
			return true
		}
		for dr := -dist; dr <= dist; dr++ {
			for dc := -dist; dc <= dist; dc++ {
				if abs(dr)+abs(dc) > dist || (dr == 0 && dc == 0) {
					continue
				}
				nc := Coord{Row: anchor.Row + dr, Col: anchor.Col + dc}
				if !pool.isFree(nc) {
					continue
				}
				neighbor := st.SeatAt(nc)
				if neighbor == nil || !idx.Feasible(partner, neighbor, assigned, required) {
					continue
				}
				assigned[subject] = ac
				assigned[partner] = nc
				pool.take(ac)
				pool.take(nc)
				return false
			}
		}
		return true
	})
}

// arrangeGrouped buckets the roster into seat groups and reuses the
// standard machinery with a required-group plan layered into the
// feasibility predicate.
func (st *State) arrangeGrouped(method Method) error {
	groups := st.GroupList()
	if len(groups) == 0 {
		return ErrNoGroups
	}
	groupSeats := 0
	for _, g := range groups {
		groupSeats += len(st.GroupSeats(g.ID))
	}
	if groupSeats == 0 {
		return ErrNoGroups
	}
	seats := st.SeatCells()
	if len(seats) < len(st.Students) {
		return ErrNotEnoughSeats
	}

	sorted := append([]*model.Student(nil), st.Roster()...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})

	var plan map[uint64]uint64
	var ordered []*model.Student
	switch method {
	case MethodGroupBalanced:
		plan, ordered = bucketBalanced(sorted, groups)
	case MethodGroupMentor:
		plan, ordered = bucketMentor(sorted, groups)
	default:
		return ErrUnknownMethod
	}
	st.ArrangeWithPlan(ordered, plan)
	return nil
}

// ArrangeWithPlan runs the standard machinery under a required-group
// map (student id -> group id).  This is the hook point for any
// pre-arrangement grouping step: whether the plan came from the
// built-in bucketing or an external clusterer, the placement semantics
// are identical.
func (st *State) ArrangeWithPlan(ordered []*model.Student, plan map[uint64]uint64) {
	st.arrangeStandard(ordered, st.SeatCells(), plan)
}

// bucketBalanced assigns each student (best score first) to the group
// whose bucket currently has the lowest running average.
func bucketBalanced(sorted []*model.Student, groups []*model.SeatGroup) (map[uint64]uint64, []*model.Student) {
	sums := make(map[uint64]float64, len(groups))
	counts := make(map[uint64]int, len(groups))
	plan := make(map[uint64]uint64, len(sorted))
	for _, stu := range sorted {
		var best *model.SeatGroup
		bestAvg := 0.0
		for _, g := range groups {
			n := counts[g.ID]
			if n == 0 {
				n = 1
			}
			avg := sums[g.ID] / float64(n)
			if best == nil || avg < bestAvg {
				best, bestAvg = g, avg
			}
		}
		plan[stu.ID] = best.ID
		sums[best.ID] += stu.Score
		counts[best.ID]++
	}
	return plan, sorted
}

// bucketMentor pairs the highest and lowest remaining scores, then
// hands pairs out by descending pair sum to the group with the lowest
// running sum (greedy partition).
func bucketMentor(sorted []*model.Student, groups []*model.SeatGroup) (map[uint64]uint64, []*model.Student) {
	type pair struct {
		members []*model.Student
		sum     float64
	}
	var pairs []pair
	lo, hi := 0, len(sorted)-1
	for lo <= hi {
		if lo == hi {
			pairs = append(pairs, pair{members: []*model.Student{sorted[lo]}, sum: sorted[lo].Score})
		} else {
			pairs = append(pairs, pair{
				members: []*model.Student{sorted[lo], sorted[hi]},
				sum:     sorted[lo].Score + sorted[hi].Score,
			})
		}
		lo++
		hi--
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].sum > pairs[j].sum })

	sums := make(map[uint64]float64, len(groups))
	plan := make(map[uint64]uint64, len(sorted))
	var ordered []*model.Student
	for _, p := range pairs {
		var best *model.SeatGroup
		for _, g := range groups {
			if best == nil || sums[g.ID] < sums[best.ID] {
				best = g
			}
		}
		for _, m := range p.members {
			plan[m.ID] = best.ID
			ordered = append(ordered, m)
		}
		sums[best.ID] += p.sum
	}
	return plan, ordered
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
