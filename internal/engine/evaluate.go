package engine

import (
	"fmt"
	"sort"

	"github.com/iliyamo/classroom-seat-planner/internal/model"
)

// Violation describes one broken placement rule in the current layout.
// ConstraintID is zero for the roster-level unseated check.
type Violation struct {
	ConstraintID uint64               `json:"constraint_id,omitempty"`
	Type         model.ConstraintType `json:"type,omitempty"`
	StudentID    uint64               `json:"student_id,omitempty"`
	TargetID     uint64               `json:"target_id,omitempty"`
	Message      string               `json:"message"`
}

// UnseatedCount returns how many roster members hold no seat.
func (st *State) UnseatedCount() int {
	n := 0
	for id := range st.Students {
		if _, seated := st.occupant[id]; !seated {
			n++
		}
	}
	return n
}

// Evaluate re-walks every enabled constraint against the current
// occupancy (not the incremental index) and reports each break.  This
// deliberately catches the pair violations the order-dependent
// feasibility predicate can miss during placement.
func (st *State) Evaluate() []Violation {
	var out []Violation
	for _, c := range st.Constraints {
		if !c.Enabled {
			continue
		}
		stu, known := st.Students[c.StudentID]
		if !known {
			continue
		}
		seat, seated := st.SeatOf(c.StudentID)
		switch c.Type {
		case model.MustSeat:
			if !seated || seat.Row != c.Row || seat.Col != c.Col {
				out = append(out, violation(c, "%s is not in their required seat (%d,%d)", stu.Name, c.Row, c.Col))
			}
		case model.ForbidSeat:
			if seated && seat.Row == c.Row && seat.Col == c.Col {
				out = append(out, violation(c, "%s is sitting in forbidden seat (%d,%d)", stu.Name, c.Row, c.Col))
			}
		case model.MustRow:
			if !seated || seat.Row != c.Row {
				out = append(out, violation(c, "%s is not in required row %d", stu.Name, c.Row))
			}
		case model.ForbidRow:
			if seated && seat.Row == c.Row {
				out = append(out, violation(c, "%s is sitting in forbidden row %d", stu.Name, c.Row))
			}
		case model.MustCol:
			if !seated || seat.Col != c.Col {
				out = append(out, violation(c, "%s is not in required column %d", stu.Name, c.Col))
			}
		case model.ForbidCol:
			if seated && seat.Col == c.Col {
				out = append(out, violation(c, "%s is sitting in forbidden column %d", stu.Name, c.Col))
			}
		case model.MustTogether, model.ForbidTogether:
			target, ok := st.Students[c.TargetID]
			if !ok {
				continue
			}
			seatB, seatedB := st.SeatOf(c.TargetID)
			if !seated || !seatedB {
				out = append(out, violation(c, "%s and %s are not both seated", stu.Name, target.Name))
				continue
			}
			d := Manhattan(Coord{seat.Row, seat.Col}, Coord{seatB.Row, seatB.Col})
			if c.Type == model.MustTogether && d > c.Distance {
				out = append(out, violation(c, "%s and %s are farther apart than %d", stu.Name, target.Name, c.Distance))
			}
			if c.Type == model.ForbidTogether && d <= c.Distance {
				out = append(out, violation(c, "%s and %s are too close together", stu.Name, target.Name))
			}
		}
	}
	return out
}

func violation(c model.SeatConstraint, format string, args ...any) Violation {
	return Violation{
		ConstraintID: c.ID,
		Type:         c.Type,
		StudentID:    c.StudentID,
		TargetID:     c.TargetID,
		Message:      fmt.Sprintf(format, args...),
	}
}

// BalanceSwap is a suggested exchange of two students that narrows the
// score-average gap between the strongest and weakest group.
type BalanceSwap struct {
	HighStudentID uint64  `json:"high_student_id"`
	LowStudentID  uint64  `json:"low_student_id"`
	GapBefore     float64 `json:"gap_before"`
	GapAfter      float64 `json:"gap_after"`
	Message       string  `json:"message"`
}

// balanceGapThreshold and balanceMinImprovement gate the suggestion:
// the average gap must exceed the threshold and a candidate swap must
// improve it by more than the minimum to be worth surfacing.
const (
	balanceGapThreshold   = 5.0
	balanceMinImprovement = 1.0
)

// SuggestBalanceSwap inspects group score averages and proposes the
// best single high/low swap between the extreme groups, or nil when the
// groups are already balanced enough.
func (st *State) SuggestBalanceSwap() *BalanceSwap {
	type groupStat struct {
		group    *model.SeatGroup
		students []*model.Student
		sum      float64
	}
	var stats []groupStat
	for _, g := range st.GroupList() {
		gs := groupStat{group: g}
		for _, seat := range st.GroupSeats(g.ID) {
			if seat.StudentID == 0 {
				continue
			}
			if stu, ok := st.Students[seat.StudentID]; ok {
				gs.students = append(gs.students, stu)
				gs.sum += stu.Score
			}
		}
		if len(gs.students) > 0 {
			stats = append(stats, gs)
		}
	}
	if len(stats) < 2 {
		return nil
	}
	avg := func(g groupStat) float64 { return g.sum / float64(len(g.students)) }
	sort.SliceStable(stats, func(i, j int) bool { return avg(stats[i]) < avg(stats[j]) })
	minG, maxG := stats[0], stats[len(stats)-1]
	gap := avg(maxG) - avg(minG)
	if gap <= balanceGapThreshold {
		return nil
	}

	var best *BalanceSwap
	bestImprovement := 0.0
	for _, high := range maxG.students {
		for _, low := range minG.students {
			diff := high.Score - low.Score
			if diff <= 0 {
				continue
			}
			newMaxAvg := (maxG.sum - diff) / float64(len(maxG.students))
			newMinAvg := (minG.sum + diff) / float64(len(minG.students))
			newGap := newMaxAvg - newMinAvg
			if newGap < 0 {
				newGap = -newGap
			}
			improvement := gap - newGap
			if improvement > balanceMinImprovement && improvement > bestImprovement {
				bestImprovement = improvement
				best = &BalanceSwap{
					HighStudentID: high.ID,
					LowStudentID:  low.ID,
					GapBefore:     gap,
					GapAfter:      newGap,
					Message: fmt.Sprintf("swap %s and %s to balance group averages (gap %.1f -> %.1f)",
						high.Name, low.Name, gap, newGap),
				}
			}
		}
	}
	return best
}
