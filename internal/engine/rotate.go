package engine

import "github.com/iliyamo/classroom-seat-planner/internal/model"

// RotateGroups shifts every group's occupants into the next group's
// seats (last wraps to first), matching seats positionally in row-major
// order.  All groups must hold the same number of seats, otherwise a
// positional mapping does not exist and ErrSeatCountsDiffer is
// returned.  The returned action restores the previous layout when
// replayed inverted.
func (st *State) RotateGroups() (model.Action, error) {
	groups := st.GroupList()
	if len(groups) < 2 {
		return model.Action{}, ErrNoGroups
	}

	seatsByGroup := make([][]*model.Seat, len(groups))
	for i, g := range groups {
		seatsByGroup[i] = st.GroupSeats(g.ID)
	}
	want := len(seatsByGroup[0])
	for _, seats := range seatsByGroup[1:] {
		if len(seats) != want {
			return model.Action{}, ErrSeatCountsDiffer
		}
	}

	var items []model.LayoutItem
	for i, seats := range seatsByGroup {
		dest := seatsByGroup[(i+1)%len(groups)]
		for j, src := range seats {
			items = append(items, model.LayoutItem{
				Row:             dest[j].Row,
				Col:             dest[j].Col,
				BeforeStudentID: dest[j].StudentID,
				AfterStudentID:  src.StudentID,
				BeforeGroupID:   dest[j].GroupID,
				AfterGroupID:    dest[j].GroupID,
			})
		}
	}

	action := model.Action{Kind: model.ActionSeatLayout, SeatLayout: items}
	st.ApplyAction(action)
	return action, nil
}
