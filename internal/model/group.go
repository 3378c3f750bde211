package model

// SeatGroup names a partition of a classroom's seat cells.  A group may
// designate one of its seated students as leader; the invariant is that
// the leader, when set, occupies a seat currently belonging to the
// group.  Any edit that breaks this clears LeaderID (see engine
// NormalizeLeaders).
type SeatGroup struct {
	ID          uint64 // seat_groups.id
	ClassroomID uint64 // seat_groups.classroom_id
	Name        string // seat_groups.name, unique per classroom
	LeaderID    uint64 // seat_groups.leader_id, 0 = no leader
	Order       int    // seat_groups.sort_order, display ordering
}
