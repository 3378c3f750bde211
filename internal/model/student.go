package model

// Student is a member of a classroom roster.  Score drives the ordering
// heuristics of the arranger (score_desc, score_spread, mentor pairing)
// and the group balance suggestion.
//
// Fields:
//  ID          – primary key identifier.
//  ClassroomID – owning classroom.
//  Name        – display name.
//  StudentNo   – optional school-issued student number.
//  Gender      – optional, "M" or "F", empty when unknown.
//  Score       – numeric score used for ordering, 0 when unset.
type Student struct {
	ID          uint64  // students.id
	ClassroomID uint64  // students.classroom_id
	Name        string  // students.name
	StudentNo   string  // students.student_no
	Gender      string  // students.gender
	Score       float64 // students.score
}
