// Package queue defines message payloads exchanged over the message broker.
package queue

// LayoutArrangedEvent is published when a classroom arrangement commits.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type LayoutArrangedEvent struct {
	ClassroomID   uint64 `json:"classroom_id"`
	ClassroomName string `json:"classroom_name"`
	UserID        uint64 `json:"user_id"`
	Method        string `json:"method"`
	AutoFixed     bool   `json:"auto_fixed"` // the retry ladder rescued this arrangement
	Students      int    `json:"students"`
	Violations    int    `json:"violations"` // residual accepted violations, normally 0
	ArrangedAt    string `json:"arranged_at"`
}
