/*
Package history provides an ambient SQLite journal of decision and feedback
activity, with a non-blocking background tracker feeding it.

The journal is observability only: the JSON swarm memory remains the single
authoritative store, and a missing or broken journal database never affects
decisions (graceful degradation).

The database lives at ~/.quitswarm/history.db and uses modernc.org/sqlite
(a pure Go, CGo-free implementation).
*/
package history

import "time"

// Event kinds stored in the journal.
const (
	KindDecision = "decision"
	KindFeedback = "feedback"
)

// Event is one journal entry: either a decision or a feedback submission.
type Event struct {
	// Kind is KindDecision or KindFeedback.
	Kind string `json:"kind"`

	// CaseID references the swarm memory case.
	CaseID string `json:"case_id"`

	// Timestamp is when the event happened.
	Timestamp time.Time `json:"timestamp"`

	// AggregateScore is set for decision events.
	AggregateScore int `json:"aggregate_score"`

	// Recommendation is set for decision events.
	Recommendation string `json:"recommendation"`

	// DidUserQuit is set for feedback events.
	DidUserQuit bool `json:"did_user_quit"`

	// WasSuccessful is set for feedback events.
	WasSuccessful bool `json:"was_successful"`
}
