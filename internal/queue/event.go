// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// VoteCastEvent is published after a vote is accepted by the ledger. It
// carries enough context for audit logging and live analytics without a
// database round-trip. Publication is best-effort: a broker outage never
// affects the outcome of the cast itself.
type VoteCastEvent struct {
	EventID       string `json:"event_id"`
	UserID        uint64 `json:"user_id"`
	CategoryID    int    `json:"category_id"`
	CategoryTitle string `json:"category_title"`
	NomineeID     int    `json:"nominee_id"`
	NomineeName   string `json:"nominee_name"`
	CastAt        string `json:"cast_at"`
}
