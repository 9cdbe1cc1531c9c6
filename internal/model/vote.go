package model

import "time"

// Vote is one row of the vote ledger. At most one vote exists per
// (UserID, CategoryID); the storage layer enforces this with a unique
// constraint. Votes are immutable once created.
type Vote struct {
	ID         uint64
	UserID     uint64
	CategoryID int
	NomineeID  int
	CreatedAt  time.Time
}

// TallyRow is one aggregate line of a category result.
type TallyRow struct {
	NomineeID int `json:"nominee_id"`
	Votes     int `json:"votes"`
}

// VotingConfig is the singleton open/closed gate with audit fields.
type VotingConfig struct {
	Active    bool
	UpdatedBy string
	UpdatedAt time.Time
}
