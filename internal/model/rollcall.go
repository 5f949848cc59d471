package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Recognized legislative chambers. Roll calls from any other chamber
// value are filtered out during sync.
const (
	ChamberHouse  = "House"
	ChamberSenate = "Senate"
)

// RollCall represents one recorded floor vote event
type RollCall struct {
	ID             int64
	Congress       int
	SessionNumber  int
	Chamber        string
	RollCallNumber int
	VoteTimestamp  time.Time
	QuestionText   sql.NullString
	Description    sql.NullString
	Result         sql.NullString
	BillID         sql.NullInt64
	CreatedAt      time.Time
}

// Key returns the composite natural key, e.g. "118-1-House-17"
func (rc *RollCall) Key() string {
	return fmt.Sprintf("%d-%d-%s-%d", rc.Congress, rc.SessionNumber, rc.Chamber, rc.RollCallNumber)
}

// RecognizedChamber reports whether chamber is one of the two chambers
// tracked by the store.
func RecognizedChamber(chamber string) bool {
	return chamber == ChamberHouse || chamber == ChamberSenate
}
