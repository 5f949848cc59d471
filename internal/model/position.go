package model

import (
	"time"

	"github.com/google/uuid"
)

// Position is a representative's recorded stance on a roll call.
// Only the four enumerated values are ever stored; upstream values
// outside the set are dropped during sync.
type Position string

const (
	PositionYea       Position = "Yea"
	PositionNay       Position = "Nay"
	PositionPresent   Position = "Present"
	PositionNotVoting Position = "Not Voting"
)

// positionAliases maps upstream position strings to the stored enum.
// The House API uses "Aye"/"No" for voice-style questions.
var positionAliases = map[string]Position{
	"Yea":        PositionYea,
	"Aye":        PositionYea,
	"Nay":        PositionNay,
	"No":         PositionNay,
	"Present":    PositionPresent,
	"Not Voting": PositionNotVoting,
}

// ParsePosition maps an upstream position value to the stored enum.
// The second return is false for unrecognized values.
func ParsePosition(raw string) (Position, bool) {
	p, ok := positionAliases[raw]
	return p, ok
}

// VotePosition is one representative's recorded stance on one roll call
type VotePosition struct {
	ID         int64
	RollCallID int64
	RepID      uuid.UUID
	Position   Position
	CreatedAt  time.Time
}
