package model

import "time"

// FeedItem is the flat projection returned by the feed endpoint,
// shaped for the mobile client.
type FeedItem struct {
	VotePositionID int64              `json:"vote_position_id"`
	Position       Position           `json:"position"`
	Representative FeedRepresentative `json:"representative"`
	RollCall       FeedRollCall       `json:"roll_call"`
	Bill           *FeedBill          `json:"bill"`
}

// FeedRepresentative summarizes the voting representative
type FeedRepresentative struct {
	RepID    string  `json:"rep_id"`
	FullName string  `json:"full_name"`
	Party    *string `json:"party"`
	PhotoURL *string `json:"photo_url"`
	Chamber  *string `json:"chamber"`
	State    *string `json:"state"`
	District *string `json:"district"`
}

// FeedRollCall summarizes the vote event
type FeedRollCall struct {
	RollCallID    int64     `json:"roll_call_id"`
	VoteTimestamp time.Time `json:"vote_timestamp"`
	Question      *string   `json:"question"`
	Description   *string   `json:"description"`
	Result        *string   `json:"result"`
}

// FeedBill summarizes the bill a roll call was about, when there is one.
// Number is a display string such as "HR. 1234".
type FeedBill struct {
	BillID int64   `json:"bill_id"`
	Title  *string `json:"title"`
	Number *string `json:"number"`
}
