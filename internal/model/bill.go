package model

import (
	"database/sql"
	"fmt"
	"time"
)

// Bill represents the current state of a congressional bill
type Bill struct {
	ID               int64
	Congress         int
	BillType         string
	BillNumber       int
	Title            string
	LatestActionText sql.NullString
	LatestActionDate sql.NullTime
	PolicyArea       sql.NullString
	SourceURL        sql.NullString
	LastFetchedAt    time.Time
	CreatedAt        time.Time
}

// Key returns the composite natural key, e.g. "118-hr-42"
func (b *Bill) Key() string {
	return BillKey(b.Congress, b.BillType, b.BillNumber)
}

// BillKey builds the composite key used to resolve bill references
func BillKey(congress int, billType string, billNumber int) string {
	return fmt.Sprintf("%d-%s-%d", congress, billType, billNumber)
}
