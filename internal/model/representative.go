package model

import (
	"database/sql"

	"github.com/google/uuid"
)

// Representative is a long-lived reference entity populated by a
// separate ingestion process. The sync engine only reads it to map
// bioguide ids onto internal rep ids.
type Representative struct {
	RepID      uuid.UUID
	BioguideID string
	FullName   string
	Party      sql.NullString
	PhotoURL   sql.NullString
	Chamber    sql.NullString
	State      sql.NullString
	District   sql.NullString
}
