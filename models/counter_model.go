package models

import (
	"time"

	"timber-portal/types"
)

// PackageCounter holds the last issued package sequence per
// (organisation, process code) scope. Incremented only through the
// conditional update in the counter repository.
type PackageCounter struct {
	ID             uint              `json:"ID" gorm:"primaryKey"`
	OrganisationID types.SnowflakeID `json:"organisation_id" gorm:"uniqueIndex:idx_counter_scope;not null"`
	ProcessCode    string            `json:"process_code" gorm:"uniqueIndex:idx_counter_scope;size:8;not null"`
	LastSequence   int               `json:"last_sequence" gorm:"default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
