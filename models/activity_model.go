package models

import (
	"time"

	"timber-portal/controllers/idgen"

	"gorm.io/gorm"
)

// ActivityLog is the audit trail of ledger transitions: validations,
// reverts, shipment submissions and reviews.
type ActivityLog struct {
	ID        int64  `json:"ID" gorm:"primaryKey"`
	RefNo     string `json:"ref_no"`
	Action    string `json:"action"`
	Detail    string `json:"detail"`
	CreatedAt time.Time
	CreatedBy int
	UpdatedAt time.Time
	UpdatedBy int
	DeletedAt gorm.DeletedAt
	DeletedBy int
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == 0 {
		a.ID = idgen.GenerateID()
	}
	return
}
