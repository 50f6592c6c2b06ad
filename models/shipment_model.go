package models

import (
	"time"

	"timber-portal/controllers/idgen"
	"timber-portal/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ShipmentStatusDraft    = "draft"
	ShipmentStatusPending  = "pending"
	ShipmentStatusAccepted = "accepted"
	ShipmentStatusRejected = "rejected"
)

type Shipment struct {
	gorm.Model
	ID                 types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	Code               string            `json:"code" gorm:"uniqueIndex;not null"`
	FromOrganisationID types.SnowflakeID `json:"from_organisation_id" gorm:"index;not null"`
	ToOrganisationID   types.SnowflakeID `json:"to_organisation_id" gorm:"index;not null"`
	Status             string            `json:"status" gorm:"default:draft"`
	// Optional flat transport cost; no further costing logic exists.
	TransportCost   decimal.NullDecimal `json:"transport_cost" gorm:"type:decimal(12,2)"`
	Notes           string              `json:"notes"`
	SubmittedAt     *time.Time          `json:"submitted_at"`
	ReviewedAt      *time.Time          `json:"reviewed_at"`
	RejectionReason string              `json:"rejection_reason"`
	CreatedBy       int
	UpdatedBy       int
	DeletedBy       int
}

func (s *Shipment) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == 0 {
		s.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
