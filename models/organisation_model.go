package models

import (
	"timber-portal/controllers/idgen"
	"timber-portal/types"

	"gorm.io/gorm"
)

type Organisation struct {
	gorm.Model
	ID   types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	Code string            `json:"code" gorm:"unique;not null" validate:"required"`
	Name string            `json:"name" gorm:"not null" validate:"required"`
	// Prefix leads every package number issued for this organisation, e.g. "N" in N-CA-0011.
	Prefix       string `json:"prefix" gorm:"size:8;not null" validate:"required"`
	ContactEmail string `json:"contact_email"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	CreatedBy    int
	UpdatedBy    int
	DeletedBy    int
}

func (o *Organisation) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == 0 {
		o.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
