package models

import (
	"timber-portal/controllers/idgen"
	"timber-portal/types"

	"gorm.io/gorm"
)

// Reference tables the portal exposes as option lists. "process" options
// additionally carry the category code used to scope package numbering.
const (
	RefTableProcess     = "process"
	RefTableProductName = "product_name"
	RefTableWoodSpecies = "wood_species"
	RefTableHumidity    = "humidity"
	RefTableType        = "type"
	RefTableProcessing  = "processing"
	RefTableFsc         = "fsc"
	RefTableQuality     = "quality"
)

type ReferenceOption struct {
	gorm.Model
	ID        types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	TableName string            `json:"table_name" gorm:"index;not null" validate:"required"`
	// Code is filled for process options only, e.g. "CA" for Calibrating.
	Code      string `json:"code" gorm:"size:8"`
	Value     string `json:"value" gorm:"not null" validate:"required"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	CreatedBy int
	UpdatedBy int
	DeletedBy int
}

func (r *ReferenceOption) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == 0 {
		r.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
