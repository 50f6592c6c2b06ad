package models

import (
	"time"

	"timber-portal/controllers/idgen"
	"timber-portal/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ProductionStatusDraft     = "draft"
	ProductionStatusValidated = "validated"
)

type ProductionEntry struct {
	gorm.Model
	ID             types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	OrganisationID types.SnowflakeID `json:"organisation_id" gorm:"index;not null"`
	ProcessID      types.SnowflakeID `json:"process_id" gorm:"index;not null"`
	ProductionDate string            `json:"production_date"`
	Status         string            `json:"status" gorm:"default:draft"`
	Notes          string            `json:"notes"`

	TotalInputM3      decimal.NullDecimal `json:"total_input_m3" gorm:"type:decimal(12,3)"`
	TotalOutputM3     decimal.NullDecimal `json:"total_output_m3" gorm:"type:decimal(12,3)"`
	OutcomePercentage decimal.NullDecimal `json:"outcome_percentage" gorm:"type:decimal(5,1)"`
	WastePercentage   decimal.NullDecimal `json:"waste_percentage" gorm:"type:decimal(5,1)"`
	ValidatedAt       *time.Time          `json:"validated_at"`

	CreatedBy int
	UpdatedBy int
	DeletedBy int
}

func (e *ProductionEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == 0 {
		e.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

// ProductionInput links an entry to a source package with the pieces/volume
// snapshot fixed when the producer selected the package. The snapshot is
// what gets reserved at validation and restored on revert, never re-derived.
type ProductionInput struct {
	gorm.Model
	ID                types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	ProductionEntryID types.SnowflakeID `json:"production_entry_id" gorm:"index;not null"`
	PackageID         types.SnowflakeID `json:"package_id" gorm:"index;not null"`
	PiecesUsed        int               `json:"pieces_used"`
	VolumeUsedM3      decimal.Decimal   `json:"volume_used_m3" gorm:"type:decimal(12,3);default:0"`
	// PriorStatus is recorded by validate() so revert() can put the source
	// package back exactly as it was.
	PriorStatus string `json:"prior_status" gorm:"size:16"`
	CreatedBy   int
	UpdatedBy   int
	DeletedBy   int
}

func (i *ProductionInput) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == 0 {
		i.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

// ProductionOutput is a staged output row of a draft entry. PackageNumber
// holds a client-side placeholder until validation assigns the real number
// and fills CreatedPackageID.
type ProductionOutput struct {
	gorm.Model
	ID                types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	ProductionEntryID types.SnowflakeID `json:"production_entry_id" gorm:"index;not null"`
	PackageNumber     string            `json:"package_number"`

	ProductNameID *types.SnowflakeID `json:"product_name_id"`
	WoodSpeciesID *types.SnowflakeID `json:"wood_species_id"`
	HumidityID    *types.SnowflakeID `json:"humidity_id"`
	TypeID        *types.SnowflakeID `json:"type_id"`
	ProcessingID  *types.SnowflakeID `json:"processing_id"`
	FscID         *types.SnowflakeID `json:"fsc_id"`
	QualityID     *types.SnowflakeID `json:"quality_id"`
	Thickness     string             `json:"thickness"`
	Width         string             `json:"width"`
	Length        string             `json:"length"`

	Pieces    int             `json:"pieces" gorm:"default:0"`
	VolumeM3  decimal.Decimal `json:"volume_m3" gorm:"type:decimal(12,3);default:0"`
	SortOrder int             `json:"sort_order" gorm:"default:0"`

	CreatedPackageID *types.SnowflakeID `json:"created_package_id"`

	CreatedBy int
	UpdatedBy int
	DeletedBy int
}

func (o *ProductionOutput) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == 0 {
		o.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
