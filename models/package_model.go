package models

import (
	"timber-portal/controllers/idgen"
	"timber-portal/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PackageStatusAvailable = "available"
	PackageStatusProduced  = "produced"
	PackageStatusConsumed  = "consumed"
)

// InventoryPackage is one physical bundle of timber: a piece count plus a
// measured volume, owned by exactly one organisation. Quantities only move
// through the ledger operations; CurrentShipmentID is the compare-and-set
// target that keeps a package on at most one open shipment.
type InventoryPackage struct {
	gorm.Model
	ID             types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	PackageNumber  string            `json:"package_number" gorm:"uniqueIndex;not null"`
	OrganisationID types.SnowflakeID `json:"organisation_id" gorm:"index;not null"`
	Status         string            `json:"status" gorm:"default:available"`
	Pieces         int               `json:"pieces" gorm:"default:0"`
	VolumeM3       decimal.Decimal   `json:"volume_m3" gorm:"type:decimal(12,3);default:0"`

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

	// Lineage: the production entry that created the package and/or the
	// accepted shipment that brought it into the owning organisation.
	ProductionEntryID *types.SnowflakeID `json:"production_entry_id" gorm:"index"`
	OriginShipmentID  *types.SnowflakeID `json:"origin_shipment_id" gorm:"index"`

	CurrentShipmentID *types.SnowflakeID `json:"current_shipment_id" gorm:"index"`

	CreatedBy int
	UpdatedBy int
	DeletedBy int
}

func (p *InventoryPackage) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == 0 {
		p.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
