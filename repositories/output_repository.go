package repositories

import (
	"timber-portal/models"
	"timber-portal/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OutputRepository persists the producer's staged output rows for a draft
// entry. The client always submits the complete desired list; the
// repository diffs it against what is stored and only touches what changed,
// so re-submitting an unchanged list is a no-op.
type OutputRepository struct {
	db *gorm.DB
}

func NewOutputRepository(db *gorm.DB) *OutputRepository {
	return &OutputRepository{db}
}

// OutputRowInput is one desired output row as submitted by the client.
// ID is nil for rows the client created since the last save.
type OutputRowInput struct {
	ID            *types.SnowflakeID `json:"ID"`
	PackageNumber string             `json:"package_number"`
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
	Pieces        int                `json:"pieces"`
	VolumeM3      decimal.Decimal    `json:"volume_m3"`
}

type indexedOutputRow struct {
	Index int
	Row   OutputRowInput
}

// outputDiff is the persistence plan computed from one desired-state list.
type outputDiff struct {
	Inserts   []indexedOutputRow
	Updates   []models.ProductionOutput
	DeleteIDs []types.SnowflakeID
}

func idEqual(a, b *types.SnowflakeID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func rowChanged(row OutputRowInput, sortOrder int, existing models.ProductionOutput) bool {
	switch {
	case row.PackageNumber != existing.PackageNumber,
		!idEqual(row.ProductNameID, existing.ProductNameID),
		!idEqual(row.WoodSpeciesID, existing.WoodSpeciesID),
		!idEqual(row.HumidityID, existing.HumidityID),
		!idEqual(row.TypeID, existing.TypeID),
		!idEqual(row.ProcessingID, existing.ProcessingID),
		!idEqual(row.FscID, existing.FscID),
		!idEqual(row.QualityID, existing.QualityID),
		row.Thickness != existing.Thickness,
		row.Width != existing.Width,
		row.Length != existing.Length,
		row.Pieces != existing.Pieces,
		!row.VolumeM3.Equal(existing.VolumeM3),
		sortOrder != existing.SortOrder:
		return true
	}
	return false
}

// diffOutputRows compares the submitted desired-state list against the
// persisted rows. Rows without an id insert; persisted rows missing from
// the list delete; matched rows update only when a field differs.
func diffOutputRows(existing []models.ProductionOutput, desired []OutputRowInput) outputDiff {
	existingByID := make(map[types.SnowflakeID]models.ProductionOutput, len(existing))
	for _, row := range existing {
		existingByID[row.ID] = row
	}

	submittedIDs := make(map[types.SnowflakeID]bool, len(desired))
	var diff outputDiff

	for i, row := range desired {
		if row.ID == nil || *row.ID == 0 {
			diff.Inserts = append(diff.Inserts, indexedOutputRow{Index: i, Row: row})
			continue
		}
		submittedIDs[*row.ID] = true

		persisted, ok := existingByID[*row.ID]
		if !ok {
			// stale client id, treat as a new row
			diff.Inserts = append(diff.Inserts, indexedOutputRow{Index: i, Row: row})
			continue
		}
		if rowChanged(row, i, persisted) {
			persisted.PackageNumber = row.PackageNumber
			persisted.ProductNameID = row.ProductNameID
			persisted.WoodSpeciesID = row.WoodSpeciesID
			persisted.HumidityID = row.HumidityID
			persisted.TypeID = row.TypeID
			persisted.ProcessingID = row.ProcessingID
			persisted.FscID = row.FscID
			persisted.QualityID = row.QualityID
			persisted.Thickness = row.Thickness
			persisted.Width = row.Width
			persisted.Length = row.Length
			persisted.Pieces = row.Pieces
			persisted.VolumeM3 = row.VolumeM3
			persisted.SortOrder = i
			diff.Updates = append(diff.Updates, persisted)
		}
	}

	for _, row := range existing {
		if !submittedIDs[row.ID] {
			diff.DeleteIDs = append(diff.DeleteIDs, row.ID)
		}
	}

	return diff
}

// SaveOutputs reconciles the submitted list against the stored rows of a
// draft entry and returns the ids of inserted rows keyed by their position
// in the submitted list.
func (r *OutputRepository) SaveOutputs(actor models.Actor, entryID types.SnowflakeID, rows []OutputRowInput) (map[int]types.SnowflakeID, error) {
	insertedIDs := make(map[int]types.SnowflakeID)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		entry, err := lockDraftEntry(tx, actor, entryID)
		if err != nil {
			return err
		}

		var existing []models.ProductionOutput
		if err := tx.Where("production_entry_id = ?", entry.ID).Find(&existing).Error; err != nil {
			return err
		}

		diff := diffOutputRows(existing, rows)

		if len(diff.DeleteIDs) > 0 {
			if err := tx.Unscoped().
				Where("id IN ?", diff.DeleteIDs).
				Delete(&models.ProductionOutput{}).Error; err != nil {
				return err
			}
		}

		for _, ins := range diff.Inserts {
			output := models.ProductionOutput{
				ProductionEntryID: entry.ID,
				PackageNumber:     ins.Row.PackageNumber,
				ProductNameID:     ins.Row.ProductNameID,
				WoodSpeciesID:     ins.Row.WoodSpeciesID,
				HumidityID:        ins.Row.HumidityID,
				TypeID:            ins.Row.TypeID,
				ProcessingID:      ins.Row.ProcessingID,
				FscID:             ins.Row.FscID,
				QualityID:         ins.Row.QualityID,
				Thickness:         ins.Row.Thickness,
				Width:             ins.Row.Width,
				Length:            ins.Row.Length,
				Pieces:            ins.Row.Pieces,
				VolumeM3:          ins.Row.VolumeM3,
				SortOrder:         ins.Index,
				CreatedBy:         int(actor.UserID),
				UpdatedBy:         int(actor.UserID),
			}
			if err := tx.Create(&output).Error; err != nil {
				return err
			}
			insertedIDs[ins.Index] = output.ID
		}

		for i := range diff.Updates {
			diff.Updates[i].UpdatedBy = int(actor.UserID)
			if err := tx.Save(&diff.Updates[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return insertedIDs, nil
}
