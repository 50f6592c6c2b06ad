package repositories

import (
	"errors"
	"fmt"
	"time"

	"timber-portal/models"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductionRepository drives the draft → validated state machine of a
// production entry. Validation consumes the recorded inputs and mints the
// output packages in one transaction; revert is the exact compensation.
type ProductionRepository struct {
	db *gorm.DB
}

func NewProductionRepository(db *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db}
}

var oneHundred = decimal.NewFromInt(100)

// computePercentages derives outcome/waste from the volume totals. Both are
// rounded half away from zero to one decimal from the unrounded ratio, so
// 93.75 becomes 93.8 and its complement 6.25 becomes 6.3.
func computePercentages(totalInput, totalOutput decimal.Decimal) (outcome, waste decimal.Decimal) {
	if totalInput.IsZero() {
		return decimal.Zero, oneHundred
	}
	ratio := totalOutput.Div(totalInput).Mul(oneHundred)
	return ratio.Round(1), oneHundred.Sub(ratio).Round(1)
}

func (r *ProductionRepository) CreateEntry(actor models.Actor, processID types.SnowflakeID, productionDate, notes string) (*models.ProductionEntry, error) {
	if !actor.IsProducer() {
		return nil, utils.NewForbiddenError("only producers create production entries")
	}

	var process models.ReferenceOption
	if err := r.db.First(&process, "id = ? AND table_name = ?", processID, models.RefTableProcess).Error; err != nil {
		return nil, utils.NewValidationError("unknown process")
	}

	entry := models.ProductionEntry{
		OrganisationID: actor.OrganisationID,
		ProcessID:      processID,
		ProductionDate: productionDate,
		Status:         models.ProductionStatusDraft,
		Notes:          notes,
		CreatedBy:      int(actor.UserID),
		UpdatedBy:      int(actor.UserID),
	}
	if err := r.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *ProductionRepository) GetEntry(actor models.Actor, entryID types.SnowflakeID) (*models.ProductionEntry, error) {
	var entry models.ProductionEntry
	if err := r.db.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("production entry not found")
		}
		return nil, err
	}
	if !actor.CanView(entry.OrganisationID) {
		return nil, utils.NewForbiddenError("entry belongs to another organisation")
	}
	return &entry, nil
}

func (r *ProductionRepository) ListEntries(actor models.Actor) ([]models.ProductionEntry, error) {
	q := r.db.Model(&models.ProductionEntry{}).Order("created_at desc")
	if !actor.IsSuperAdmin() {
		q = q.Where("organisation_id = ?", actor.OrganisationID)
	}
	var entries []models.ProductionEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ProductionRepository) ListInputs(entryID types.SnowflakeID) ([]models.ProductionInput, error) {
	var inputs []models.ProductionInput
	if err := r.db.Where("production_entry_id = ?", entryID).Order("id asc").Find(&inputs).Error; err != nil {
		return nil, err
	}
	return inputs, nil
}

func (r *ProductionRepository) ListOutputs(entryID types.SnowflakeID) ([]models.ProductionOutput, error) {
	var outputs []models.ProductionOutput
	if err := r.db.Where("production_entry_id = ?", entryID).Order("sort_order asc, id asc").Find(&outputs).Error; err != nil {
		return nil, err
	}
	return outputs, nil
}

// AddInput records a source package selection on a draft entry. The
// pieces/volume snapshot is fixed here; stock itself moves at validation.
// Availability is checked now for form feedback, but nothing is reserved,
// so a second draft can select the same stock; validation settles it.
func (r *ProductionRepository) AddInput(actor models.Actor, entryID, packageID types.SnowflakeID, piecesUsed int, volumeUsed decimal.Decimal) (*models.ProductionInput, error) {
	var input *models.ProductionInput

	err := r.db.Transaction(func(tx *gorm.DB) error {
		entry, err := lockDraftEntry(tx, actor, entryID)
		if err != nil {
			return err
		}

		var pkg models.InventoryPackage
		if err := tx.First(&pkg, "id = ?", packageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("package not found")
			}
			return err
		}
		if pkg.OrganisationID != entry.OrganisationID {
			return utils.NewForbiddenError("package belongs to another organisation")
		}
		if pkg.Status == models.PackageStatusConsumed {
			return utils.NewInvalidStateError("package is already consumed")
		}
		if piecesUsed < 0 || volumeUsed.IsNegative() {
			return utils.NewValidationError("selected quantities must not be negative")
		}
		if piecesUsed == 0 && volumeUsed.IsZero() {
			return utils.NewValidationError("nothing selected from package")
		}
		if piecesUsed > pkg.Pieces || volumeUsed.GreaterThan(pkg.VolumeM3) {
			return utils.NewInsufficientQuantityError(
				fmt.Sprintf("package %s holds %d pcs / %s m3", pkg.PackageNumber, pkg.Pieces, pkg.VolumeM3.StringFixed(3)))
		}

		input = &models.ProductionInput{
			ProductionEntryID: entry.ID,
			PackageID:         pkg.ID,
			PiecesUsed:        piecesUsed,
			VolumeUsedM3:      volumeUsed,
			CreatedBy:         int(actor.UserID),
			UpdatedBy:         int(actor.UserID),
		}
		return tx.Create(input).Error
	})
	if err != nil {
		return nil, err
	}
	return input, nil
}

func (r *ProductionRepository) RemoveInput(actor models.Actor, inputID types.SnowflakeID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var input models.ProductionInput
		if err := tx.First(&input, "id = ?", inputID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("input not found")
			}
			return err
		}
		if _, err := lockDraftEntry(tx, actor, input.ProductionEntryID); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&input).Error
	})
}

// Validate turns a draft entry into a validated one: reserve every recorded
// input snapshot, mint a package per output row, compute the totals, stamp
// the entry. All of it happens in one transaction: either every row
// changes or none do.
func (r *ProductionRepository) Validate(actor models.Actor, entryID types.SnowflakeID) (*models.ProductionEntry, error) {
	var validated *models.ProductionEntry

	err := r.db.Transaction(func(tx *gorm.DB) error {
		entry, err := lockDraftEntry(tx, actor, entryID)
		if err != nil {
			return err
		}

		var org models.Organisation
		if err := tx.First(&org, "id = ?", entry.OrganisationID).Error; err != nil {
			return err
		}
		var process models.ReferenceOption
		if err := tx.First(&process, "id = ?", entry.ProcessID).Error; err != nil {
			return err
		}

		var inputs []models.ProductionInput
		if err := tx.Where("production_entry_id = ?", entry.ID).Order("id asc").Find(&inputs).Error; err != nil {
			return err
		}
		var outputs []models.ProductionOutput
		if err := tx.Where("production_entry_id = ?", entry.ID).Order("sort_order asc, id asc").Find(&outputs).Error; err != nil {
			return err
		}
		if len(outputs) == 0 {
			return utils.NewValidationError("entry has no output rows")
		}

		ledger := NewInventoryRepository(tx)

		// 1. consume the inputs using their selection-time snapshots
		totalInput := decimal.Zero
		for i := range inputs {
			record, err := ledger.ReservePortion(inputs[i].PackageID, inputs[i].PiecesUsed, inputs[i].VolumeUsedM3)
			if err != nil {
				return err
			}
			if err := tx.Model(&models.ProductionInput{}).
				Where("id = ?", inputs[i].ID).
				Update("prior_status", record.PriorStatus).Error; err != nil {
				return err
			}
			totalInput = totalInput.Add(inputs[i].VolumeUsedM3)
		}

		// 2. mint one package per output row
		totalOutput := decimal.Zero
		for i := range outputs {
			attrs := PackageAttributes{
				ProductNameID: outputs[i].ProductNameID,
				WoodSpeciesID: outputs[i].WoodSpeciesID,
				HumidityID:    outputs[i].HumidityID,
				TypeID:        outputs[i].TypeID,
				ProcessingID:  outputs[i].ProcessingID,
				FscID:         outputs[i].FscID,
				QualityID:     outputs[i].QualityID,
				Thickness:     outputs[i].Thickness,
				Width:         outputs[i].Width,
				Length:        outputs[i].Length,
			}
			entryRef := entry.ID
			pkg, err := ledger.CreatePackage(org, process.Code, attrs, outputs[i].Pieces, outputs[i].VolumeM3, &entryRef, actor.UserID)
			if err != nil {
				return err
			}
			if err := tx.Model(&models.ProductionOutput{}).
				Where("id = ?", outputs[i].ID).
				Updates(map[string]interface{}{
					"package_number":     pkg.PackageNumber,
					"created_package_id": pkg.ID,
				}).Error; err != nil {
				return err
			}
			totalOutput = totalOutput.Add(outputs[i].VolumeM3)
		}

		// 3. totals and percentages
		outcome, waste := computePercentages(totalInput, totalOutput)
		now := time.Now()

		res := tx.Model(&models.ProductionEntry{}).
			Where("id = ? AND status = ?", entry.ID, models.ProductionStatusDraft).
			Updates(map[string]interface{}{
				"status":             models.ProductionStatusValidated,
				"total_input_m3":     totalInput,
				"total_output_m3":    totalOutput,
				"outcome_percentage": outcome,
				"waste_percentage":   waste,
				"validated_at":       now,
				"updated_by":         int(actor.UserID),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewInvalidStateError("entry is no longer draft")
		}

		entry.Status = models.ProductionStatusValidated
		entry.TotalInputM3 = decimal.NewNullDecimal(totalInput)
		entry.TotalOutputM3 = decimal.NewNullDecimal(totalOutput)
		entry.OutcomePercentage = decimal.NewNullDecimal(outcome)
		entry.WastePercentage = decimal.NewNullDecimal(waste)
		entry.ValidatedAt = &now
		validated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return validated, nil
}

// Revert is the explicit compensation for an erroneous validation: restore
// every consumed input, delete every package the validation created and put
// the entry back to draft with cleared totals. Fails if any created package
// has since been transferred away by an accepted shipment or consumed as
// the input of a later entry.
func (r *ProductionRepository) Revert(actor models.Actor, entryID types.SnowflakeID) (*models.ProductionEntry, error) {
	var reverted *models.ProductionEntry

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var entry models.ProductionEntry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&entry, "id = ?", entryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewNotFoundError("production entry not found")
			}
			return err
		}
		if !actor.CanMutate(entry.OrganisationID) {
			return utils.NewForbiddenError("entry belongs to another organisation")
		}
		if entry.Status != models.ProductionStatusValidated {
			return utils.NewInvalidStateError("only validated entries can be reverted")
		}

		ledger := NewInventoryRepository(tx)

		var outputs []models.ProductionOutput
		if err := tx.Where("production_entry_id = ?", entry.ID).Find(&outputs).Error; err != nil {
			return err
		}
		for i := range outputs {
			if outputs[i].CreatedPackageID == nil {
				continue
			}
			var pkg models.InventoryPackage
			if err := tx.First(&pkg, "id = ?", *outputs[i].CreatedPackageID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return utils.NewInvalidStateError(
						fmt.Sprintf("output package %s no longer exists", outputs[i].PackageNumber))
				}
				return err
			}
			if pkg.OrganisationID != entry.OrganisationID || pkg.OriginShipmentID != nil {
				return utils.NewInvalidStateError(
					fmt.Sprintf("package %s was transferred away and cannot be deleted", pkg.PackageNumber))
			}
			if pkg.CurrentShipmentID != nil {
				return utils.NewConflictError(
					fmt.Sprintf("package %s is attached to an open shipment", pkg.PackageNumber))
			}
			if pkg.Status == models.PackageStatusConsumed ||
				pkg.Pieces != outputs[i].Pieces || !pkg.VolumeM3.Equal(outputs[i].VolumeM3) {
				return utils.NewInvalidStateError(
					fmt.Sprintf("package %s has been consumed since validation and cannot be deleted", pkg.PackageNumber))
			}
			if err := ledger.DeletePackage(pkg.ID); err != nil {
				return err
			}
			if err := tx.Model(&models.ProductionOutput{}).
				Where("id = ?", outputs[i].ID).
				Update("created_package_id", nil).Error; err != nil {
				return err
			}
		}

		var inputs []models.ProductionInput
		if err := tx.Where("production_entry_id = ?", entry.ID).Find(&inputs).Error; err != nil {
			return err
		}
		for i := range inputs {
			record := ConsumptionRecord{
				PackageID:   inputs[i].PackageID,
				PiecesTaken: inputs[i].PiecesUsed,
				VolumeTaken: inputs[i].VolumeUsedM3,
				PriorStatus: inputs[i].PriorStatus,
			}
			if err := ledger.RestorePortion(inputs[i].PackageID, record); err != nil {
				return err
			}
			if err := tx.Model(&models.ProductionInput{}).
				Where("id = ?", inputs[i].ID).
				Update("prior_status", "").Error; err != nil {
				return err
			}
		}

		res := tx.Model(&models.ProductionEntry{}).
			Where("id = ? AND status = ?", entry.ID, models.ProductionStatusValidated).
			Updates(map[string]interface{}{
				"status":             models.ProductionStatusDraft,
				"total_input_m3":     nil,
				"total_output_m3":    nil,
				"outcome_percentage": nil,
				"waste_percentage":   nil,
				"validated_at":       nil,
				"updated_by":         int(actor.UserID),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewInvalidStateError("entry is no longer validated")
		}

		entry.Status = models.ProductionStatusDraft
		entry.TotalInputM3 = decimal.NullDecimal{}
		entry.TotalOutputM3 = decimal.NullDecimal{}
		entry.OutcomePercentage = decimal.NullDecimal{}
		entry.WastePercentage = decimal.NullDecimal{}
		entry.ValidatedAt = nil
		reverted = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reverted, nil
}

// DeleteDraft removes a draft entry with its staged rows. Nothing was
// reserved yet, so no stock movement is involved.
func (r *ProductionRepository) DeleteDraft(actor models.Actor, entryID types.SnowflakeID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := lockDraftEntry(tx, actor, entryID); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("production_entry_id = ?", entryID).Delete(&models.ProductionInput{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("production_entry_id = ?", entryID).Delete(&models.ProductionOutput{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", entryID).Delete(&models.ProductionEntry{}).Error
	})
}

// lockDraftEntry loads an entry FOR UPDATE and checks the draft + ownership
// preconditions shared by every draft mutation.
func lockDraftEntry(tx *gorm.DB, actor models.Actor, entryID types.SnowflakeID) (*models.ProductionEntry, error) {
	var entry models.ProductionEntry
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("production entry not found")
		}
		return nil, err
	}
	if !actor.CanProduce(entry.OrganisationID) {
		return nil, utils.NewForbiddenError("entry belongs to another organisation")
	}
	if entry.Status != models.ProductionStatusDraft {
		return nil, utils.NewInvalidStateError("entry is not draft")
	}
	return &entry, nil
}
