package repositories

import (
	"errors"
	"fmt"

	"timber-portal/models"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository is the canonical package ledger. Every quantity or
// ownership change goes through here. The multi-row callers (validate,
// revert, accept) construct the repository over their transaction handle so
// the whole transition commits or rolls back as one unit.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db}
}

// ConsumptionRecord states exactly what a reservation removed from a
// package, so the removal can be reversed without re-deriving anything.
type ConsumptionRecord struct {
	PackageID   types.SnowflakeID
	PiecesTaken int
	VolumeTaken decimal.Decimal
	PriorStatus string
}

// reservationOutcome computes the post-reservation quantities and status.
// Kept free of gorm so the arithmetic is testable on its own.
func reservationOutcome(pieces int, volume decimal.Decimal, status string, piecesRequested int, volumeRequested decimal.Decimal) (int, decimal.Decimal, string, error) {
	if piecesRequested < 0 || volumeRequested.IsNegative() {
		return 0, decimal.Zero, "", utils.NewValidationError("requested quantities must not be negative")
	}
	if piecesRequested == 0 && volumeRequested.IsZero() {
		return 0, decimal.Zero, "", utils.NewValidationError("nothing requested")
	}
	if piecesRequested > pieces || volumeRequested.GreaterThan(volume) {
		return 0, decimal.Zero, "", utils.NewInsufficientQuantityError(
			fmt.Sprintf("requested %d pcs / %s m3, available %d pcs / %s m3",
				piecesRequested, volumeRequested.StringFixed(3), pieces, volume.StringFixed(3)))
	}

	remainingPieces := pieces - piecesRequested
	remainingVolume := volume.Sub(volumeRequested)
	newStatus := status
	if remainingPieces == 0 {
		newStatus = models.PackageStatusConsumed
	}
	return remainingPieces, remainingVolume, newStatus, nil
}

// ReservePortion removes the requested pieces/volume from the package and
// returns the exact amounts taken. The package row is locked for the span
// of the caller's transaction; a concurrent change between read and write
// is caught by the guarded update and surfaced as a conflict.
func (r *InventoryRepository) ReservePortion(packageID types.SnowflakeID, piecesRequested int, volumeRequested decimal.Decimal) (*ConsumptionRecord, error) {
	var pkg models.InventoryPackage
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pkg, "id = ?", packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("package not found")
		}
		return nil, err
	}

	remainingPieces, remainingVolume, newStatus, err := reservationOutcome(
		pkg.Pieces, pkg.VolumeM3, pkg.Status, piecesRequested, volumeRequested)
	if err != nil {
		return nil, err
	}

	res := r.db.Model(&models.InventoryPackage{}).
		Where("id = ? AND pieces = ? AND status = ?", pkg.ID, pkg.Pieces, pkg.Status).
		Updates(map[string]interface{}{
			"pieces":    remainingPieces,
			"volume_m3": remainingVolume,
			"status":    newStatus,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflictError("package modified concurrently")
	}

	return &ConsumptionRecord{
		PackageID:   pkg.ID,
		PiecesTaken: piecesRequested,
		VolumeTaken: volumeRequested,
		PriorStatus: pkg.Status,
	}, nil
}

// RestorePortion puts the recorded amounts back and restores the package's
// prior status. Only the revert compensation calls this.
func (r *InventoryRepository) RestorePortion(packageID types.SnowflakeID, record ConsumptionRecord) error {
	var pkg models.InventoryPackage
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pkg, "id = ?", packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("package not found")
		}
		return err
	}

	res := r.db.Model(&models.InventoryPackage{}).
		Where("id = ? AND pieces = ?", pkg.ID, pkg.Pieces).
		Updates(map[string]interface{}{
			"pieces":    pkg.Pieces + record.PiecesTaken,
			"volume_m3": pkg.VolumeM3.Add(record.VolumeTaken),
			"status":    record.PriorStatus,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewConflictError("package modified concurrently")
	}
	return nil
}

// PackageAttributes carries the descriptive fields of a package; quantities
// and lineage travel separately.
type PackageAttributes struct {
	ProductNameID *types.SnowflakeID
	WoodSpeciesID *types.SnowflakeID
	HumidityID    *types.SnowflakeID
	TypeID        *types.SnowflakeID
	ProcessingID  *types.SnowflakeID
	FscID         *types.SnowflakeID
	QualityID     *types.SnowflakeID
	Thickness     string
	Width         string
	Length        string
}

// CreatePackage allocates the next number in the organisation/process scope
// and inserts a new produced package.
func (r *InventoryRepository) CreatePackage(org models.Organisation, processCode string, attrs PackageAttributes, pieces int, volume decimal.Decimal, entryID *types.SnowflakeID, actorUserID uint) (*models.InventoryPackage, error) {
	if pieces < 0 || volume.IsNegative() {
		return nil, utils.NewValidationError("package quantities must not be negative")
	}

	counters := NewCounterRepository(r.db)
	seq, err := counters.NextSequence(org.ID, processCode)
	if err != nil {
		return nil, err
	}

	pkg := models.InventoryPackage{
		PackageNumber:     FormatPackageNumber(org.Prefix, processCode, seq),
		OrganisationID:    org.ID,
		Status:            models.PackageStatusProduced,
		Pieces:            pieces,
		VolumeM3:          volume,
		ProductNameID:     attrs.ProductNameID,
		WoodSpeciesID:     attrs.WoodSpeciesID,
		HumidityID:        attrs.HumidityID,
		TypeID:            attrs.TypeID,
		ProcessingID:      attrs.ProcessingID,
		FscID:             attrs.FscID,
		QualityID:         attrs.QualityID,
		Thickness:         attrs.Thickness,
		Width:             attrs.Width,
		Length:            attrs.Length,
		ProductionEntryID: entryID,
		CreatedBy:         int(actorUserID),
		UpdatedBy:         int(actorUserID),
	}
	if err := r.db.Create(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

// CreateInitialPackage inserts opening stock for an organisation, with a
// caller-supplied package number and no production lineage.
func (r *InventoryRepository) CreateInitialPackage(actor models.Actor, org models.Organisation, packageNumber string, attrs PackageAttributes, pieces int, volume decimal.Decimal) (*models.InventoryPackage, error) {
	if !actor.CanMutate(org.ID) {
		return nil, utils.NewForbiddenError("initial stocking is organisation-scoped")
	}
	if packageNumber == "" {
		return nil, utils.NewValidationError("package number is required")
	}
	if pieces <= 0 || volume.IsNegative() {
		return nil, utils.NewValidationError("package quantities must be positive")
	}

	pkg := models.InventoryPackage{
		PackageNumber:  packageNumber,
		OrganisationID: org.ID,
		Status:         models.PackageStatusAvailable,
		Pieces:         pieces,
		VolumeM3:       volume,
		ProductNameID:  attrs.ProductNameID,
		WoodSpeciesID:  attrs.WoodSpeciesID,
		HumidityID:     attrs.HumidityID,
		TypeID:         attrs.TypeID,
		ProcessingID:   attrs.ProcessingID,
		FscID:          attrs.FscID,
		QualityID:      attrs.QualityID,
		Thickness:      attrs.Thickness,
		Width:          attrs.Width,
		Length:         attrs.Length,
		CreatedBy:      int(actor.UserID),
		UpdatedBy:      int(actor.UserID),
	}
	if err := r.db.Create(&pkg).Error; err != nil {
		return nil, utils.NewConflictError("package number already exists")
	}
	return &pkg, nil
}

// TransferOwnership reassigns every package to the destination organisation.
// Each update is guarded on the sender still owning the package and the
// package still being attached to the given shipment; any miss fails the
// caller's transaction, so the transfer is all-or-nothing.
func (r *InventoryRepository) TransferOwnership(packageIDs []types.SnowflakeID, fromOrgID, toOrgID, shipmentID types.SnowflakeID) error {
	if len(packageIDs) == 0 {
		return utils.NewValidationError("no packages to transfer")
	}

	for _, id := range packageIDs {
		res := r.db.Model(&models.InventoryPackage{}).
			Where("id = ? AND organisation_id = ? AND current_shipment_id = ?", id, fromOrgID, shipmentID).
			Updates(map[string]interface{}{
				"organisation_id":     toOrgID,
				"origin_shipment_id":  shipmentID,
				"current_shipment_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewConflictError(fmt.Sprintf("package %d is not transferable by this shipment", id))
		}
	}
	return nil
}

// DeletePackage removes a package permanently. Only the revert compensation
// uses this, after checking the package never left the producing
// organisation.
func (r *InventoryRepository) DeletePackage(packageID types.SnowflakeID) error {
	res := r.db.Unscoped().Where("id = ?", packageID).Delete(&models.InventoryPackage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFoundError("package not found")
	}
	return nil
}

// GetPackage loads one package with organisation scoping applied.
func (r *InventoryRepository) GetPackage(actor models.Actor, packageID types.SnowflakeID) (*models.InventoryPackage, error) {
	var pkg models.InventoryPackage
	if err := r.db.First(&pkg, "id = ?", packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("package not found")
		}
		return nil, err
	}
	if !actor.CanView(pkg.OrganisationID) {
		return nil, utils.NewForbiddenError("package belongs to another organisation")
	}
	return &pkg, nil
}

// ListPackages returns the packages visible to the actor, optionally
// filtered by status or owning organisation (super-admin only).
func (r *InventoryRepository) ListPackages(actor models.Actor, status string, orgFilter types.SnowflakeID) ([]models.InventoryPackage, error) {
	q := r.db.Model(&models.InventoryPackage{}).Order("package_number asc")

	if actor.IsSuperAdmin() {
		if orgFilter != 0 {
			q = q.Where("organisation_id = ?", orgFilter)
		}
	} else {
		q = q.Where("organisation_id = ?", actor.OrganisationID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var packages []models.InventoryPackage
	if err := q.Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}
