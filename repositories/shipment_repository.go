package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"timber-portal/models"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShipmentRepository drives the draft → pending → accepted/rejected state
// machine that moves package custody between organisations. Ownership only
// changes inside Accept, and there for every attached package or none.
type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db}
}

// shipmentTransitions lists the legal status moves. Cancel is the one
// backward edge; custody transfer happens only on the accept edge.
var shipmentTransitions = map[string][]string{
	models.ShipmentStatusDraft:   {models.ShipmentStatusPending},
	models.ShipmentStatusPending: {models.ShipmentStatusAccepted, models.ShipmentStatusRejected, models.ShipmentStatusDraft},
}

func isShipmentTransitionAllowed(from, to string) bool {
	for _, next := range shipmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GenerateShipmentCode builds the next display code, SHP<yyMMdd><seq>.
func GenerateShipmentCode(tx *gorm.DB) (string, error) {
	currentDate := time.Now().Format("060102")
	prefix := "SHP" + currentDate

	var lastCode string
	err := tx.Model(&models.Shipment{}).
		Where("code LIKE ?", prefix+"%").
		Order("code desc").
		Limit(1).
		Pluck("code", &lastCode).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if lastCode != "" {
		lastSeq, _ := strconv.Atoi(strings.TrimPrefix(lastCode, prefix))
		seq = lastSeq + 1
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

func (r *ShipmentRepository) CreateShipment(actor models.Actor, toOrgID types.SnowflakeID, transportCost decimal.NullDecimal, notes string) (*models.Shipment, error) {
	if !actor.CanMutate(actor.OrganisationID) {
		return nil, utils.NewForbiddenError("shipments are organisation-scoped")
	}
	if toOrgID == 0 || toOrgID == actor.OrganisationID {
		return nil, utils.NewValidationError("destination organisation is invalid")
	}

	var destination models.Organisation
	if err := r.db.First(&destination, "id = ? AND is_active = ?", toOrgID, true).Error; err != nil {
		return nil, utils.NewValidationError("destination organisation not found")
	}

	var shipment *models.Shipment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		code, err := GenerateShipmentCode(tx)
		if err != nil {
			return err
		}
		shipment = &models.Shipment{
			Code:               code,
			FromOrganisationID: actor.OrganisationID,
			ToOrganisationID:   toOrgID,
			Status:             models.ShipmentStatusDraft,
			TransportCost:      transportCost,
			Notes:              notes,
			CreatedBy:          int(actor.UserID),
			UpdatedBy:          int(actor.UserID),
		}
		return tx.Create(shipment).Error
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

func (r *ShipmentRepository) GetShipment(actor models.Actor, shipmentID types.SnowflakeID) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.First(&shipment, "id = ?", shipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("shipment not found")
		}
		return nil, err
	}
	if !actor.CanView(shipment.FromOrganisationID) && !actor.CanView(shipment.ToOrganisationID) {
		return nil, utils.NewForbiddenError("shipment belongs to other organisations")
	}
	return &shipment, nil
}

// ListShipments returns shipments where the actor's organisation is sender
// or receiver; super-admin sees everything.
func (r *ShipmentRepository) ListShipments(actor models.Actor) ([]models.Shipment, error) {
	q := r.db.Model(&models.Shipment{}).Order("created_at desc")
	if !actor.IsSuperAdmin() {
		q = q.Where("from_organisation_id = ? OR to_organisation_id = ?", actor.OrganisationID, actor.OrganisationID)
	}
	var shipments []models.Shipment
	if err := q.Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// AttachedPackages lists the packages currently attached to the shipment.
func (r *ShipmentRepository) AttachedPackages(shipmentID types.SnowflakeID) ([]models.InventoryPackage, error) {
	var packages []models.InventoryPackage
	if err := r.db.Where("current_shipment_id = ?", shipmentID).
		Order("package_number asc").Find(&packages).Error; err != nil {
		return nil, err
	}
	return packages, nil
}

// AttachPackage claims a package for a draft shipment. The claim is one
// guarded update: only a package owned by the sender and attached to no
// other open shipment flips, so two shipments can never both take it. The
// shipment row stays locked until the claim commits, so a concurrent submit
// cannot slip between the draft check and the claim.
func (r *ShipmentRepository) AttachPackage(actor models.Actor, shipmentID, packageID types.SnowflakeID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		shipment, err := NewShipmentRepository(tx).senderShipment(actor, shipmentID, models.ShipmentStatusDraft)
		if err != nil {
			return err
		}

		res := tx.Model(&models.InventoryPackage{}).
			Where("id = ? AND organisation_id = ? AND current_shipment_id IS NULL AND status <> ?",
				packageID, shipment.FromOrganisationID, models.PackageStatusConsumed).
			Update("current_shipment_id", shipment.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.NewConflictError("package is unavailable or already attached to a shipment")
		}
		return nil
	})
}

// DetachPackage releases a package from a draft shipment, unconditionally.
func (r *ShipmentRepository) DetachPackage(actor models.Actor, shipmentID, packageID types.SnowflakeID) error {
	if _, err := r.senderShipment(actor, shipmentID, models.ShipmentStatusDraft); err != nil {
		return err
	}

	return r.db.Model(&models.InventoryPackage{}).
		Where("id = ? AND current_shipment_id = ?", packageID, shipmentID).
		Update("current_shipment_id", nil).Error
}

// Submit hands the draft to the destination organisation for review. No
// quantity or ownership changes yet.
func (r *ShipmentRepository) Submit(actor models.Actor, shipmentID types.SnowflakeID) (*models.Shipment, error) {
	var submitted *models.Shipment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		shipment, err := NewShipmentRepository(tx).senderShipment(actor, shipmentID, models.ShipmentStatusDraft)
		if err != nil {
			return err
		}

		var attached int64
		if err := tx.Model(&models.InventoryPackage{}).
			Where("current_shipment_id = ?", shipment.ID).Count(&attached).Error; err != nil {
			return err
		}
		if attached == 0 {
			return utils.NewValidationError("shipment has no attached packages")
		}

		now := time.Now()
		if err := transitionShipment(tx, shipment, models.ShipmentStatusPending, map[string]interface{}{
			"submitted_at": now,
			"updated_by":   int(actor.UserID),
		}); err != nil {
			return err
		}
		shipment.SubmittedAt = &now
		submitted = shipment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

// Accept transfers custody of every attached package to the destination
// organisation and closes the shipment. One transaction: a single failed
// package transfer rolls the whole acceptance back.
func (r *ShipmentRepository) Accept(actor models.Actor, shipmentID types.SnowflakeID) (*models.Shipment, error) {
	var accepted *models.Shipment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		shipment, err := NewShipmentRepository(tx).receiverShipment(actor, shipmentID)
		if err != nil {
			return err
		}

		var packages []models.InventoryPackage
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("current_shipment_id = ?", shipment.ID).Find(&packages).Error; err != nil {
			return err
		}
		if len(packages) == 0 {
			return utils.NewInvalidStateError("shipment has no attached packages")
		}

		ids := make([]types.SnowflakeID, 0, len(packages))
		for i := range packages {
			ids = append(ids, packages[i].ID)
		}

		ledger := NewInventoryRepository(tx)
		if err := ledger.TransferOwnership(ids, shipment.FromOrganisationID, shipment.ToOrganisationID, shipment.ID); err != nil {
			return err
		}

		now := time.Now()
		if err := transitionShipment(tx, shipment, models.ShipmentStatusAccepted, map[string]interface{}{
			"reviewed_at": now,
			"updated_by":  int(actor.UserID),
		}); err != nil {
			return err
		}
		shipment.ReviewedAt = &now
		accepted = shipment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// Reject closes the shipment without any custody change and releases the
// attached packages back to the sender's free stock.
func (r *ShipmentRepository) Reject(actor models.Actor, shipmentID types.SnowflakeID, reason string) (*models.Shipment, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, utils.NewValidationError("rejection reason is required")
	}

	var rejected *models.Shipment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		shipment, err := NewShipmentRepository(tx).receiverShipment(actor, shipmentID)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := transitionShipment(tx, shipment, models.ShipmentStatusRejected, map[string]interface{}{
			"reviewed_at":      now,
			"rejection_reason": reason,
			"updated_by":       int(actor.UserID),
		}); err != nil {
			return err
		}

		if err := tx.Model(&models.InventoryPackage{}).
			Where("current_shipment_id = ?", shipment.ID).
			Update("current_shipment_id", nil).Error; err != nil {
			return err
		}

		shipment.ReviewedAt = &now
		shipment.RejectionReason = reason
		rejected = shipment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// Cancel pulls a pending shipment back to draft. Sender only; attachments
// stay in place.
func (r *ShipmentRepository) Cancel(actor models.Actor, shipmentID types.SnowflakeID) (*models.Shipment, error) {
	var cancelled *models.Shipment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		shipment, err := NewShipmentRepository(tx).senderShipment(actor, shipmentID, models.ShipmentStatusPending)
		if err != nil {
			return err
		}

		if err := transitionShipment(tx, shipment, models.ShipmentStatusDraft, map[string]interface{}{
			"submitted_at": nil,
			"updated_by":   int(actor.UserID),
		}); err != nil {
			return err
		}
		shipment.SubmittedAt = nil
		cancelled = shipment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// DeleteDraft removes a draft shipment and releases its attachments.
func (r *ShipmentRepository) DeleteDraft(actor models.Actor, shipmentID types.SnowflakeID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		shipment, err := NewShipmentRepository(tx).senderShipment(actor, shipmentID, models.ShipmentStatusDraft)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.InventoryPackage{}).
			Where("current_shipment_id = ?", shipment.ID).
			Update("current_shipment_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Where("id = ?", shipment.ID).Delete(&models.Shipment{}).Error
	})
}

// transitionShipment applies a status move with the legality table and a
// status-guarded update, so a concurrent transition loses cleanly.
func transitionShipment(tx *gorm.DB, shipment *models.Shipment, to string, extra map[string]interface{}) error {
	if !isShipmentTransitionAllowed(shipment.Status, to) {
		return utils.NewInvalidStateError(
			fmt.Sprintf("cannot move shipment from %s to %s", shipment.Status, to))
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&models.Shipment{}).
		Where("id = ? AND status = ?", shipment.ID, shipment.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewInvalidStateError("shipment status changed concurrently")
	}
	shipment.Status = to
	return nil
}

func (r *ShipmentRepository) senderShipment(actor models.Actor, shipmentID types.SnowflakeID, wantStatus string) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&shipment, "id = ?", shipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("shipment not found")
		}
		return nil, err
	}
	if !actor.CanMutate(shipment.FromOrganisationID) {
		return nil, utils.NewForbiddenError("only the sending organisation may do this")
	}
	if shipment.Status != wantStatus {
		return nil, utils.NewInvalidStateError(fmt.Sprintf("shipment is not %s", wantStatus))
	}
	return &shipment, nil
}

func (r *ShipmentRepository) receiverShipment(actor models.Actor, shipmentID types.SnowflakeID) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&shipment, "id = ?", shipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("shipment not found")
		}
		return nil, err
	}
	if !actor.CanMutate(shipment.ToOrganisationID) {
		return nil, utils.NewForbiddenError("only the destination organisation may review this shipment")
	}
	if shipment.Status != models.ShipmentStatusPending {
		return nil, utils.NewInvalidStateError("shipment is not pending")
	}
	return &shipment, nil
}
