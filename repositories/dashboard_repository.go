package repositories

import (
	"timber-portal/models"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{db}
}

// StockSummary aggregates the live ledger for one organisation.
type StockSummary struct {
	AvailablePackages int64           `json:"available_packages"`
	AvailablePieces   int64           `json:"available_pieces"`
	AvailableVolumeM3 decimal.Decimal `json:"available_volume_m3"`
	ProducedPackages  int64           `json:"produced_packages"`
	ProducedVolumeM3  decimal.Decimal `json:"produced_volume_m3"`
	ConsumedPackages  int64           `json:"consumed_packages"`
}

type ProductionSummary struct {
	DraftEntries     int64               `json:"draft_entries"`
	ValidatedEntries int64               `json:"validated_entries"`
	TotalInputM3     decimal.Decimal     `json:"total_input_m3"`
	TotalOutputM3    decimal.Decimal     `json:"total_output_m3"`
	AverageOutcome   decimal.NullDecimal `json:"average_outcome"`
}

type ShipmentSummary struct {
	OutgoingDraft   int64 `json:"outgoing_draft"`
	OutgoingPending int64 `json:"outgoing_pending"`
	IncomingPending int64 `json:"incoming_pending"`
	Accepted        int64 `json:"accepted"`
	Rejected        int64 `json:"rejected"`
}

// OrganisationOverview is the super-admin roll-up row, one per organisation.
type OrganisationOverview struct {
	OrganisationID   types.SnowflakeID `json:"organisation_id"`
	OrganisationName string            `json:"organisation_name"`
	Packages         int64             `json:"packages"`
	VolumeM3         decimal.Decimal   `json:"volume_m3"`
	PendingShipments int64             `json:"pending_shipments"`
}

type volumeRow struct {
	Count  int64
	Volume decimal.NullDecimal
}

func (r *DashboardRepository) StockSummary(actor models.Actor, orgID types.SnowflakeID) (*StockSummary, error) {
	if !actor.CanView(orgID) {
		return nil, utils.NewForbiddenError("dashboard is organisation-scoped")
	}

	summary := &StockSummary{
		AvailableVolumeM3: decimal.Zero,
		ProducedVolumeM3:  decimal.Zero,
	}

	type availableRow struct {
		Count  int64
		Pieces int64
		Volume decimal.NullDecimal
	}
	var available availableRow
	err := r.db.Model(&models.InventoryPackage{}).
		Select("COUNT(*) as count, COALESCE(SUM(pieces), 0) as pieces, COALESCE(SUM(volume_m3), 0) as volume").
		Where("organisation_id = ? AND status = ?", orgID, models.PackageStatusAvailable).
		Scan(&available).Error
	if err != nil {
		return nil, err
	}
	summary.AvailablePackages = available.Count
	summary.AvailablePieces = available.Pieces
	if available.Volume.Valid {
		summary.AvailableVolumeM3 = available.Volume.Decimal
	}

	var produced volumeRow
	err = r.db.Model(&models.InventoryPackage{}).
		Select("COUNT(*) as count, COALESCE(SUM(volume_m3), 0) as volume").
		Where("organisation_id = ? AND status = ?", orgID, models.PackageStatusProduced).
		Scan(&produced).Error
	if err != nil {
		return nil, err
	}
	summary.ProducedPackages = produced.Count
	if produced.Volume.Valid {
		summary.ProducedVolumeM3 = produced.Volume.Decimal
	}

	err = r.db.Model(&models.InventoryPackage{}).
		Where("organisation_id = ? AND status = ?", orgID, models.PackageStatusConsumed).
		Count(&summary.ConsumedPackages).Error
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *DashboardRepository) ProductionSummary(actor models.Actor, orgID types.SnowflakeID) (*ProductionSummary, error) {
	if !actor.CanView(orgID) {
		return nil, utils.NewForbiddenError("dashboard is organisation-scoped")
	}

	summary := &ProductionSummary{
		TotalInputM3:  decimal.Zero,
		TotalOutputM3: decimal.Zero,
	}

	err := r.db.Model(&models.ProductionEntry{}).
		Where("organisation_id = ? AND status = ?", orgID, models.ProductionStatusDraft).
		Count(&summary.DraftEntries).Error
	if err != nil {
		return nil, err
	}

	type totalsRow struct {
		Count   int64
		Input   decimal.NullDecimal
		Output  decimal.NullDecimal
		Outcome decimal.NullDecimal
	}
	var totals totalsRow
	err = r.db.Model(&models.ProductionEntry{}).
		Select("COUNT(*) as count, COALESCE(SUM(total_input_m3), 0) as input, COALESCE(SUM(total_output_m3), 0) as output, AVG(outcome_percentage) as outcome").
		Where("organisation_id = ? AND status = ?", orgID, models.ProductionStatusValidated).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	summary.ValidatedEntries = totals.Count
	if totals.Input.Valid {
		summary.TotalInputM3 = totals.Input.Decimal
	}
	if totals.Output.Valid {
		summary.TotalOutputM3 = totals.Output.Decimal
	}
	if totals.Outcome.Valid {
		summary.AverageOutcome = decimal.NewNullDecimal(totals.Outcome.Decimal.Round(1))
	}
	return summary, nil
}

func (r *DashboardRepository) ShipmentSummary(actor models.Actor, orgID types.SnowflakeID) (*ShipmentSummary, error) {
	if !actor.CanView(orgID) {
		return nil, utils.NewForbiddenError("dashboard is organisation-scoped")
	}

	summary := &ShipmentSummary{}
	counts := []struct {
		dest  *int64
		where string
		args  []interface{}
	}{
		{&summary.OutgoingDraft, "from_organisation_id = ? AND status = ?", []interface{}{orgID, models.ShipmentStatusDraft}},
		{&summary.OutgoingPending, "from_organisation_id = ? AND status = ?", []interface{}{orgID, models.ShipmentStatusPending}},
		{&summary.IncomingPending, "to_organisation_id = ? AND status = ?", []interface{}{orgID, models.ShipmentStatusPending}},
		{&summary.Accepted, "(from_organisation_id = ? OR to_organisation_id = ?) AND status = ?", []interface{}{orgID, orgID, models.ShipmentStatusAccepted}},
		{&summary.Rejected, "(from_organisation_id = ? OR to_organisation_id = ?) AND status = ?", []interface{}{orgID, orgID, models.ShipmentStatusRejected}},
	}
	for _, c := range counts {
		if err := r.db.Model(&models.Shipment{}).Where(c.where, c.args...).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// OrganisationOverviews is the cross-organisation roll-up, super-admin only.
func (r *DashboardRepository) OrganisationOverviews(actor models.Actor) ([]OrganisationOverview, error) {
	if !actor.IsSuperAdmin() {
		return nil, utils.NewForbiddenError("overview is restricted to super-admin")
	}

	var orgs []models.Organisation
	if err := r.db.Where("is_active = ?", true).Order("name asc").Find(&orgs).Error; err != nil {
		return nil, err
	}

	overviews := make([]OrganisationOverview, 0, len(orgs))
	for i := range orgs {
		row := OrganisationOverview{
			OrganisationID:   orgs[i].ID,
			OrganisationName: orgs[i].Name,
			VolumeM3:         decimal.Zero,
		}

		var stock volumeRow
		err := r.db.Model(&models.InventoryPackage{}).
			Select("COUNT(*) as count, COALESCE(SUM(volume_m3), 0) as volume").
			Where("organisation_id = ? AND status <> ?", orgs[i].ID, models.PackageStatusConsumed).
			Scan(&stock).Error
		if err != nil {
			return nil, err
		}
		row.Packages = stock.Count
		if stock.Volume.Valid {
			row.VolumeM3 = stock.Volume.Decimal
		}

		err = r.db.Model(&models.Shipment{}).
			Where("(from_organisation_id = ? OR to_organisation_id = ?) AND status = ?",
				orgs[i].ID, orgs[i].ID, models.ShipmentStatusPending).
			Count(&row.PendingShipments).Error
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, row)
	}
	return overviews, nil
}
