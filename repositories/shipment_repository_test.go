package repositories

import (
	"testing"

	"timber-portal/models"
	"timber-portal/types"
	"timber-portal/utils"

	"github.com/shopspring/decimal"
)

func TestShipmentTransitions(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.ShipmentStatusDraft, models.ShipmentStatusPending},
		{models.ShipmentStatusPending, models.ShipmentStatusAccepted},
		{models.ShipmentStatusPending, models.ShipmentStatusRejected},
		{models.ShipmentStatusPending, models.ShipmentStatusDraft},
	}
	for _, c := range allowed {
		if !isShipmentTransitionAllowed(c.from, c.to) {
			t.Fatalf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	// accepted and rejected are terminal, and draft never jumps past pending
	forbidden := []struct{ from, to string }{
		{models.ShipmentStatusDraft, models.ShipmentStatusAccepted},
		{models.ShipmentStatusDraft, models.ShipmentStatusRejected},
		{models.ShipmentStatusAccepted, models.ShipmentStatusDraft},
		{models.ShipmentStatusAccepted, models.ShipmentStatusPending},
		{models.ShipmentStatusRejected, models.ShipmentStatusPending},
		{models.ShipmentStatusRejected, models.ShipmentStatusAccepted},
		{models.ShipmentStatusDraft, models.ShipmentStatusDraft},
	}
	for _, c := range forbidden {
		if isShipmentTransitionAllowed(c.from, c.to) {
			t.Fatalf("%s -> %s should be forbidden", c.from, c.to)
		}
	}
}

func TestAcceptIsAllOrNothing(t *testing.T) {
	db := openTestDB(t)
	orgA := seedOrganisation(t, db, "NOR", "N")
	orgB := seedOrganisation(t, db, "WES", "W")
	orgC := seedOrganisation(t, db, "EST", "E")
	first := seedPackage(t, db, orgA.ID, "N-CA-0001", 40, "0.750")
	second := seedPackage(t, db, orgA.ID, "N-CA-0002", 60, "1.100")
	sender := adminOf(orgA)
	receiver := adminOf(orgB)
	repo := NewShipmentRepository(db)

	shipment, err := repo.CreateShipment(sender, orgB.ID, decimal.NullDecimal{}, "")
	if err != nil {
		t.Fatalf("CreateShipment: %v", err)
	}
	if err := repo.AttachPackage(sender, shipment.ID, first.ID); err != nil {
		t.Fatalf("attach first: %v", err)
	}
	if err := repo.AttachPackage(sender, shipment.ID, second.ID); err != nil {
		t.Fatalf("attach second: %v", err)
	}
	if _, err := repo.Submit(sender, shipment.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// the second package slips away to another organisation before review
	if err := db.Model(&models.InventoryPackage{}).
		Where("id = ?", second.ID).Update("organisation_id", orgC.ID).Error; err != nil {
		t.Fatalf("reassign second: %v", err)
	}

	if _, err := repo.Accept(receiver, shipment.ID); !utils.IsKind(err, utils.ErrKindConflict) {
		t.Fatalf("Accept with untransferable package: got %v, want conflict", err)
	}

	// nothing moved: the first package is still the sender's and the
	// shipment is still pending
	var pkg models.InventoryPackage
	if err := db.First(&pkg, "id = ?", first.ID).Error; err != nil {
		t.Fatalf("reload first: %v", err)
	}
	if pkg.OrganisationID != orgA.ID || pkg.OriginShipmentID != nil {
		t.Fatalf("first package moved despite failed accept: org=%d", pkg.OrganisationID)
	}
	var reloaded models.Shipment
	if err := db.First(&reloaded, "id = ?", shipment.ID).Error; err != nil {
		t.Fatalf("reload shipment: %v", err)
	}
	if reloaded.Status != models.ShipmentStatusPending {
		t.Fatalf("shipment status = %s, want pending", reloaded.Status)
	}

	// with both packages transferable again the acceptance goes through
	if err := db.Model(&models.InventoryPackage{}).
		Where("id = ?", second.ID).Update("organisation_id", orgA.ID).Error; err != nil {
		t.Fatalf("restore second: %v", err)
	}
	accepted, err := repo.Accept(receiver, shipment.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if accepted.Status != models.ShipmentStatusAccepted || accepted.ReviewedAt == nil {
		t.Fatalf("shipment not accepted: status=%s", accepted.Status)
	}
	for _, id := range []types.SnowflakeID{first.ID, second.ID} {
		var pkg models.InventoryPackage
		if err := db.First(&pkg, "id = ?", id).Error; err != nil {
			t.Fatalf("reload package %d: %v", id, err)
		}
		if pkg.OrganisationID != orgB.ID {
			t.Fatalf("package %d owner = %d, want %d", id, pkg.OrganisationID, orgB.ID)
		}
		if pkg.OriginShipmentID == nil || *pkg.OriginShipmentID != shipment.ID {
			t.Fatalf("package %d lineage = %v, want shipment %d", id, pkg.OriginShipmentID, shipment.ID)
		}
		if pkg.CurrentShipmentID != nil {
			t.Fatalf("package %d still attached after accept", id)
		}
	}
}

func TestAttachPackageClaimsOnce(t *testing.T) {
	db := openTestDB(t)
	orgA := seedOrganisation(t, db, "NOR", "N")
	orgB := seedOrganisation(t, db, "WES", "W")
	pkg := seedPackage(t, db, orgA.ID, "N-CA-0001", 40, "0.750")
	sender := adminOf(orgA)
	repo := NewShipmentRepository(db)

	one, err := repo.CreateShipment(sender, orgB.ID, decimal.NullDecimal{}, "")
	if err != nil {
		t.Fatalf("create first shipment: %v", err)
	}
	two, err := repo.CreateShipment(sender, orgB.ID, decimal.NullDecimal{}, "")
	if err != nil {
		t.Fatalf("create second shipment: %v", err)
	}

	if err := repo.AttachPackage(sender, one.ID, pkg.ID); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := repo.AttachPackage(sender, two.ID, pkg.ID); !utils.IsKind(err, utils.ErrKindConflict) {
		t.Fatalf("second claim: got %v, want conflict", err)
	}

	// detaching releases the claim for the other shipment
	if err := repo.DetachPackage(sender, one.ID, pkg.ID); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := repo.AttachPackage(sender, two.ID, pkg.ID); err != nil {
		t.Fatalf("claim after release: %v", err)
	}
}
