package repositories

import (
	"errors"
	"testing"

	"timber-portal/models"
	"timber-portal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestComputePercentages(t *testing.T) {
	cases := []struct {
		name        string
		input       string
		output      string
		wantOutcome string
		wantWaste   string
	}{
		// 0.750 / 0.800 = 93.75%, rounded half away from zero
		{"rounds half away from zero", "0.800", "0.750", "93.8", "6.3"},
		{"full recovery", "1.200", "1.200", "100", "0"},
		{"half recovery", "2.000", "1.000", "50", "50"},
		{"output exceeds input", "1.000", "1.100", "110", "-10"},
		{"no output", "0.500", "0", "0", "100"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			input := decimal.RequireFromString(c.input)
			output := decimal.RequireFromString(c.output)

			outcome, waste := computePercentages(input, output)

			if !outcome.Equal(decimal.RequireFromString(c.wantOutcome)) {
				t.Fatalf("outcome = %s, want %s", outcome, c.wantOutcome)
			}
			if !waste.Equal(decimal.RequireFromString(c.wantWaste)) {
				t.Fatalf("waste = %s, want %s", waste, c.wantWaste)
			}
		})
	}
}

func TestComputePercentagesZeroInput(t *testing.T) {
	outcome, waste := computePercentages(decimal.Zero, decimal.Zero)

	if !outcome.IsZero() {
		t.Fatalf("outcome = %s, want 0", outcome)
	}
	if !waste.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("waste = %s, want 100", waste)
	}
}

func TestComputePercentagesComplement(t *testing.T) {
	// waste is derived from the unrounded ratio, not from the rounded
	// outcome, so the pair may drift by a tenth but never by more
	input := decimal.RequireFromString("0.800")
	output := decimal.RequireFromString("0.750")

	outcome, waste := computePercentages(input, output)

	sum := outcome.Add(waste)
	drift := sum.Sub(decimal.NewFromInt(100)).Abs()
	if drift.GreaterThan(decimal.RequireFromString("0.1")) {
		t.Fatalf("outcome %s + waste %s drifts %s from 100", outcome, waste, drift)
	}
}

func TestValidateRevertRoundTrip(t *testing.T) {
	db := openTestDB(t)
	org := seedOrganisation(t, db, "NOR", "N")
	process := seedProcess(t, db, "CA", "Calibrating")
	source := seedPackage(t, db, org.ID, "N-CA-0010", 100, "2.000")
	if err := db.Create(&models.PackageCounter{OrganisationID: org.ID, ProcessCode: "CA", LastSequence: 10}).Error; err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	producer := producerOf(org)
	repo := NewProductionRepository(db)

	entry, err := repo.CreateEntry(producer, process.ID, "2026-08-01", "")
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if _, err := repo.AddInput(producer, entry.ID, source.ID, 40, decimal.RequireFromString("0.800")); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	output := models.ProductionOutput{
		ProductionEntryID: entry.ID,
		PackageNumber:     "draft-1",
		Pieces:            40,
		VolumeM3:          decimal.RequireFromString("0.750"),
	}
	if err := db.Create(&output).Error; err != nil {
		t.Fatalf("stage output: %v", err)
	}

	validated, err := repo.Validate(producer, entry.ID)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if validated.Status != models.ProductionStatusValidated || validated.ValidatedAt == nil {
		t.Fatalf("entry not validated: status=%s validated_at=%v", validated.Status, validated.ValidatedAt)
	}
	if !validated.TotalInputM3.Decimal.Equal(decimal.RequireFromString("0.800")) ||
		!validated.TotalOutputM3.Decimal.Equal(decimal.RequireFromString("0.750")) {
		t.Fatalf("totals = %s / %s, want 0.800 / 0.750",
			validated.TotalInputM3.Decimal, validated.TotalOutputM3.Decimal)
	}
	if !validated.OutcomePercentage.Decimal.Equal(decimal.RequireFromString("93.8")) ||
		!validated.WastePercentage.Decimal.Equal(decimal.RequireFromString("6.3")) {
		t.Fatalf("percentages = %s / %s, want 93.8 / 6.3",
			validated.OutcomePercentage.Decimal, validated.WastePercentage.Decimal)
	}

	var after models.InventoryPackage
	if err := db.First(&after, "id = ?", source.ID).Error; err != nil {
		t.Fatalf("reload source: %v", err)
	}
	if after.Pieces != 60 || !after.VolumeM3.Equal(decimal.RequireFromString("1.200")) {
		t.Fatalf("source = %d pcs / %s, want 60 / 1.200", after.Pieces, after.VolumeM3)
	}
	if after.Status != models.PackageStatusProduced {
		t.Fatalf("source status = %s, want produced", after.Status)
	}

	var created models.InventoryPackage
	if err := db.First(&created, "package_number = ?", "N-CA-0011").Error; err != nil {
		t.Fatalf("created package N-CA-0011 missing: %v", err)
	}
	if created.Pieces != 40 || !created.VolumeM3.Equal(decimal.RequireFromString("0.750")) {
		t.Fatalf("created = %d pcs / %s, want 40 / 0.750", created.Pieces, created.VolumeM3)
	}
	if created.ProductionEntryID == nil || *created.ProductionEntryID != entry.ID {
		t.Fatalf("created package lineage = %v, want entry %d", created.ProductionEntryID, entry.ID)
	}

	reverted, err := repo.Revert(producer, entry.ID)
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if reverted.Status != models.ProductionStatusDraft || reverted.ValidatedAt != nil {
		t.Fatalf("entry not back to draft: status=%s", reverted.Status)
	}
	if reverted.TotalInputM3.Valid || reverted.OutcomePercentage.Valid {
		t.Fatalf("totals not cleared on revert")
	}

	if err := db.First(&after, "id = ?", source.ID).Error; err != nil {
		t.Fatalf("reload source after revert: %v", err)
	}
	if after.Pieces != 100 || !after.VolumeM3.Equal(decimal.RequireFromString("2.000")) ||
		after.Status != models.PackageStatusProduced {
		t.Fatalf("source after revert = %d pcs / %s / %s, want 100 / 2.000 / produced",
			after.Pieces, after.VolumeM3, after.Status)
	}
	err = db.First(&models.InventoryPackage{}, "package_number = ?", "N-CA-0011").Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("created package should be deleted after revert, got %v", err)
	}
}

func TestAddInputRejectsNegativeQuantities(t *testing.T) {
	db := openTestDB(t)
	org := seedOrganisation(t, db, "NOR", "N")
	process := seedProcess(t, db, "CA", "Calibrating")
	source := seedPackage(t, db, org.ID, "N-CA-0001", 50, "1.000")
	producer := producerOf(org)
	repo := NewProductionRepository(db)

	entry, err := repo.CreateEntry(producer, process.ID, "2026-08-01", "")
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}

	if _, err := repo.AddInput(producer, entry.ID, source.ID, -5, decimal.RequireFromString("0.100")); !utils.IsKind(err, utils.ErrKindValidation) {
		t.Fatalf("negative pieces: got %v, want validation error", err)
	}
	if _, err := repo.AddInput(producer, entry.ID, source.ID, 5, decimal.RequireFromString("-0.100")); !utils.IsKind(err, utils.ErrKindValidation) {
		t.Fatalf("negative volume: got %v, want validation error", err)
	}

	var count int64
	db.Model(&models.ProductionInput{}).Where("production_entry_id = ?", entry.ID).Count(&count)
	if count != 0 {
		t.Fatalf("rejected selections were recorded: %d rows", count)
	}
}

func TestRevertRefusesConsumedOutput(t *testing.T) {
	db := openTestDB(t)
	org := seedOrganisation(t, db, "NOR", "N")
	process := seedProcess(t, db, "CA", "Calibrating")
	source := seedPackage(t, db, org.ID, "N-CA-0001", 100, "2.000")
	if err := db.Create(&models.PackageCounter{OrganisationID: org.ID, ProcessCode: "CA", LastSequence: 1}).Error; err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	producer := producerOf(org)
	repo := NewProductionRepository(db)

	entry, err := repo.CreateEntry(producer, process.ID, "2026-08-01", "")
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	if _, err := repo.AddInput(producer, entry.ID, source.ID, 40, decimal.RequireFromString("0.800")); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	output := models.ProductionOutput{
		ProductionEntryID: entry.ID,
		PackageNumber:     "draft-1",
		Pieces:            40,
		VolumeM3:          decimal.RequireFromString("0.750"),
	}
	if err := db.Create(&output).Error; err != nil {
		t.Fatalf("stage output: %v", err)
	}
	if _, err := repo.Validate(producer, entry.ID); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// a later entry consumes the minted package in full
	var created models.InventoryPackage
	if err := db.First(&created, "package_number = ?", "N-CA-0002").Error; err != nil {
		t.Fatalf("created package missing: %v", err)
	}
	ledger := NewInventoryRepository(db)
	if _, err := ledger.ReservePortion(created.ID, 40, decimal.RequireFromString("0.750")); err != nil {
		t.Fatalf("consume created package: %v", err)
	}

	if _, err := repo.Revert(producer, entry.ID); !utils.IsKind(err, utils.ErrKindInvalidState) {
		t.Fatalf("Revert on consumed output: got %v, want invalid state", err)
	}

	// the failed revert must not have touched the source package
	var after models.InventoryPackage
	if err := db.First(&after, "id = ?", source.ID).Error; err != nil {
		t.Fatalf("reload source: %v", err)
	}
	if after.Pieces != 60 {
		t.Fatalf("source pieces = %d, want 60", after.Pieces)
	}
}
