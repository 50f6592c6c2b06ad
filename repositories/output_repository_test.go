package repositories

import (
	"testing"

	"timber-portal/models"
	"timber-portal/types"

	"github.com/shopspring/decimal"
)

func idPtr(v int64) *types.SnowflakeID {
	id := types.SnowflakeID(v)
	return &id
}

func outputRow(id int64, number string, pieces int, volume string, sortOrder int) models.ProductionOutput {
	return models.ProductionOutput{
		ID:            types.SnowflakeID(id),
		PackageNumber: number,
		Pieces:        pieces,
		VolumeM3:      decimal.RequireFromString(volume),
		SortOrder:     sortOrder,
	}
}

func desiredRow(id *types.SnowflakeID, number string, pieces int, volume string) OutputRowInput {
	return OutputRowInput{
		ID:            id,
		PackageNumber: number,
		Pieces:        pieces,
		VolumeM3:      decimal.RequireFromString(volume),
	}
}

func TestDiffOutputRowsResubmitIsNoOp(t *testing.T) {
	existing := []models.ProductionOutput{
		outputRow(1, "row-a", 10, "0.100", 0),
		outputRow(2, "row-b", 20, "0.200", 1),
	}
	desired := []OutputRowInput{
		desiredRow(idPtr(1), "row-a", 10, "0.100"),
		desiredRow(idPtr(2), "row-b", 20, "0.200"),
	}

	diff := diffOutputRows(existing, desired)

	if len(diff.Inserts) != 0 || len(diff.Updates) != 0 || len(diff.DeleteIDs) != 0 {
		t.Fatalf("resubmitting identical rows produced %d inserts, %d updates, %d deletes",
			len(diff.Inserts), len(diff.Updates), len(diff.DeleteIDs))
	}
}

func TestDiffOutputRowsMixedPlan(t *testing.T) {
	existing := []models.ProductionOutput{
		outputRow(1, "keep", 10, "0.100", 0),
		outputRow(2, "change", 20, "0.200", 1),
		outputRow(3, "drop", 30, "0.300", 2),
	}
	desired := []OutputRowInput{
		desiredRow(idPtr(1), "keep", 10, "0.100"),
		desiredRow(idPtr(2), "change", 25, "0.250"),
		desiredRow(nil, "fresh", 5, "0.050"),
	}

	diff := diffOutputRows(existing, desired)

	if len(diff.Inserts) != 1 {
		t.Fatalf("inserts = %d, want 1", len(diff.Inserts))
	}
	if diff.Inserts[0].Index != 2 || diff.Inserts[0].Row.PackageNumber != "fresh" {
		t.Fatalf("insert = %q at index %d, want \"fresh\" at 2",
			diff.Inserts[0].Row.PackageNumber, diff.Inserts[0].Index)
	}

	if len(diff.Updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(diff.Updates))
	}
	updated := diff.Updates[0]
	if updated.ID != 2 || updated.Pieces != 25 || !updated.VolumeM3.Equal(decimal.RequireFromString("0.250")) {
		t.Fatalf("updated row = id %d, %d pcs, %s m3", updated.ID, updated.Pieces, updated.VolumeM3)
	}
	if updated.SortOrder != 1 {
		t.Fatalf("updated sort order = %d, want 1", updated.SortOrder)
	}

	if len(diff.DeleteIDs) != 1 || diff.DeleteIDs[0] != 3 {
		t.Fatalf("deletes = %v, want [3]", diff.DeleteIDs)
	}
}

func TestDiffOutputRowsStaleIDBecomesInsert(t *testing.T) {
	existing := []models.ProductionOutput{
		outputRow(1, "real", 10, "0.100", 0),
	}
	desired := []OutputRowInput{
		desiredRow(idPtr(1), "real", 10, "0.100"),
		desiredRow(idPtr(999), "ghost", 4, "0.040"),
	}

	diff := diffOutputRows(existing, desired)

	if len(diff.Inserts) != 1 || diff.Inserts[0].Row.PackageNumber != "ghost" {
		t.Fatalf("stale id should insert, got %+v", diff.Inserts)
	}
	if len(diff.DeleteIDs) != 0 {
		t.Fatalf("unexpected deletes: %v", diff.DeleteIDs)
	}
}

func TestDiffOutputRowsReorderUpdatesSortOrder(t *testing.T) {
	existing := []models.ProductionOutput{
		outputRow(1, "first", 10, "0.100", 0),
		outputRow(2, "second", 20, "0.200", 1),
	}
	// same rows submitted in reverse
	desired := []OutputRowInput{
		desiredRow(idPtr(2), "second", 20, "0.200"),
		desiredRow(idPtr(1), "first", 10, "0.100"),
	}

	diff := diffOutputRows(existing, desired)

	if len(diff.Updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(diff.Updates))
	}
	for _, row := range diff.Updates {
		switch row.ID {
		case 2:
			if row.SortOrder != 0 {
				t.Fatalf("row 2 sort order = %d, want 0", row.SortOrder)
			}
		case 1:
			if row.SortOrder != 1 {
				t.Fatalf("row 1 sort order = %d, want 1", row.SortOrder)
			}
		default:
			t.Fatalf("unexpected updated row id %d", row.ID)
		}
	}
}

func TestDiffOutputRowsAttributeChangeDetected(t *testing.T) {
	existing := []models.ProductionOutput{
		{
			ID:            1,
			PackageNumber: "row",
			WoodSpeciesID: idPtr(7),
			Pieces:        10,
			VolumeM3:      decimal.RequireFromString("0.100"),
		},
	}
	desired := []OutputRowInput{
		{
			ID:            idPtr(1),
			PackageNumber: "row",
			WoodSpeciesID: idPtr(8),
			Pieces:        10,
			VolumeM3:      decimal.RequireFromString("0.100"),
		},
	}

	diff := diffOutputRows(existing, desired)

	if len(diff.Updates) != 1 {
		t.Fatalf("species change not detected: %d updates", len(diff.Updates))
	}
	if diff.Updates[0].WoodSpeciesID == nil || *diff.Updates[0].WoodSpeciesID != 8 {
		t.Fatalf("updated species = %v, want 8", diff.Updates[0].WoodSpeciesID)
	}
}

func TestDiffOutputRowsClearExisting(t *testing.T) {
	existing := []models.ProductionOutput{
		outputRow(1, "a", 1, "0.010", 0),
		outputRow(2, "b", 2, "0.020", 1),
	}

	diff := diffOutputRows(existing, nil)

	if len(diff.DeleteIDs) != 2 {
		t.Fatalf("deletes = %d, want 2", len(diff.DeleteIDs))
	}
}
