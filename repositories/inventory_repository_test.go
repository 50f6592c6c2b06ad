package repositories

import (
	"testing"

	"timber-portal/models"
	"timber-portal/utils"

	"github.com/shopspring/decimal"
)

func TestReservationOutcomePartial(t *testing.T) {
	pieces, volume, status, err := reservationOutcome(
		100, decimal.RequireFromString("1.500"), models.PackageStatusAvailable,
		40, decimal.RequireFromString("0.600"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pieces != 60 {
		t.Fatalf("remaining pieces = %d, want 60", pieces)
	}
	if !volume.Equal(decimal.RequireFromString("0.900")) {
		t.Fatalf("remaining volume = %s, want 0.900", volume)
	}
	if status != models.PackageStatusAvailable {
		t.Fatalf("status = %q, want unchanged", status)
	}
}

func TestReservationOutcomeConsumesAtZeroPieces(t *testing.T) {
	pieces, volume, status, err := reservationOutcome(
		25, decimal.RequireFromString("0.500"), models.PackageStatusProduced,
		25, decimal.RequireFromString("0.500"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pieces != 0 || !volume.IsZero() {
		t.Fatalf("remaining = %d pcs / %s m3, want zero", pieces, volume)
	}
	if status != models.PackageStatusConsumed {
		t.Fatalf("status = %q, want %q", status, models.PackageStatusConsumed)
	}
}

func TestReservationOutcomeInsufficient(t *testing.T) {
	_, _, _, err := reservationOutcome(
		10, decimal.RequireFromString("0.200"), models.PackageStatusAvailable,
		11, decimal.RequireFromString("0.100"))
	if !utils.IsKind(err, utils.ErrKindInsufficientQuantity) {
		t.Fatalf("expected insufficient quantity error, got %v", err)
	}

	_, _, _, err = reservationOutcome(
		10, decimal.RequireFromString("0.200"), models.PackageStatusAvailable,
		5, decimal.RequireFromString("0.300"))
	if !utils.IsKind(err, utils.ErrKindInsufficientQuantity) {
		t.Fatalf("expected insufficient quantity error, got %v", err)
	}
}

func TestReservationOutcomeRejectsEmptyAndNegative(t *testing.T) {
	_, _, _, err := reservationOutcome(
		10, decimal.RequireFromString("0.200"), models.PackageStatusAvailable,
		0, decimal.Zero)
	if !utils.IsKind(err, utils.ErrKindValidation) {
		t.Fatalf("expected validation error for empty request, got %v", err)
	}

	_, _, _, err = reservationOutcome(
		10, decimal.RequireFromString("0.200"), models.PackageStatusAvailable,
		-1, decimal.RequireFromString("0.100"))
	if !utils.IsKind(err, utils.ErrKindValidation) {
		t.Fatalf("expected validation error for negative request, got %v", err)
	}
}

// Reserving and restoring the same amounts must return the package to its
// exact starting state, whatever portion was taken.
func TestReservationRoundTrip(t *testing.T) {
	startPieces := 80
	startVolume := decimal.RequireFromString("1.250")

	takes := []struct {
		pieces int
		volume string
	}{
		{1, "0.001"},
		{40, "0.625"},
		{80, "1.250"},
	}

	for _, take := range takes {
		taken := decimal.RequireFromString(take.volume)
		remainingPieces, remainingVolume, _, err := reservationOutcome(
			startPieces, startVolume, models.PackageStatusAvailable, take.pieces, taken)
		if err != nil {
			t.Fatalf("reserve %d pcs / %s m3: %v", take.pieces, take.volume, err)
		}

		restoredPieces := remainingPieces + take.pieces
		restoredVolume := remainingVolume.Add(taken)
		if restoredPieces != startPieces || !restoredVolume.Equal(startVolume) {
			t.Fatalf("round trip of %d pcs / %s m3 ended at %d pcs / %s m3",
				take.pieces, take.volume, restoredPieces, restoredVolume)
		}
	}
}
