package repositories

import (
	"testing"

	"timber-portal/models"
)

func TestFormatPackageNumber(t *testing.T) {
	cases := []struct {
		prefix   string
		process  string
		sequence int
		want     string
	}{
		{"N", "CA", 11, "N-CA-0011"},
		{"N", "CA", 1, "N-CA-0001"},
		{"N", "FJ", 230, "N-FJ-0230"},
		{"W", "KD", 9999, "W-KD-9999"},
		// the width is a minimum, sequences keep counting past four digits
		{"N", "CA", 10000, "N-CA-10000"},
	}

	for _, c := range cases {
		got := FormatPackageNumber(c.prefix, c.process, c.sequence)
		if got != c.want {
			t.Fatalf("FormatPackageNumber(%q, %q, %d) = %q, want %q",
				c.prefix, c.process, c.sequence, got, c.want)
		}
	}
}

func TestNextSequenceNeverRepeats(t *testing.T) {
	db := openTestDB(t)
	org := seedOrganisation(t, db, "NOR", "N")
	counters := NewCounterRepository(db)

	seen := map[int]bool{}
	last := 0
	for i := 0; i < 20; i++ {
		seq, err := counters.NextSequence(org.ID, "CA")
		if err != nil {
			t.Fatalf("NextSequence: %v", err)
		}
		if seen[seq] {
			t.Fatalf("sequence %d issued twice", seq)
		}
		if seq <= last {
			t.Fatalf("sequence %d not greater than previous %d", seq, last)
		}
		seen[seq] = true
		last = seq
	}
}

func TestNextSequenceScopesAreIndependent(t *testing.T) {
	db := openTestDB(t)
	orgA := seedOrganisation(t, db, "NOR", "N")
	orgB := seedOrganisation(t, db, "WES", "W")
	counters := NewCounterRepository(db)

	if seq, err := counters.NextSequence(orgA.ID, "CA"); err != nil || seq != 1 {
		t.Fatalf("first allocation in scope A/CA = %d, %v, want 1", seq, err)
	}
	if seq, err := counters.NextSequence(orgA.ID, "FJ"); err != nil || seq != 1 {
		t.Fatalf("first allocation in scope A/FJ = %d, %v, want 1", seq, err)
	}
	if seq, err := counters.NextSequence(orgB.ID, "CA"); err != nil || seq != 1 {
		t.Fatalf("first allocation in scope B/CA = %d, %v, want 1", seq, err)
	}
	if seq, err := counters.NextSequence(orgA.ID, "CA"); err != nil || seq != 2 {
		t.Fatalf("second allocation in scope A/CA = %d, %v, want 2", seq, err)
	}
}

func TestResyncForcesCounterForward(t *testing.T) {
	db := openTestDB(t)
	org := seedOrganisation(t, db, "NOR", "N")
	counters := NewCounterRepository(db)

	if _, err := counters.NextSequence(org.ID, "CA"); err != nil {
		t.Fatalf("NextSequence: %v", err)
	}

	if err := counters.Resync(org.ID, "CA", 10); err != nil {
		t.Fatalf("Resync forward: %v", err)
	}
	if seq, err := counters.NextSequence(org.ID, "CA"); err != nil || seq != 11 {
		t.Fatalf("allocation after resync = %d, %v, want 11", seq, err)
	}

	// resync never moves the counter backwards
	if err := counters.Resync(org.ID, "CA", 3); err != nil {
		t.Fatalf("Resync backward: %v", err)
	}
	if seq, err := counters.NextSequence(org.ID, "CA"); err != nil || seq != 12 {
		t.Fatalf("allocation after backward resync = %d, %v, want 12", seq, err)
	}

	var counter models.PackageCounter
	if err := db.First(&counter, "organisation_id = ? AND process_code = ?", org.ID, "CA").Error; err != nil {
		t.Fatalf("load counter: %v", err)
	}
	if counter.LastSequence != 12 {
		t.Fatalf("last_sequence = %d, want 12", counter.LastSequence)
	}
}
