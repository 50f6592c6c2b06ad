package types

import "testing"

func TestSnowflakeIDScanNull(t *testing.T) {
	// nullable FK columns scan database NULL into the zero id
	id := SnowflakeID(42)
	if err := id.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if id != 0 {
		t.Fatalf("id = %d, want 0 after NULL scan", id)
	}
}

func TestSnowflakeIDJSONForms(t *testing.T) {
	var id SnowflakeID

	if err := id.UnmarshalJSON([]byte(`"1899812039481344"`)); err != nil {
		t.Fatalf("string form: %v", err)
	}
	if id != 1899812039481344 {
		t.Fatalf("id = %d from string form", id)
	}

	if err := id.UnmarshalJSON([]byte(`1899812039481345`)); err != nil {
		t.Fatalf("number form: %v", err)
	}
	if id != 1899812039481345 {
		t.Fatalf("id = %d from number form", id)
	}

	out, err := id.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"1899812039481345"` {
		t.Fatalf("marshal produced %s, ids must serialize as strings", out)
	}
}
