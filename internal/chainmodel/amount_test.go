package chainmodel

import "testing"

func TestParseAmountRoundTrip(t *testing.T) {
	cases := []string{"0", "10000", "150000000000000000", "1"}
	for _, c := range cases {
		a, err := ParseAmount(c)
		if err != nil {
			t.Fatalf("ParseAmount(%q) error = %v", c, err)
		}
		if a.String() != c {
			t.Errorf("ParseAmount(%q).String() = %q", c, a.String())
		}
	}
}

func TestParseAmountRejectsNegativeAndMalformed(t *testing.T) {
	for _, bad := range []string{"-1", "1.5", "abc", ""} {
		if _, err := ParseAmount(bad); err == nil {
			t.Errorf("ParseAmount(%q) expected error", bad)
		}
	}
}

func TestAmountArithmetic(t *testing.T) {
	a := NewAmount(10000)
	b := NewAmount(5000)
	if a.Add(b).String() != "15000" {
		t.Errorf("Add = %s, want 15000", a.Add(b).String())
	}
	if a.Sub(b).String() != "5000" {
		t.Errorf("Sub = %s, want 5000", a.Sub(b).String())
	}
	if !a.GreaterOrEqual(b) {
		t.Error("10000 should be >= 5000")
	}
	if b.GreaterOrEqual(a) {
		t.Error("5000 should not be >= 10000")
	}
}

func TestAmountJSON(t *testing.T) {
	a := NewAmount(150000000000000000)
	data, err := a.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON error = %v", err)
	}
	want := `"150000000000000000"`
	if string(data) != want {
		t.Errorf("MarshalJSON = %s, want %s", data, want)
	}

	var decoded Amount
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON error = %v", err)
	}
	if decoded.Cmp(a) != 0 {
		t.Errorf("round trip mismatch: got %s, want %s", decoded, a)
	}
}

func TestAmountSQLRoundTrip(t *testing.T) {
	a := NewAmount(42)
	v, err := a.Value()
	if err != nil {
		t.Fatalf("Value error = %v", err)
	}
	var scanned Amount
	if err := scanned.Scan(v); err != nil {
		t.Fatalf("Scan error = %v", err)
	}
	if scanned.Cmp(a) != 0 {
		t.Errorf("scanned = %s, want %s", scanned, a)
	}
}
