package types

import "testing"

func TestNewQuantityFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"10", 100_000, false},
		{"10.5", 105_000, false},
		{"-2.25", -22_500, false},
		{"0.00001", 0, false}, // truncated past 4 digits
		{"+3.1", 31_000, false},
		{".5", 5_000, false},
		{"1e2", 1_000_000, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		got, err := NewQuantityFromString(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NewQuantityFromString(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewQuantityFromString(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NewQuantityFromString(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQuantityDecimal(t *testing.T) {
	q := NewQuantityFromFloat64(-2.5)
	if got := q.Decimal().String(); got != "-2.5" {
		t.Errorf("Decimal() = %s, want -2.5", got)
	}
}

func TestQuantityString(t *testing.T) {
	tests := []struct {
		q    Quantity
		want string
	}{
		{100_000, "10.0000"},
		{-22_500, "-2.2500"},
		{0, "0.0000"},
	}
	for _, tt := range tests {
		if got := tt.q.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.q, got, tt.want)
		}
	}
}
