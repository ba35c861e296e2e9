package pricing

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{12.5, "$12.50"},
		{1234567.891, "$1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(17.5); got != "17.5%" {
		t.Errorf("FormatPercent(17.5) = %q", got)
	}
	if got := FormatPercent(20); got != "20%" {
		t.Errorf("FormatPercent(20) = %q", got)
	}
}
