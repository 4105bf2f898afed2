package stock

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cy5 dye", "Cy5_dye"},
		{"  Tris  HCl  ", "Tris_HCl"},
		{"T7.primer-v2", "T7.primer-v2"},
		{"NaCl (5M)", "NaCl_5M"},
		{"a__b", "a_b"},
		{"", "Stock"},
		{"()", "Stock"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFmtNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10"},
		{100.0, "100"},
		{0.5, "0.5"},
		{2.50, "2.5"},
		{0.123456, "0.123456"},
		{0.001, "0.001"},
	}
	for _, tt := range tests {
		if got := fmtNum(tt.in); got != tt.want {
			t.Errorf("fmtNum(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAutoLabel(t *testing.T) {
	if got := autoLabel("Cy5 dye", 10, "mM"); got != "Cy5_dye_10mM" {
		t.Errorf("autoLabel = %q, want Cy5_dye_10mM", got)
	}
	if got := autoLabel("T7 primer", 0.5, "uM"); got != "T7_primer_0.5uM" {
		t.Errorf("autoLabel = %q, want T7_primer_0.5uM", got)
	}
}
