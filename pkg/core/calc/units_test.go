package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestToMM_Factors(t *testing.T) {
	tests := []struct {
		unit string
		in   float64
		want float64
	}{
		{"M", 2, 2000},
		{"mM", 1.5, 1.5},
		{"uM", 100, 0.1},
		{"nM", 250, 0.00025},
	}
	for _, tt := range tests {
		got, err := ToMM(tt.in, tt.unit)
		if err != nil {
			t.Fatalf("ToMM(%v, %q): %v", tt.in, tt.unit, err)
		}
		if !approx(got, tt.want) {
			t.Errorf("ToMM(%v, %q) = %v, want %v", tt.in, tt.unit, got, tt.want)
		}
	}
}

func TestToMM_UnknownUnit(t *testing.T) {
	if _, err := ToMM(1, "ng/uL"); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr, got %v", err)
	}
}

func TestFromMM_RoundTrips(t *testing.T) {
	for _, unit := range ConcUnits() {
		mm, err := ToMM(12.5, unit)
		if err != nil {
			t.Fatal(err)
		}
		back, err := FromMM(mm, unit)
		if err != nil {
			t.Fatal(err)
		}
		if !approx(back, 12.5) {
			t.Errorf("round trip through %q = %v, want 12.5", unit, back)
		}
	}
}

func TestVolumeConversions(t *testing.T) {
	got, err := ToUL(1.5, "mL")
	if err != nil || !approx(got, 1500) {
		t.Fatalf("ToUL(1.5, mL) = %v, %v", got, err)
	}
	got, err = FromUL(250, "mL")
	if err != nil || !approx(got, 0.25) {
		t.Fatalf("FromUL(250, mL) = %v, %v", got, err)
	}
	if _, err := ToUL(1, "L"); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for unknown volume unit, got %v", err)
	}
}

func TestToNmol_Factors(t *testing.T) {
	tests := []struct {
		unit string
		in   float64
		want float64
	}{
		{"nmol", 10, 10},
		{"pmol", 500, 0.5},
		{"umol", 0.02, 20},
	}
	for _, tt := range tests {
		got, err := ToNmol(tt.in, tt.unit)
		if err != nil {
			t.Fatalf("ToNmol(%v, %q): %v", tt.in, tt.unit, err)
		}
		if !approx(got, tt.want) {
			t.Errorf("ToNmol(%v, %q) = %v, want %v", tt.in, tt.unit, got, tt.want)
		}
	}
}

func TestConcFromAmount(t *testing.T) {
	got, err := ConcFromAmount(10, "nmol", 50, "uL")
	if err != nil || !approx(got, 0.2) {
		t.Fatalf("10 nmol in 50 uL = %v mM, %v; want 0.2", got, err)
	}
	got, err = ConcFromAmount(500, "pmol", 0.1, "mL")
	if err != nil || !approx(got, 0.005) {
		t.Fatalf("500 pmol in 0.1 mL = %v mM, %v; want 0.005", got, err)
	}
	if _, err := ConcFromAmount(10, "nmol", 0, "uL"); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for zero volume, got %v", err)
	}
}

func TestAmountNmol(t *testing.T) {
	if got := AmountNmol(0.2, 50); !approx(got, 10) {
		t.Fatalf("AmountNmol(0.2, 50) = %v, want 10", got)
	}
}

func TestStockVolumeUL(t *testing.T) {
	got, err := StockVolumeUL(10, 0.5, 100)
	if err != nil || !approx(got, 5) {
		t.Fatalf("StockVolumeUL(10, 0.5, 100) = %v, %v; want 5", got, err)
	}
	if _, err := StockVolumeUL(0, 0.5, 100); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for zero stock, got %v", err)
	}
}
