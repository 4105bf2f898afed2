package calc

import (
	"errors"
	"testing"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
)

func TestLabeling_Computes(t *testing.T) {
	got, err := Labeling(&LabelingInput{
		TargetEpsilon: 200000,
		ATarget:       0.5,
		DyeEpsilon:    150000,
		ADye:          0.3,
		CF:            0.1,
	})
	if err != nil {
		t.Fatal(err)
	}
	// corrected A = 0.5 - 0.1*0.3 = 0.47
	if !approx(got.TargetUM, 2.35) {
		t.Errorf("target = %v uM, want 2.35", got.TargetUM)
	}
	if !approx(got.DyeUM, 2.0) {
		t.Errorf("dye = %v uM, want 2.0", got.DyeUM)
	}
	if !approx(got.Ratio, 2.0/2.35) {
		t.Errorf("ratio = %v, want %v", got.Ratio, 2.0/2.35)
	}
	if !approx(got.Purity, 2.35/4.35*100) {
		t.Errorf("purity = %v%%, want %v", got.Purity, 2.35/4.35*100)
	}
}

func TestLabeling_NoCorrection(t *testing.T) {
	got, err := Labeling(&LabelingInput{
		TargetEpsilon: 100000,
		ATarget:       0.2,
		DyeEpsilon:    100000,
		ADye:          0.2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got.Ratio, 1) {
		t.Errorf("ratio = %v, want 1", got.Ratio)
	}
	if !approx(got.Purity, 50) {
		t.Errorf("purity = %v%%, want 50", got.Purity)
	}
}

func TestLabeling_OvercorrectedTargetFails(t *testing.T) {
	// CF*ADye swallows the whole target signal
	_, err := Labeling(&LabelingInput{
		TargetEpsilon: 200000,
		ATarget:       0.1,
		DyeEpsilon:    150000,
		ADye:          0.5,
		CF:            1.0,
	})
	if !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr, got %v", err)
	}
}

func TestLabeling_RejectsBadInputs(t *testing.T) {
	base := LabelingInput{
		TargetEpsilon: 200000,
		ATarget:       0.5,
		DyeEpsilon:    150000,
		ADye:          0.3,
		CF:            0.1,
	}
	tests := []struct {
		name   string
		mutate func(*LabelingInput)
	}{
		{"zero target epsilon", func(in *LabelingInput) { in.TargetEpsilon = 0 }},
		{"zero dye epsilon", func(in *LabelingInput) { in.DyeEpsilon = 0 }},
		{"negative absorbance", func(in *LabelingInput) { in.ATarget = -0.1 }},
		{"negative correction factor", func(in *LabelingInput) { in.CF = -0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			if _, err := Labeling(&in); !errors.Is(err, code.ParamErr) {
				t.Fatalf("expected ParamErr, got %v", err)
			}
		})
	}
}

func TestUVPurity(t *testing.T) {
	got, err := UVPurity(1.8, 1.0)
	if err != nil || !approx(got, 1.8) {
		t.Fatalf("UVPurity(1.8, 1.0) = %v, %v; want 1.8", got, err)
	}
	if _, err := UVPurity(1.8, 0); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for zero A280, got %v", err)
	}
	if _, err := UVPurity(-0.1, 1); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for negative absorbance, got %v", err)
	}
}

func TestEthanolRecovery(t *testing.T) {
	recovered, pct, err := EthanolRecovery(10, 50, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(recovered, 5) {
		t.Errorf("recovered = %v nmol, want 5", recovered)
	}
	if !approx(pct, 50) {
		t.Errorf("recovery = %v%%, want 50", pct)
	}

	if _, _, err := EthanolRecovery(0, 50, 100); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for zero initial amount, got %v", err)
	}
	if _, _, err := EthanolRecovery(10, -1, 100); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for negative concentration, got %v", err)
	}
}
