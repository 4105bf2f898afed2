package calc

import (
	"errors"
	"strings"
	"testing"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
)

func fptr(v float64) *float64 { return &v }

func TestComputeReaction_TargetDrivenRows(t *testing.T) {
	in := &ReactionInput{
		FinalVolume:  50,
		FinalVolUnit: "uL",
		Lines: []LineInput{
			{Reagent: "Tris-HCl", StockConc: 1, StockUnit: "M", TargetConc: fptr(50), TargetUnit: "mM"},
			{Reagent: "MgCl2", StockConc: 100, StockUnit: "mM", TargetConc: fptr(5), TargetUnit: "mM"},
			{Reagent: "primer", StockConc: 10, StockUnit: "uM", TargetConc: fptr(0.5), TargetUnit: "uM"},
		},
	}

	got, err := ComputeReaction(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got.Lines))
	}
	wantVols := []float64{2.5, 2.5, 2.5}
	for i, line := range got.Lines {
		if !approx(line.VolumeUL, wantVols[i]) {
			t.Errorf("line %d volume = %v, want %v", line.LineNo, line.VolumeUL, wantVols[i])
		}
		if line.AmountNmol == nil {
			t.Fatalf("line %d: amount not computed", line.LineNo)
		}
	}
	// amount = target in mM times final in uL
	if !approx(*got.Lines[0].AmountNmol, 2500) {
		t.Errorf("Tris amount = %v nmol, want 2500", *got.Lines[0].AmountNmol)
	}
	if !approx(*got.Lines[2].AmountNmol, 0.025) {
		t.Errorf("primer amount = %v nmol, want 0.025", *got.Lines[2].AmountNmol)
	}
	if !approx(got.TotalUL, 7.5) || !approx(got.FillUL, 42.5) {
		t.Errorf("total/fill = %v/%v, want 7.5/42.5", got.TotalUL, got.FillUL)
	}
}

func TestComputeReaction_VolumeDrivenRow(t *testing.T) {
	in := &ReactionInput{
		FinalVolume:  20,
		FinalVolUnit: "uL",
		Lines: []LineInput{
			{Reagent: "dye", StockConc: 10, StockUnit: "mM", Volume: fptr(2), VolUnit: "uL"},
			{Reagent: "enzyme", Volume: fptr(0.001), VolUnit: "mL"},
		},
	}

	got, err := ComputeReaction(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Lines[0].AmountNmol == nil || !approx(*got.Lines[0].AmountNmol, 20) {
		t.Errorf("dye amount = %+v, want 20 nmol", got.Lines[0].AmountNmol)
	}
	// no stock concentration, so no amount can be derived
	if got.Lines[1].AmountNmol != nil {
		t.Errorf("enzyme amount = %v, want nil", *got.Lines[1].AmountNmol)
	}
	if !approx(got.Lines[1].VolumeUL, 1) {
		t.Errorf("enzyme volume = %v uL, want 1", got.Lines[1].VolumeUL)
	}
	if !approx(got.FillUL, 17) {
		t.Errorf("fill = %v, want 17", got.FillUL)
	}
}

func TestComputeReaction_SkipsEmptyRows(t *testing.T) {
	in := &ReactionInput{
		FinalVolume:  10,
		FinalVolUnit: "uL",
		Lines: []LineInput{
			{Reagent: "placeholder"},
			{Reagent: "NaCl", StockConc: 5, StockUnit: "M", TargetConc: fptr(100), TargetUnit: "mM"},
		},
	}

	got, err := ComputeReaction(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(got.Lines))
	}
	if got.Lines[0].LineNo != 2 {
		t.Errorf("line number = %d, want 2 (source row position)", got.Lines[0].LineNo)
	}
}

func TestComputeReaction_BothSetRejected(t *testing.T) {
	in := &ReactionInput{
		FinalVolume:  10,
		FinalVolUnit: "uL",
		Lines: []LineInput{
			{Reagent: "NaCl", StockConc: 5, StockUnit: "M", TargetConc: fptr(100), TargetUnit: "mM", Volume: fptr(1), VolUnit: "uL"},
		},
	}
	_, err := ComputeReaction(in)
	if !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error should name the offending line: %v", err)
	}
}

func TestComputeReaction_VolumeDrivenRowLimit(t *testing.T) {
	target := LineInput{Reagent: "buf", StockConc: 1, StockUnit: "M", TargetConc: fptr(10), TargetUnit: "mM"}
	volA := LineInput{Reagent: "a", Volume: fptr(1), VolUnit: "uL"}
	volB := LineInput{Reagent: "b", Volume: fptr(1), VolUnit: "uL"}

	_, err := ComputeReaction(&ReactionInput{FinalVolume: 50, FinalVolUnit: "uL", Lines: []LineInput{target, volA, volB}})
	if !errors.Is(err, code.ParamErr) {
		t.Fatalf("two volume rows next to a target row should fail, got %v", err)
	}

	// without target rows any number of volume rows is fine
	if _, err := ComputeReaction(&ReactionInput{FinalVolume: 50, FinalVolUnit: "uL", Lines: []LineInput{volA, volB}}); err != nil {
		t.Fatalf("volume-only table should pass, got %v", err)
	}
}

func TestComputeReaction_ExceedsFinalVolume(t *testing.T) {
	in := &ReactionInput{
		FinalVolume:  100,
		FinalVolUnit: "uL",
		Lines: []LineInput{
			{Reagent: "stock", StockConc: 1, StockUnit: "mM", TargetConc: fptr(0.9), TargetUnit: "mM"},
			{Reagent: "extra", Volume: fptr(20), VolUnit: "uL"},
		},
	}
	_, err := ComputeReaction(in)
	if !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr, got %v", err)
	}
	if !strings.Contains(err.Error(), "110.000") {
		t.Errorf("error should report the oversized component total: %v", err)
	}
}

func TestComputeReaction_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		in   *ReactionInput
	}{
		{
			name: "zero final volume",
			in:   &ReactionInput{FinalVolume: 0, FinalVolUnit: "uL"},
		},
		{
			name: "zero stock on target row",
			in: &ReactionInput{FinalVolume: 10, FinalVolUnit: "uL", Lines: []LineInput{
				{Reagent: "x", StockConc: 0, StockUnit: "mM", TargetConc: fptr(1), TargetUnit: "mM"},
			}},
		},
		{
			name: "negative target",
			in: &ReactionInput{FinalVolume: 10, FinalVolUnit: "uL", Lines: []LineInput{
				{Reagent: "x", StockConc: 10, StockUnit: "mM", TargetConc: fptr(-1), TargetUnit: "mM"},
			}},
		},
		{
			name: "unknown unit",
			in: &ReactionInput{FinalVolume: 10, FinalVolUnit: "uL", Lines: []LineInput{
				{Reagent: "x", StockConc: 10, StockUnit: "mg/mL", TargetConc: fptr(1), TargetUnit: "mM"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeReaction(tt.in); !errors.Is(err, code.ParamErr) {
				t.Fatalf("expected ParamErr, got %v", err)
			}
		})
	}
}

func TestComputeReaction_Deterministic(t *testing.T) {
	in := &ReactionInput{
		FinalVolume:  50,
		FinalVolUnit: "uL",
		Lines: []LineInput{
			{Reagent: "Tris-HCl", StockConc: 1, StockUnit: "M", TargetConc: fptr(50), TargetUnit: "mM"},
			{Reagent: "dye", StockConc: 10, StockUnit: "mM", Volume: fptr(2), VolUnit: "uL"},
		},
	}
	a, err := ComputeReaction(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ComputeReaction(in)
	if err != nil {
		t.Fatal(err)
	}
	if a.TotalUL != b.TotalUL || a.FillUL != b.FillUL || len(a.Lines) != len(b.Lines) {
		t.Fatalf("same input produced different results: %+v vs %+v", a, b)
	}
	for i := range a.Lines {
		if a.Lines[i].VolumeUL != b.Lines[i].VolumeUL {
			t.Fatalf("line %d volume differs between runs", i+1)
		}
	}
}

func TestAssemble_Mix(t *testing.T) {
	in := &AssembleInput{
		DNAConc:      100,
		DNAConcUnit:  "uM",
		DyeConc:      10,
		DyeConcUnit:  "mM",
		TargetAmount: 1,
		AmountUnit:   "nmol",
		Ratio:        5,
		FinalVolume:  50,
		FinalVolUnit: "uL",
	}

	got, err := Assemble(in)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got.DNAVolumeUL, 10) {
		t.Errorf("dna volume = %v, want 10", got.DNAVolumeUL)
	}
	if !approx(got.DyeVolumeUL, 0.5) {
		t.Errorf("dye volume = %v, want 0.5", got.DyeVolumeUL)
	}
	if !approx(got.DiluentVolumeUL, 39.5) {
		t.Errorf("diluent volume = %v, want 39.5", got.DiluentVolumeUL)
	}
	if !approx(got.FinalConcUM, 20) {
		t.Errorf("final concentration = %v uM, want 20", got.FinalConcUM)
	}

	// the picked volumes must deliver the requested moles back
	dnaMM, _ := ToMM(in.DNAConc, in.DNAConcUnit)
	dyeMM, _ := ToMM(in.DyeConc, in.DyeConcUnit)
	if !approx(got.DNAVolumeUL*dnaMM, 1) {
		t.Errorf("dna volume delivers %v nmol, want 1", got.DNAVolumeUL*dnaMM)
	}
	if !approx(got.DyeVolumeUL*dyeMM, 5) {
		t.Errorf("dye volume delivers %v nmol, want ratio*amount = 5", got.DyeVolumeUL*dyeMM)
	}
}

func TestAssemble_ExceedsFinalVolume(t *testing.T) {
	// 10 nmol of 100 uM DNA alone needs 100 uL, far over the 50 uL asked for
	in := &AssembleInput{
		DNAConc:      100,
		DNAConcUnit:  "uM",
		DyeConc:      10,
		DyeConcUnit:  "mM",
		TargetAmount: 10,
		AmountUnit:   "nmol",
		Ratio:        20,
		FinalVolume:  50,
		FinalVolUnit: "uL",
	}
	_, err := Assemble(in)
	if !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr, got %v", err)
	}
	if !strings.Contains(err.Error(), "120.000") {
		t.Errorf("error should report the 120 uL minimum: %v", err)
	}
}

func TestAssemble_RejectsNonPositiveInputs(t *testing.T) {
	base := AssembleInput{
		DNAConc: 100, DNAConcUnit: "uM",
		DyeConc: 10, DyeConcUnit: "mM",
		TargetAmount: 1, AmountUnit: "nmol",
		Ratio:       5,
		FinalVolume: 50, FinalVolUnit: "uL",
	}
	tests := []struct {
		name   string
		mutate func(*AssembleInput)
	}{
		{"zero dna conc", func(in *AssembleInput) { in.DNAConc = 0 }},
		{"zero dye conc", func(in *AssembleInput) { in.DyeConc = 0 }},
		{"zero amount", func(in *AssembleInput) { in.TargetAmount = 0 }},
		{"negative ratio", func(in *AssembleInput) { in.Ratio = -1 }},
		{"zero final volume", func(in *AssembleInput) { in.FinalVolume = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			if _, err := Assemble(&in); !errors.Is(err, code.ParamErr) {
				t.Fatalf("expected ParamErr, got %v", err)
			}
		})
	}
}
