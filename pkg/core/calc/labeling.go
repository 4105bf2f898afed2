package calc

import "github.com/jwhong1020/LabCalc/pkg/common/code"

type LabelingInput struct {
	TargetEpsilon float64
	ATarget       float64
	DyeEpsilon    float64
	ADye          float64
	CF            float64
}

type LabelingResult struct {
	TargetUM float64
	DyeUM    float64
	Ratio    float64
	Purity   float64
}

// Labeling derives concentrations from absorbance via Beer-Lambert (1 cm
// path), corrects the target channel for the dye's own absorbance, and
// returns the dye:target molar ratio plus the target purity percentage.
// A zero corrected target concentration is an input error, never Inf.
func Labeling(in *LabelingInput) (*LabelingResult, error) {
	switch {
	case in.TargetEpsilon <= 0:
		return nil, code.ParamErr.WithMsg("target extinction coefficient must be positive")
	case in.DyeEpsilon <= 0:
		return nil, code.ParamErr.WithMsg("dye extinction coefficient must be positive")
	case in.ATarget < 0 || in.ADye < 0:
		return nil, code.ParamErr.WithMsg("absorbance must not be negative")
	case in.CF < 0:
		return nil, code.ParamErr.WithMsg("correction factor must not be negative")
	}

	aCorr := in.ATarget - in.CF*in.ADye
	if aCorr < 0 {
		aCorr = 0
	}
	targetUM := aCorr / in.TargetEpsilon * 1e6
	dyeUM := in.ADye / in.DyeEpsilon * 1e6
	if targetUM <= 0 {
		return nil, code.ParamErr.WithMsg("corrected target concentration is zero")
	}

	return &LabelingResult{
		TargetUM: targetUM,
		DyeUM:    dyeUM,
		Ratio:    dyeUM / targetUM,
		Purity:   targetUM / (targetUM + dyeUM) * 100,
	}, nil
}

// UVPurity is the classic A260/A280 nucleic-acid purity check.
func UVPurity(a260, a280 float64) (float64, error) {
	if a260 < 0 || a280 < 0 {
		return 0, code.ParamErr.WithMsg("absorbance must not be negative")
	}
	if a280 == 0 {
		return 0, code.ParamErr.WithMsg("a280 must not be zero")
	}
	return a260 / a280, nil
}

// EthanolRecovery reports how much material survived an ethanol
// precipitation: the recovered amount in nmol and the recovery percentage
// against the initial amount.
func EthanolRecovery(initialNmol, umAfter, volUL float64) (float64, float64, error) {
	if initialNmol <= 0 {
		return 0, 0, code.ParamErr.WithMsg("initial amount must be positive")
	}
	if umAfter < 0 || volUL < 0 {
		return 0, 0, code.ParamErr.WithMsg("recovered concentration and volume must not be negative")
	}
	recovered := umAfter * volUL / 1000
	return recovered, recovered / initialNmol * 100, nil
}
