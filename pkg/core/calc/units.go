// Package calc holds the closed-form stoichiometry used everywhere else:
// unit conversion, C1V1=C2V2 dilution, reaction-table computation and the
// photometry math. Everything here is a pure function of its inputs.
package calc

import "github.com/jwhong1020/LabCalc/pkg/common/code"

// VolTolerance absorbs float noise when comparing volumes in uL.
const VolTolerance = 1e-6

var (
	concToMM = map[string]float64{
		"M":  1000,
		"mM": 1,
		"uM": 1e-3,
		"nM": 1e-6,
	}
	volToUL = map[string]float64{
		"uL": 1,
		"mL": 1000,
	}
	amtToNmol = map[string]float64{
		"nmol": 1,
		"pmol": 1e-3,
		"umol": 1e3,
	}
)

func ConcUnits() []string { return []string{"M", "mM", "uM", "nM"} }
func VolUnits() []string  { return []string{"uL", "mL"} }
func AmtUnits() []string  { return []string{"nmol", "pmol", "umol"} }

func ToMM(v float64, unit string) (float64, error) {
	f, ok := concToMM[unit]
	if !ok {
		return 0, code.ParamErr.WithMsgf("unsupported concentration unit %q", unit)
	}
	return v * f, nil
}

func FromMM(vMM float64, unit string) (float64, error) {
	f, ok := concToMM[unit]
	if !ok {
		return 0, code.ParamErr.WithMsgf("unsupported concentration unit %q", unit)
	}
	return vMM / f, nil
}

func ToUL(v float64, unit string) (float64, error) {
	f, ok := volToUL[unit]
	if !ok {
		return 0, code.ParamErr.WithMsgf("unsupported volume unit %q", unit)
	}
	return v * f, nil
}

func FromUL(vUL float64, unit string) (float64, error) {
	f, ok := volToUL[unit]
	if !ok {
		return 0, code.ParamErr.WithMsgf("unsupported volume unit %q", unit)
	}
	return vUL / f, nil
}

func ToNmol(v float64, unit string) (float64, error) {
	f, ok := amtToNmol[unit]
	if !ok {
		return 0, code.ParamErr.WithMsgf("unsupported amount unit %q", unit)
	}
	return v * f, nil
}

// ConcFromAmount turns an amount plus volume into a concentration in mM
// (nmol per uL is mM exactly).
func ConcFromAmount(amount float64, amtUnit string, vol float64, volUnit string) (float64, error) {
	nmol, err := ToNmol(amount, amtUnit)
	if err != nil {
		return 0, err
	}
	ul, err := ToUL(vol, volUnit)
	if err != nil {
		return 0, err
	}
	if ul <= 0 {
		return 0, code.ParamErr.WithMsg("volume must be positive")
	}
	return nmol / ul, nil
}

// AmountNmol is concentration times volume: mM × uL = nmol.
func AmountNmol(concMM, volUL float64) float64 {
	return concMM * volUL
}

// StockVolumeUL solves C1·V1 = C2·V2 for the stock volume.
func StockVolumeUL(stockMM, targetMM, finalUL float64) (float64, error) {
	if stockMM <= 0 {
		return 0, code.ParamErr.WithMsg("stock concentration must be positive")
	}
	return targetMM * finalUL / stockMM, nil
}
