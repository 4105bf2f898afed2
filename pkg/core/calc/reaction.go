package calc

import (
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
)

// LineInput is one reagent row of a reaction being authored. Exactly one of
// TargetConc and Volume may be set; a row with neither is skipped. StockUUID
// is carried through untouched so callers can keep computed rows tied to
// registered stocks.
type LineInput struct {
	Reagent    string
	StockUUID  *uuid.UUID
	StockConc  float64
	StockUnit  string
	TargetConc *float64
	TargetUnit string
	Volume     *float64
	VolUnit    string
	Note       string
}

type ReactionInput struct {
	FinalVolume  float64
	FinalVolUnit string
	Lines        []LineInput
}

// Line is one computed reagent row. LineNo keeps the position of the source
// row so errors and results line up with the form the user edited.
type Line struct {
	LineNo     int        `json:"line_no"`
	Reagent    string     `json:"reagent"`
	StockUUID  *uuid.UUID `json:"stock_uuid,omitempty"`
	StockConc  float64    `json:"stock_conc"`
	StockUnit  string     `json:"stock_unit"`
	TargetConc *float64   `json:"target_conc,omitempty"`
	TargetUnit string     `json:"target_unit,omitempty"`
	VolumeUL   float64    `json:"volume"`
	AmountNmol *float64   `json:"amount_nmol,omitempty"`
	Note       string     `json:"note,omitempty"`
}

type ReactionResult struct {
	FinalUL float64 `json:"final_volume"`
	TotalUL float64 `json:"total_volume"`
	FillUL  float64 `json:"fill_volume"`
	Lines   []Line  `json:"lines"`
}

// ComputeReaction evaluates a whole reaction table against its final volume.
// Target-driven rows are diluted by C1V1=C2V2, volume-driven rows are taken
// as entered; at most one volume-driven row may accompany target rows. The
// component total must not exceed the final volume, the remainder is the
// diluent fill.
func ComputeReaction(in *ReactionInput) (*ReactionResult, error) {
	if in.FinalVolume <= 0 {
		return nil, code.ParamErr.WithMsg("final volume must be positive")
	}
	finalUL, err := ToUL(in.FinalVolume, in.FinalVolUnit)
	if err != nil {
		return nil, err
	}

	targetRows, volumeRows := 0, 0
	for i := range in.Lines {
		row := &in.Lines[i]
		if row.TargetConc != nil && row.Volume != nil {
			return nil, code.ParamErr.WithMsgf("line %d: target concentration and volume are both set", i+1)
		}
		switch {
		case row.TargetConc != nil:
			targetRows++
		case row.Volume != nil:
			volumeRows++
		}
	}
	if targetRows > 0 && volumeRows > 1 {
		return nil, code.ParamErr.WithMsg("at most one volume-driven line may accompany target-driven lines")
	}

	result := &ReactionResult{FinalUL: finalUL}
	for i := range in.Lines {
		row := &in.Lines[i]
		if row.TargetConc == nil && row.Volume == nil {
			continue
		}

		line := Line{
			LineNo:     i + 1,
			Reagent:    row.Reagent,
			StockUUID:  row.StockUUID,
			StockConc:  row.StockConc,
			StockUnit:  row.StockUnit,
			TargetConc: row.TargetConc,
			TargetUnit: row.TargetUnit,
			Note:       row.Note,
		}

		if row.TargetConc != nil {
			stockMM, err := ToMM(row.StockConc, row.StockUnit)
			if err != nil {
				return nil, code.ParamErr.WithMsgf("line %d: %v", i+1, err)
			}
			targetMM, err := ToMM(*row.TargetConc, row.TargetUnit)
			if err != nil {
				return nil, code.ParamErr.WithMsgf("line %d: %v", i+1, err)
			}
			if stockMM <= 0 {
				return nil, code.ParamErr.WithMsgf("line %d: stock concentration must be positive", i+1)
			}
			if targetMM < 0 {
				return nil, code.ParamErr.WithMsgf("line %d: target concentration must not be negative", i+1)
			}
			volUL, err := StockVolumeUL(stockMM, targetMM, finalUL)
			if err != nil {
				return nil, code.ParamErr.WithMsgf("line %d: %v", i+1, err)
			}
			line.VolumeUL = volUL
			amount := AmountNmol(targetMM, finalUL)
			line.AmountNmol = &amount
		} else {
			volUL, err := ToUL(*row.Volume, row.VolUnit)
			if err != nil {
				return nil, code.ParamErr.WithMsgf("line %d: %v", i+1, err)
			}
			if volUL < 0 {
				return nil, code.ParamErr.WithMsgf("line %d: volume must not be negative", i+1)
			}
			line.VolumeUL = volUL
			if stockMM, err := ToMM(row.StockConc, row.StockUnit); err == nil && stockMM > 0 {
				amount := AmountNmol(stockMM, volUL)
				line.AmountNmol = &amount
			}
		}

		result.TotalUL += line.VolumeUL
		result.Lines = append(result.Lines, line)
	}

	if result.TotalUL-finalUL > VolTolerance {
		return nil, code.ParamErr.WithMsgf(
			"total component volume %.3f uL exceeds final volume %.3f uL",
			result.TotalUL, finalUL)
	}
	result.FillUL = finalUL - result.TotalUL
	if result.FillUL < 0 {
		result.FillUL = 0
	}
	return result, nil
}

// AssembleInput describes one DNA-dye labeling mix: how much DNA to label,
// the molar excess of dye over DNA, and the final reaction volume.
type AssembleInput struct {
	DNAConc      float64
	DNAConcUnit  string
	DyeConc      float64
	DyeConcUnit  string
	TargetAmount float64
	AmountUnit   string
	Ratio        float64
	FinalVolume  float64
	FinalVolUnit string
}

type AssembleResult struct {
	DNAVolumeUL     float64 `json:"dna_volume"`
	DyeVolumeUL     float64 `json:"dye_volume"`
	DiluentVolumeUL float64 `json:"diluent_volume"`
	FinalConcUM     float64 `json:"final_concentration"`
}

// Assemble computes the two-stock labeling mix. All numeric inputs must be
// positive; when the stocks alone overflow the final volume the call fails
// and reports the smallest final volume that would fit.
func Assemble(in *AssembleInput) (*AssembleResult, error) {
	switch {
	case in.DNAConc <= 0:
		return nil, code.ParamErr.WithMsg("dna stock concentration must be positive")
	case in.DyeConc <= 0:
		return nil, code.ParamErr.WithMsg("dye stock concentration must be positive")
	case in.TargetAmount <= 0:
		return nil, code.ParamErr.WithMsg("target amount must be positive")
	case in.Ratio <= 0:
		return nil, code.ParamErr.WithMsg("dye:dna ratio must be positive")
	case in.FinalVolume <= 0:
		return nil, code.ParamErr.WithMsg("final volume must be positive")
	}

	dnaMM, err := ToMM(in.DNAConc, in.DNAConcUnit)
	if err != nil {
		return nil, err
	}
	dyeMM, err := ToMM(in.DyeConc, in.DyeConcUnit)
	if err != nil {
		return nil, err
	}
	nmol, err := ToNmol(in.TargetAmount, in.AmountUnit)
	if err != nil {
		return nil, err
	}
	finalUL, err := ToUL(in.FinalVolume, in.FinalVolUnit)
	if err != nil {
		return nil, err
	}

	dnaUL := nmol / dnaMM
	dyeUL := in.Ratio * nmol / dyeMM
	if dnaUL+dyeUL-finalUL > VolTolerance {
		return nil, code.ParamErr.WithMsgf(
			"stock volumes %.3f uL exceed final volume %.3f uL; raise the final volume to at least %.3f uL",
			dnaUL+dyeUL, finalUL, dnaUL+dyeUL)
	}

	diluent := finalUL - dnaUL - dyeUL
	if diluent < 0 {
		diluent = 0
	}
	return &AssembleResult{
		DNAVolumeUL:     dnaUL,
		DyeVolumeUL:     dyeUL,
		DiluentVolumeUL: diluent,
		FinalConcUM:     1000 * nmol / finalUL,
	}, nil
}
