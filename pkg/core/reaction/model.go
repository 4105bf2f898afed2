package reaction

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/core/calc"
)

// Live channel actions. The form sends compute or assemble frames and the
// server answers every one of them with a result frame carrying the same seq.
const (
	ActionHello    = "hello"
	ActionCompute  = "compute"
	ActionAssemble = "assemble"
	ActionResult   = "result"
)

// LineReq is one authored row of the reaction table. A row may reference a
// registered stock by uuid, in which case concentration and reagent name are
// filled from the stock record when the form leaves them empty.
type LineReq struct {
	Reagent    string     `json:"reagent"`
	StockUUID  *uuid.UUID `json:"stock_uuid,omitempty"`
	StockConc  float64    `json:"stock_conc"`
	StockUnit  string     `json:"stock_unit"`
	TargetConc *float64   `json:"target_conc,omitempty"`
	TargetUnit string     `json:"target_unit,omitempty"`
	Volume     *float64   `json:"volume,omitempty"`
	VolUnit    string     `json:"vol_unit,omitempty"`
	Note       string     `json:"note,omitempty"`
}

type ComputeReq struct {
	FinalVolume  float64    `json:"final_volume" binding:"required"`
	FinalVolUnit string     `json:"final_vol_unit"`
	Lines        []*LineReq `json:"lines" binding:"required"`
}

type AssembleReq struct {
	DNAConc      float64 `json:"dna_conc" binding:"required"`
	DNAUnit      string  `json:"dna_unit"`
	DyeConc      float64 `json:"dye_conc" binding:"required"`
	DyeUnit      string  `json:"dye_unit"`
	Amount       float64 `json:"amount" binding:"required"`
	AmountUnit   string  `json:"amount_unit"`
	Ratio        float64 `json:"ratio" binding:"required"`
	FinalVolume  float64 `json:"final_volume" binding:"required"`
	FinalVolUnit string  `json:"final_vol_unit"`
}

// HelloData is the first frame after the upgrade. Concurrent flags that
// another live session of the same user already holds the editing claim.
type HelloData struct {
	Concurrent bool `json:"concurrent"`
}

type Service interface {
	Compute(ctx context.Context, req *ComputeReq) (*calc.ReactionResult, error)
	Assemble(ctx context.Context, req *AssembleReq) (*calc.AssembleResult, error)
	Live(ctx context.Context)
	Close(ctx context.Context)
}
