package photometry

import (
	"context"
	"time"

	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
)

// LabelingComputeReq carries one set of nanodrop readings. The correction
// factor resolves in order: explicit CF, the stored factor for DyeName at
// TargetWavelength, zero. The optional blocks (A260/A280 pair, ethanol
// precipitation triple) are evaluated only when fully supplied.
type LabelingComputeReq struct {
	TargetName       string   `json:"target_name"`
	TargetEpsilon    float64  `json:"target_epsilon" binding:"required"`
	ATarget          float64  `json:"a_target" binding:"required"`
	DyeName          string   `json:"dye_name"`
	DyeEpsilon       float64  `json:"dye_epsilon" binding:"required"`
	ADye             float64  `json:"a_dye" binding:"required"`
	CF               *float64 `json:"cf"`
	TargetWavelength int      `json:"target_wavelength"`

	A260 *float64 `json:"a260"`
	A280 *float64 `json:"a280"`

	EtohInitialNmol *float64 `json:"etoh_initial_nmol"`
	EtohUMAfter     *float64 `json:"etoh_um_after"`
	EtohVolumeUL    *float64 `json:"etoh_volume_ul"`
}

type LabelingResp struct {
	TargetUM float64 `json:"target_um"`
	DyeUM    float64 `json:"dye_um"`
	Ratio    float64 `json:"ratio"`
	Purity   float64 `json:"purity"`
	CFUsed   float64 `json:"cf_used"`

	UVPurity          *float64 `json:"uv_purity,omitempty"`
	EtohRecoveredNmol *float64 `json:"etoh_recovered_nmol,omitempty"`
	EtohEfficiency    *float64 `json:"etoh_efficiency,omitempty"`
}

type SaveLabelingReq struct {
	LabelingComputeReq
	ReactionUUID uuid.UUID `json:"reaction_uuid" binding:"required"`
	Title        string    `json:"title"`
	Note         string    `json:"note"`
}

type ListRecordReq struct {
	common.PageReq
	Title     string `form:"title"`
	CreatedBy string `form:"created_by"`
}

type RecordUUIDReq struct {
	UUID uuid.UUID `uri:"uuid" binding:"required"`
}

type RecordResp struct {
	UUID         uuid.UUID `json:"uuid"`
	ReactionUUID uuid.UUID `json:"reaction_uuid"`
	Title        string    `json:"title"`
	CreatedBy    string    `json:"created_by"`

	TargetName    string  `json:"target_name"`
	TargetEpsilon float64 `json:"target_epsilon"`
	ATarget       float64 `json:"a_target"`
	DyeName       string  `json:"dye_name"`
	DyeEpsilon    float64 `json:"dye_epsilon"`
	ADye          float64 `json:"a_dye"`
	CFUsed        float64 `json:"cf_used"`

	TargetUM float64 `json:"target_um"`
	DyeUM    float64 `json:"dye_um"`
	Ratio    float64 `json:"ratio"`
	Purity   float64 `json:"purity"`

	A260     *float64 `json:"a260,omitempty"`
	A280     *float64 `json:"a280,omitempty"`
	UVPurity *float64 `json:"uv_purity,omitempty"`

	EtohInitialNmol   *float64 `json:"etoh_initial_nmol,omitempty"`
	EtohRecoveredNmol *float64 `json:"etoh_recovered_nmol,omitempty"`
	EtohEfficiency    *float64 `json:"etoh_efficiency,omitempty"`

	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type EpsilonReq struct {
	Name       string  `json:"name" binding:"required"`
	Wavelength int     `json:"wavelength" binding:"required"`
	Epsilon    float64 `json:"epsilon" binding:"required"`
	Note       string  `json:"note"`
}

type EpsilonKeyReq struct {
	Name       string `form:"name" binding:"required"`
	Wavelength int    `form:"wavelength" binding:"required"`
}

type EpsilonResp struct {
	Name       string  `json:"name"`
	Wavelength int     `json:"wavelength"`
	Epsilon    float64 `json:"epsilon"`
	Note       string  `json:"note,omitempty"`
}

type CorrectionFactorReq struct {
	DyeName          string  `json:"dye_name" binding:"required"`
	TargetWavelength int     `json:"target_wavelength" binding:"required"`
	Factor           float64 `json:"factor"`
	Note             string  `json:"note"`
}

type CorrectionFactorResp struct {
	DyeName          string  `json:"dye_name"`
	TargetWavelength int     `json:"target_wavelength"`
	Factor           float64 `json:"factor"`
	Note             string  `json:"note,omitempty"`
}

type Service interface {
	ComputeLabeling(ctx context.Context, req *LabelingComputeReq) (*LabelingResp, error)
	SaveLabeling(ctx context.Context, req *SaveLabelingReq) (*RecordResp, error)
	ListRecords(ctx context.Context, req *ListRecordReq) (*common.PageResp[[]*RecordResp], error)
	GetRecord(ctx context.Context, id uuid.UUID) (*RecordResp, error)
	DeleteRecord(ctx context.Context, id uuid.UUID) error

	UpsertEpsilon(ctx context.Context, req *EpsilonReq) (*EpsilonResp, error)
	ListEpsilons(ctx context.Context) ([]*EpsilonResp, error)
	DeleteEpsilon(ctx context.Context, req *EpsilonKeyReq) error

	UpsertCorrectionFactor(ctx context.Context, req *CorrectionFactorReq) (*CorrectionFactorResp, error)
	ListCorrectionFactors(ctx context.Context) ([]*CorrectionFactorResp, error)
}
