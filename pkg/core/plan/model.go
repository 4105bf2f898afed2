package plan

import (
	"context"
	"time"

	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/core/reaction"
)

// ReactionReq is one reaction card to compute and save. Lines follow the
// live-form shape so a card the form previewed can be submitted unchanged.
type ReactionReq struct {
	Name         string              `json:"name"`
	FinalVolume  float64             `json:"final_volume" binding:"required"`
	FinalVolUnit string              `json:"final_vol_unit"`
	Lines        []*reaction.LineReq `json:"lines" binding:"required"`
}

type CreatePlanReq struct {
	Title     string         `json:"title" binding:"required"`
	Category  string         `json:"category"`
	Note      string         `json:"note"`
	Reactions []*ReactionReq `json:"reactions"`
}

type ListPlanReq struct {
	common.PageReq
	Title     string `form:"title"`
	Category  string `form:"category"`
	CreatedBy string `form:"created_by"`
}

type PlanUUIDReq struct {
	UUID uuid.UUID `uri:"uuid" binding:"required"`
}

// UpdatePlanReq patches plan metadata. Nil fields stay untouched; saved
// reaction cards are never edited in place, only appended or deleted.
type UpdatePlanReq struct {
	UUID     uuid.UUID `json:"-"`
	Title    *string   `json:"title"`
	Category *string   `json:"category"`
	Note     *string   `json:"note"`
}

type AppendReactionReq struct {
	PlanUUID uuid.UUID    `json:"-"`
	Reaction *ReactionReq `json:"reaction" binding:"required"`
}

type ReactionLineResp struct {
	LineNo     int        `json:"line_no"`
	Reagent    string     `json:"reagent"`
	StockUUID  *uuid.UUID `json:"stock_uuid,omitempty"`
	StockLabel string     `json:"stock_label,omitempty"`
	StockConc  float64    `json:"stock_conc"`
	StockUnit  string     `json:"stock_unit"`
	TargetConc *float64   `json:"target_conc,omitempty"`
	TargetUnit string     `json:"target_unit,omitempty"`
	VolumeUL   float64    `json:"volume"`
	AmountNmol *float64   `json:"amount_nmol,omitempty"`
	Note       string     `json:"note,omitempty"`
}

type ReactionResp struct {
	UUID         uuid.UUID           `json:"uuid"`
	Name         string              `json:"name"`
	FinalVolume  float64             `json:"final_volume"`
	FinalVolUnit string              `json:"final_vol_unit"`
	FillVolume   float64             `json:"fill_volume"`
	CreatedBy    string              `json:"created_by"`
	Lines        []*ReactionLineResp `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
}

type PlanResp struct {
	UUID      uuid.UUID       `json:"uuid"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	CreatedBy string          `json:"created_by"`
	Note      string          `json:"note,omitempty"`
	Reactions []*ReactionResp `json:"reactions,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExportResp is the JSON attachment of a plan. Reaction lines include the
// trailing D.W. fill row so the file reads like the bench protocol.
type ExportResp struct {
	Title       string          `json:"title"`
	Category    string          `json:"category,omitempty"`
	CreatedBy   string          `json:"created_by"`
	Note        string          `json:"note,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Reactions   []*ReactionResp `json:"reactions"`
}

type Service interface {
	CreatePlan(ctx context.Context, req *CreatePlanReq) (*PlanResp, error)
	ListPlans(ctx context.Context, req *ListPlanReq) (*common.PageResp[[]*PlanResp], error)
	GetPlan(ctx context.Context, id uuid.UUID) (*PlanResp, error)
	UpdatePlan(ctx context.Context, req *UpdatePlanReq) (*PlanResp, error)
	AppendReaction(ctx context.Context, req *AppendReactionReq) (*ReactionResp, error)
	DeleteReaction(ctx context.Context, id uuid.UUID) error
	DeletePlan(ctx context.Context, id uuid.UUID) error
	ExportPlan(ctx context.Context, id uuid.UUID) (*ExportResp, error)
}
