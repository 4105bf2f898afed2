package template

import (
	"context"
	"time"

	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
)

type TemplateItemReq struct {
	Reagent string `json:"reagent" binding:"required"`
	Note    string `json:"note"`
}

type CreateTemplateReq struct {
	Name         string             `json:"name" binding:"required"`
	FinalVolume  float64            `json:"final_volume"`
	FinalVolUnit string             `json:"final_vol_unit"`
	Note         string             `json:"note"`
	Items        []*TemplateItemReq `json:"items"`
}

type TemplateItemResp struct {
	LineNo  int    `json:"line_no"`
	Reagent string `json:"reagent"`
	Note    string `json:"note"`
}

type TemplateResp struct {
	UUID         uuid.UUID           `json:"uuid"`
	Name         string              `json:"name"`
	CreatedBy    string              `json:"created_by"`
	FinalVolume  float64             `json:"final_volume"`
	FinalVolUnit string              `json:"final_vol_unit"`
	Note         string              `json:"note"`
	Items        []*TemplateItemResp `json:"items,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type ListTemplateReq struct {
	common.PageReq
	Name      string `form:"name"`
	CreatedBy string `form:"created_by"`
}

type TemplateUUIDReq struct {
	UUID uuid.UUID `uri:"uuid" binding:"required"`
}

// UpdateTemplateReq: nil fields stay untouched; a non-nil Items slice
// replaces the whole item list.
type UpdateTemplateReq struct {
	UUID         uuid.UUID          `json:"-"`
	Name         *string            `json:"name"`
	FinalVolume  *float64           `json:"final_volume"`
	FinalVolUnit *string            `json:"final_vol_unit"`
	Note         *string            `json:"note"`
	Items        []*TemplateItemReq `json:"items"`
}

// ResolvedLine is a prefilled reaction line: a template item joined against
// the current stocks by exact name. Lines without a match carry only the
// reagent name.
type ResolvedLine struct {
	LineNo     int        `json:"line_no"`
	Reagent    string     `json:"reagent"`
	StockUUID  *uuid.UUID `json:"stock_uuid,omitempty"`
	StockLabel string     `json:"stock_label,omitempty"`
	StockConc  *float64   `json:"stock_conc,omitempty"`
	StockUnit  string     `json:"stock_unit,omitempty"`
	Note       string     `json:"note"`
}

type ResolveResp struct {
	UUID         uuid.UUID       `json:"uuid"`
	Name         string          `json:"name"`
	FinalVolume  float64         `json:"final_volume"`
	FinalVolUnit string          `json:"final_vol_unit"`
	Lines        []*ResolvedLine `json:"lines"`
}

type Service interface {
	CreateTemplate(ctx context.Context, req *CreateTemplateReq) (*TemplateResp, error)
	ListTemplates(ctx context.Context, req *ListTemplateReq) (*common.PageResp[[]*TemplateResp], error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*TemplateResp, error)
	UpdateTemplate(ctx context.Context, req *UpdateTemplateReq) (*TemplateResp, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	ResolveTemplate(ctx context.Context, id uuid.UUID) (*ResolveResp, error)
}
