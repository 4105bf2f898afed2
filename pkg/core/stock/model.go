package stock

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/repo"
)

// CreateStockReq registers a reagent. The concentration comes either
// directly (Conc+ConcUnit) or as Amount+Volume, from which the
// concentration is derived in mM. Label is optional and generated from
// name and concentration when empty.
type CreateStockReq struct {
	Name       string         `json:"name" binding:"required"`
	Kind       string         `json:"kind"`
	Label      string         `json:"label"`
	Conc       *float64       `json:"conc"`
	ConcUnit   string         `json:"conc_unit"`
	Amount     *float64       `json:"amount"`
	AmountUnit string         `json:"amount_unit"`
	Volume     *float64       `json:"volume"`
	VolUnit    string         `json:"vol_unit"`
	Note       string         `json:"note"`
	Meta       datatypes.JSON `json:"meta"`
}

type StockResp struct {
	UUID      uuid.UUID      `json:"uuid"`
	Label     string         `json:"label"`
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Conc      float64        `json:"conc"`
	ConcUnit  string         `json:"conc_unit"`
	CreatedBy string         `json:"created_by"`
	Note      string         `json:"note"`
	Meta      datatypes.JSON `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ListStockReq struct {
	common.PageReq
	Name string `form:"name"`
	Kind string `form:"kind"`
}

type StockUUIDReq struct {
	UUID uuid.UUID `uri:"uuid" binding:"required"`
}

// UpdateStockReq carries only the fields to change. When name,
// concentration or unit change and no explicit label is given, the label is
// regenerated.
type UpdateStockReq struct {
	UUID     uuid.UUID      `json:"-"`
	Name     *string        `json:"name"`
	Kind     *string        `json:"kind"`
	Label    *string        `json:"label"`
	Conc     *float64       `json:"conc"`
	ConcUnit *string        `json:"conc_unit"`
	Note     *string        `json:"note"`
	Meta     datatypes.JSON `json:"meta"`
}

type LookupReq struct {
	Name string `form:"name" binding:"required"`
}

type Service interface {
	CreateStock(ctx context.Context, req *CreateStockReq) (*StockResp, error)
	ListStocks(ctx context.Context, req *ListStockReq) (*common.PageResp[[]*StockResp], error)
	GetStock(ctx context.Context, id uuid.UUID) (*StockResp, error)
	UpdateStock(ctx context.Context, req *UpdateStockReq) (*StockResp, error)
	DeleteStock(ctx context.Context, id uuid.UUID) error
	Lookup(ctx context.Context, req *LookupReq) (*repo.CompoundInfo, error)
}
