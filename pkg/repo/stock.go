package repo

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

// StockQuery filters the stock list. Zero values mean no filter.
type StockQuery struct {
	Name   string // substring match, case-insensitive
	Kind   string
	Offset int
	Limit  int
}

type StockRepo interface {
	Tx

	CreateStock(ctx context.Context, stock *model.Stock) error
	GetStockByUUID(ctx context.Context, id uuid.UUID) (*model.Stock, error)
	GetStockByLabel(ctx context.Context, label string) (*model.Stock, error)
	GetStocksByNames(ctx context.Context, names []string) ([]*model.Stock, error)
	GetStocksByIDs(ctx context.Context, ids []int64) ([]*model.Stock, error)
	AllStocks(ctx context.Context) ([]*model.Stock, error)
	ListStocks(ctx context.Context, q *StockQuery) ([]*model.Stock, int64, error)
	UpdateStockByUUID(ctx context.Context, id uuid.UUID, data map[string]any) error
	DeleteStock(ctx context.Context, id int64) error
	// CountStockReferences reports how many reaction lines point at the stock.
	CountStockReferences(ctx context.Context, stockID int64) (int64, error)
}
