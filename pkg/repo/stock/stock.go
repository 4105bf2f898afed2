package stock

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/middleware/db"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

type stockImpl struct {
	*db.Datastore
}

func NewStockImpl() repo.StockRepo {
	return &stockImpl{Datastore: db.DB()}
}

func (s *stockImpl) CreateStock(ctx context.Context, stock *model.Stock) error {
	if err := s.DBWithContext(ctx).Create(stock).Error; err != nil {
		logger.Errorf(ctx, "CreateStock err: %v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (s *stockImpl) GetStockByUUID(ctx context.Context, id uuid.UUID) (*model.Stock, error) {
	stock := &model.Stock{}
	if err := s.DBWithContext(ctx).Where("uuid = ?", id).First(stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetStockByUUID err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return stock, nil
}

func (s *stockImpl) GetStockByLabel(ctx context.Context, label string) (*model.Stock, error) {
	stock := &model.Stock{}
	if err := s.DBWithContext(ctx).Where("label = ?", label).First(stock).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetStockByLabel err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return stock, nil
}

func (s *stockImpl) GetStocksByNames(ctx context.Context, names []string) ([]*model.Stock, error) {
	if len(names) == 0 {
		return nil, nil
	}
	stocks := make([]*model.Stock, 0, len(names))
	if err := s.DBWithContext(ctx).Where("name IN ?", names).Find(&stocks).Error; err != nil {
		logger.Errorf(ctx, "GetStocksByNames err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return stocks, nil
}

func (s *stockImpl) GetStocksByIDs(ctx context.Context, ids []int64) ([]*model.Stock, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	stocks := make([]*model.Stock, 0, len(ids))
	if err := s.DBWithContext(ctx).Where("id IN ?", ids).Find(&stocks).Error; err != nil {
		logger.Errorf(ctx, "GetStocksByIDs err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return stocks, nil
}

func (s *stockImpl) AllStocks(ctx context.Context) ([]*model.Stock, error) {
	stocks := []*model.Stock{}
	if err := s.DBWithContext(ctx).Order("id DESC").Find(&stocks).Error; err != nil {
		logger.Errorf(ctx, "AllStocks err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return stocks, nil
}

func (s *stockImpl) ListStocks(ctx context.Context, q *repo.StockQuery) ([]*model.Stock, int64, error) {
	statement := s.DBWithContext(ctx).Model(&model.Stock{})
	if q.Name != "" {
		statement = statement.Where("name ILIKE ?", "%"+q.Name+"%")
	}
	if q.Kind != "" {
		statement = statement.Where("kind = ?", q.Kind)
	}

	var total int64
	if err := statement.Count(&total).Error; err != nil {
		logger.Errorf(ctx, "ListStocks count err: %v", err)
		return nil, 0, code.QueryDataErr.WithErr(err)
	}

	stocks := make([]*model.Stock, 0, q.Limit)
	if err := statement.Order("id DESC").Offset(q.Offset).Limit(q.Limit).Find(&stocks).Error; err != nil {
		logger.Errorf(ctx, "ListStocks err: %v", err)
		return nil, 0, code.QueryDataErr.WithErr(err)
	}
	return stocks, total, nil
}

func (s *stockImpl) UpdateStockByUUID(ctx context.Context, id uuid.UUID, data map[string]any) error {
	res := s.DBWithContext(ctx).Model(&model.Stock{}).Where("uuid = ?", id).Updates(data)
	if res.Error != nil {
		logger.Errorf(ctx, "UpdateStockByUUID err: %v", res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}

func (s *stockImpl) DeleteStock(ctx context.Context, id int64) error {
	res := s.DBWithContext(ctx).Where("id = ?", id).Delete(&model.Stock{})
	if res.Error != nil {
		logger.Errorf(ctx, "DeleteStock err: %v", res.Error)
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}

func (s *stockImpl) CountStockReferences(ctx context.Context, stockID int64) (int64, error) {
	var total int64
	if err := s.DBWithContext(ctx).Model(&model.ReactionItem{}).
		Where("stock_id = ?", stockID).Count(&total).Error; err != nil {
		logger.Errorf(ctx, "CountStockReferences err: %v", err)
		return 0, code.QueryDataErr.WithErr(err)
	}
	return total, nil
}
