package plan

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

type planImpl struct {
	*db.Datastore
}

func NewPlanImpl() repo.PlanRepo {
	return &planImpl{Datastore: db.DB()}
}

func (p *planImpl) CreatePlan(ctx context.Context, plan *model.Plan) error {
	if err := p.DBWithContext(ctx).Create(plan).Error; err != nil {
		logger.Errorf(ctx, "CreatePlan err: %v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (p *planImpl) GetPlanByUUID(ctx context.Context, id uuid.UUID) (*model.Plan, error) {
	plan := &model.Plan{}
	if err := p.DBWithContext(ctx).Where("uuid = ?", id).First(plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetPlanByUUID err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return plan, nil
}

func (p *planImpl) ListPlans(ctx context.Context, q *repo.PlanQuery) ([]*model.Plan, int64, error) {
	statement := p.DBWithContext(ctx).Model(&model.Plan{})
	if q.Title != "" {
		statement = statement.Where("title ILIKE ?", "%"+q.Title+"%")
	}
	if q.Category != "" {
		statement = statement.Where("category = ?", q.Category)
	}
	if q.CreatedBy != "" {
		statement = statement.Where("created_by = ?", q.CreatedBy)
	}

	var total int64
	if err := statement.Count(&total).Error; err != nil {
		logger.Errorf(ctx, "ListPlans count err: %v", err)
		return nil, 0, code.QueryDataErr.WithErr(err)
	}

	plans := make([]*model.Plan, 0, q.Limit)
	if err := statement.Order("id DESC").Offset(q.Offset).Limit(q.Limit).Find(&plans).Error; err != nil {
		logger.Errorf(ctx, "ListPlans err: %v", err)
		return nil, 0, code.QueryDataErr.WithErr(err)
	}
	return plans, total, nil
}

func (p *planImpl) UpdatePlanByUUID(ctx context.Context, id uuid.UUID, data map[string]any) error {
	res := p.DBWithContext(ctx).Model(&model.Plan{}).Where("uuid = ?", id).Updates(data)
	if res.Error != nil {
		logger.Errorf(ctx, "UpdatePlanByUUID err: %v", res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}

func (p *planImpl) DeletePlan(ctx context.Context, id int64) error {
	res := p.DBWithContext(ctx).Where("id = ?", id).Delete(&model.Plan{})
	if res.Error != nil {
		logger.Errorf(ctx, "DeletePlan err: %v", res.Error)
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}

func (p *planImpl) CreateReaction(ctx context.Context, reaction *model.Reaction) error {
	if err := p.DBWithContext(ctx).Create(reaction).Error; err != nil {
		logger.Errorf(ctx, "CreateReaction err: %v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (p *planImpl) BatchCreateReactionItems(ctx context.Context, items []*model.ReactionItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := p.DBWithContext(ctx).Create(&items).Error; err != nil {
		logger.Errorf(ctx, "BatchCreateReactionItems err: %v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (p *planImpl) GetReactionByUUID(ctx context.Context, id uuid.UUID) (*model.Reaction, error) {
	reaction := &model.Reaction{}
	if err := p.DBWithContext(ctx).Where("uuid = ?", id).First(reaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetReactionByUUID err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return reaction, nil
}

func (p *planImpl) GetReactionsByIDs(ctx context.Context, ids []int64) ([]*model.Reaction, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	reactions := make([]*model.Reaction, 0, len(ids))
	if err := p.DBWithContext(ctx).Where("id IN ?", ids).Find(&reactions).Error; err != nil {
		logger.Errorf(ctx, "GetReactionsByIDs err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return reactions, nil
}

func (p *planImpl) GetReactionsByPlanID(ctx context.Context, planID int64) ([]*model.Reaction, error) {
	reactions := []*model.Reaction{}
	if err := p.DBWithContext(ctx).
		Where("plan_id = ?", planID).Order("id").Find(&reactions).Error; err != nil {
		logger.Errorf(ctx, "GetReactionsByPlanID err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return reactions, nil
}

func (p *planImpl) GetReactionItems(ctx context.Context, reactionIDs ...int64) ([]*model.ReactionItem, error) {
	if len(reactionIDs) == 0 {
		return nil, nil
	}
	items := []*model.ReactionItem{}
	if err := p.DBWithContext(ctx).
		Where("reaction_id IN ?", reactionIDs).
		Order("reaction_id, line_no").Find(&items).Error; err != nil {
		logger.Errorf(ctx, "GetReactionItems err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return items, nil
}

func (p *planImpl) DeleteReaction(ctx context.Context, id int64) error {
	res := p.DBWithContext(ctx).Where("id = ?", id).Delete(&model.Reaction{})
	if res.Error != nil {
		logger.Errorf(ctx, "DeleteReaction err: %v", res.Error)
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}

func (p *planImpl) DeleteReactionItems(ctx context.Context, reactionID int64) error {
	if err := p.DBWithContext(ctx).
		Where("reaction_id = ?", reactionID).Delete(&model.ReactionItem{}).Error; err != nil {
		logger.Errorf(ctx, "DeleteReactionItems err: %v", err)
		return code.DeleteDataErr.WithErr(err)
	}
	return nil
}
