package template

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

type templateImpl struct {
	*db.Datastore
}

func NewTemplateImpl() repo.TemplateRepo {
	return &templateImpl{Datastore: db.DB()}
}

func (t *templateImpl) CreateTemplate(ctx context.Context, tpl *model.Template) error {
	if err := t.DBWithContext(ctx).Create(tpl).Error; err != nil {
		logger.Errorf(ctx, "CreateTemplate err: %v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (t *templateImpl) BatchCreateTemplateItems(ctx context.Context, items []*model.TemplateItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := t.DBWithContext(ctx).Create(&items).Error; err != nil {
		logger.Errorf(ctx, "BatchCreateTemplateItems err: %v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (t *templateImpl) GetTemplateByUUID(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	tpl := &model.Template{}
	if err := t.DBWithContext(ctx).Where("uuid = ?", id).First(tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetTemplateByUUID err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return tpl, nil
}

func (t *templateImpl) GetTemplateByName(ctx context.Context, createdBy string, name string) (*model.Template, error) {
	tpl := &model.Template{}
	if err := t.DBWithContext(ctx).
		Where("created_by = ? AND name = ?", createdBy, name).First(tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetTemplateByName err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return tpl, nil
}

func (t *templateImpl) GetTemplateItems(ctx context.Context, templateID int64) ([]*model.TemplateItem, error) {
	items := []*model.TemplateItem{}
	if err := t.DBWithContext(ctx).
		Where("template_id = ?", templateID).Order("line_no").Find(&items).Error; err != nil {
		logger.Errorf(ctx, "GetTemplateItems err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return items, nil
}

func (t *templateImpl) ListTemplates(ctx context.Context, q *repo.TemplateQuery) ([]*model.Template, int64, error) {
	statement := t.DBWithContext(ctx).Model(&model.Template{})
	if q.CreatedBy != "" {
		statement = statement.Where("created_by = ?", q.CreatedBy)
	}
	if q.Name != "" {
		statement = statement.Where("name ILIKE ?", "%"+q.Name+"%")
	}

	var total int64
	if err := statement.Count(&total).Error; err != nil {
		logger.Errorf(ctx, "ListTemplates count err: %v", err)
		return nil, 0, code.QueryDataErr.WithErr(err)
	}

	tpls := make([]*model.Template, 0, q.Limit)
	if err := statement.Order("id DESC").Offset(q.Offset).Limit(q.Limit).Find(&tpls).Error; err != nil {
		logger.Errorf(ctx, "ListTemplates err: %v", err)
		return nil, 0, code.QueryDataErr.WithErr(err)
	}
	return tpls, total, nil
}

func (t *templateImpl) UpdateTemplateByUUID(ctx context.Context, id uuid.UUID, data map[string]any) error {
	res := t.DBWithContext(ctx).Model(&model.Template{}).Where("uuid = ?", id).Updates(data)
	if res.Error != nil {
		logger.Errorf(ctx, "UpdateTemplateByUUID err: %v", res.Error)
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}

func (t *templateImpl) DeleteTemplateItems(ctx context.Context, templateID int64) error {
	if err := t.DBWithContext(ctx).
		Where("template_id = ?", templateID).Delete(&model.TemplateItem{}).Error; err != nil {
		logger.Errorf(ctx, "DeleteTemplateItems err: %v", err)
		return code.DeleteDataErr.WithErr(err)
	}
	return nil
}

func (t *templateImpl) DeleteTemplate(ctx context.Context, id int64) error {
	res := t.DBWithContext(ctx).Where("id = ?", id).Delete(&model.Template{})
	if res.Error != nil {
		logger.Errorf(ctx, "DeleteTemplate err: %v", res.Error)
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}
