package repo

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

type TemplateQuery struct {
	CreatedBy string
	Name      string // substring match, case-insensitive
	Offset    int
	Limit     int
}

type TemplateRepo interface {
	Tx

	CreateTemplate(ctx context.Context, tpl *model.Template) error
	BatchCreateTemplateItems(ctx context.Context, items []*model.TemplateItem) error
	GetTemplateByUUID(ctx context.Context, id uuid.UUID) (*model.Template, error)
	GetTemplateByName(ctx context.Context, createdBy string, name string) (*model.Template, error)
	GetTemplateItems(ctx context.Context, templateID int64) ([]*model.TemplateItem, error)
	ListTemplates(ctx context.Context, q *TemplateQuery) ([]*model.Template, int64, error)
	UpdateTemplateByUUID(ctx context.Context, id uuid.UUID, data map[string]any) error
	DeleteTemplateItems(ctx context.Context, templateID int64) error
	DeleteTemplate(ctx context.Context, id int64) error
}
