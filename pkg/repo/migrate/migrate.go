package migrate

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/middleware/db"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

func Table(ctx context.Context) error {
	d := db.DB().DBWithContext(ctx)
	models := []any{
		&model.Stock{},
		&model.Template{},
		&model.TemplateItem{},
		&model.Plan{},
		&model.Reaction{},
		&model.ReactionItem{},
		&model.Epsilon{},
		&model.CorrectionFactor{},
		&model.LabelingRecord{},
	}
	for _, m := range models {
		if err := d.AutoMigrate(m); err != nil {
			logger.Errorf(ctx, "migrate table err: %+v", err)
			return err
		}
	}
	return nil
}
