package photometry

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/middleware/db"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

type photometryImpl struct {
	*db.Datastore
}

func NewPhotometryImpl() repo.PhotometryRepo {
	return &photometryImpl{Datastore: db.DB()}
}

func (p *photometryImpl) UpsertEpsilon(ctx context.Context, eps *model.Epsilon) error {
	statement := p.DBWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "name"},
			{Name: "wavelength"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"epsilon", "note", "updated_at"}),
	}).Create(eps)
	if statement.Error != nil {
		logger.Errorf(ctx, "UpsertEpsilon err: %v", statement.Error)
		return code.CreateDataErr.WithErr(statement.Error)
	}
	return nil
}

func (p *photometryImpl) GetEpsilon(ctx context.Context, name string, wavelength int) (*model.Epsilon, error) {
	eps := &model.Epsilon{}
	if err := p.DBWithContext(ctx).
		Where("name = ? AND wavelength = ?", name, wavelength).First(eps).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetEpsilon err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return eps, nil
}

func (p *photometryImpl) ListEpsilons(ctx context.Context) ([]*model.Epsilon, error) {
	epsilons := []*model.Epsilon{}
	if err := p.DBWithContext(ctx).Order("name, wavelength").Find(&epsilons).Error; err != nil {
		logger.Errorf(ctx, "ListEpsilons err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return epsilons, nil
}

func (p *photometryImpl) DeleteEpsilon(ctx context.Context, name string, wavelength int) error {
	res := p.DBWithContext(ctx).
		Where("name = ? AND wavelength = ?", name, wavelength).Delete(&model.Epsilon{})
	if res.Error != nil {
		logger.Errorf(ctx, "DeleteEpsilon err: %v", res.Error)
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}

func (p *photometryImpl) UpsertCorrectionFactor(ctx context.Context, cf *model.CorrectionFactor) error {
	statement := p.DBWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "dye_name"},
			{Name: "target_wavelength"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"factor", "note", "updated_at"}),
	}).Create(cf)
	if statement.Error != nil {
		logger.Errorf(ctx, "UpsertCorrectionFactor err: %v", statement.Error)
		return code.CreateDataErr.WithErr(statement.Error)
	}
	return nil
}

func (p *photometryImpl) GetCorrectionFactor(ctx context.Context, dyeName string, targetWavelength int) (*model.CorrectionFactor, error) {
	cf := &model.CorrectionFactor{}
	if err := p.DBWithContext(ctx).
		Where("dye_name = ? AND target_wavelength = ?", dyeName, targetWavelength).
		First(cf).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetCorrectionFactor err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return cf, nil
}

func (p *photometryImpl) ListCorrectionFactors(ctx context.Context) ([]*model.CorrectionFactor, error) {
	factors := []*model.CorrectionFactor{}
	if err := p.DBWithContext(ctx).Order("dye_name, target_wavelength").Find(&factors).Error; err != nil {
		logger.Errorf(ctx, "ListCorrectionFactors err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return factors, nil
}

func (p *photometryImpl) CreateRecord(ctx context.Context, record *model.LabelingRecord) error {
	if err := p.DBWithContext(ctx).Create(record).Error; err != nil {
		logger.Errorf(ctx, "CreateRecord err: %v", err)
		return code.CreateDataErr.WithErr(err)
	}
	return nil
}

func (p *photometryImpl) GetRecordByUUID(ctx context.Context, id uuid.UUID) (*model.LabelingRecord, error) {
	record := &model.LabelingRecord{}
	if err := p.DBWithContext(ctx).Where("uuid = ?", id).First(record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.RecordNotFound
		}
		logger.Errorf(ctx, "GetRecordByUUID err: %v", err)
		return nil, code.QueryDataErr.WithErr(err)
	}
	return record, nil
}

func (p *photometryImpl) ListRecords(ctx context.Context, q *repo.RecordQuery) ([]*model.LabelingRecord, int64, error) {
	statement := p.DBWithContext(ctx).Model(&model.LabelingRecord{})
	if q.Title != "" {
		statement = statement.Where("title ILIKE ?", "%"+q.Title+"%")
	}
	if q.CreatedBy != "" {
		statement = statement.Where("created_by = ?", q.CreatedBy)
	}

	var total int64
	if err := statement.Count(&total).Error; err != nil {
		logger.Errorf(ctx, "ListRecords count err: %v", err)
		return nil, 0, code.QueryDataErr.WithErr(err)
	}

	records := make([]*model.LabelingRecord, 0, q.Limit)
	if err := statement.Order("id DESC").Offset(q.Offset).Limit(q.Limit).Find(&records).Error; err != nil {
		logger.Errorf(ctx, "ListRecords err: %v", err)
		return nil, 0, code.QueryDataErr.WithErr(err)
	}
	return records, total, nil
}

func (p *photometryImpl) DeleteRecord(ctx context.Context, id int64) error {
	res := p.DBWithContext(ctx).Where("id = ?", id).Delete(&model.LabelingRecord{})
	if res.Error != nil {
		logger.Errorf(ctx, "DeleteRecord err: %v", res.Error)
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.RecordNotFound
	}
	return nil
}

func (p *photometryImpl) CountRecordsByReactionIDs(ctx context.Context, reactionIDs []int64) (int64, error) {
	if len(reactionIDs) == 0 {
		return 0, nil
	}
	var total int64
	if err := p.DBWithContext(ctx).Model(&model.LabelingRecord{}).
		Where("reaction_id IN ?", reactionIDs).Count(&total).Error; err != nil {
		logger.Errorf(ctx, "CountRecordsByReactionIDs err: %v", err)
		return 0, code.QueryDataErr.WithErr(err)
	}
	return total, nil
}
