package repo

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

type RecordQuery struct {
	Title     string // substring match, case-insensitive
	CreatedBy string
	Offset    int
	Limit     int
}

type PhotometryRepo interface {
	Tx

	UpsertEpsilon(ctx context.Context, eps *model.Epsilon) error
	GetEpsilon(ctx context.Context, name string, wavelength int) (*model.Epsilon, error)
	ListEpsilons(ctx context.Context) ([]*model.Epsilon, error)
	DeleteEpsilon(ctx context.Context, name string, wavelength int) error

	UpsertCorrectionFactor(ctx context.Context, cf *model.CorrectionFactor) error
	GetCorrectionFactor(ctx context.Context, dyeName string, targetWavelength int) (*model.CorrectionFactor, error)
	ListCorrectionFactors(ctx context.Context) ([]*model.CorrectionFactor, error)

	CreateRecord(ctx context.Context, record *model.LabelingRecord) error
	GetRecordByUUID(ctx context.Context, id uuid.UUID) (*model.LabelingRecord, error)
	ListRecords(ctx context.Context, q *RecordQuery) ([]*model.LabelingRecord, int64, error)
	DeleteRecord(ctx context.Context, id int64) error
	// CountRecordsByReactionIDs reports how many measurements reference the
	// given reactions, used before a reaction or plan is deleted.
	CountRecordsByReactionIDs(ctx context.Context, reactionIDs []int64) (int64, error)
}
