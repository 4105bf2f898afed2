package repo

import (
	"context"

	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

type PlanQuery struct {
	Title     string // substring match, case-insensitive
	Category  string
	CreatedBy string
	Offset    int
	Limit     int
}

type PlanRepo interface {
	Tx

	CreatePlan(ctx context.Context, plan *model.Plan) error
	GetPlanByUUID(ctx context.Context, id uuid.UUID) (*model.Plan, error)
	ListPlans(ctx context.Context, q *PlanQuery) ([]*model.Plan, int64, error)
	UpdatePlanByUUID(ctx context.Context, id uuid.UUID, data map[string]any) error
	DeletePlan(ctx context.Context, id int64) error

	CreateReaction(ctx context.Context, reaction *model.Reaction) error
	BatchCreateReactionItems(ctx context.Context, items []*model.ReactionItem) error
	GetReactionByUUID(ctx context.Context, id uuid.UUID) (*model.Reaction, error)
	GetReactionsByIDs(ctx context.Context, ids []int64) ([]*model.Reaction, error)
	GetReactionsByPlanID(ctx context.Context, planID int64) ([]*model.Reaction, error)
	GetReactionItems(ctx context.Context, reactionIDs ...int64) ([]*model.ReactionItem, error)
	DeleteReaction(ctx context.Context, id int64) error
	DeleteReactionItems(ctx context.Context, reactionID int64) error
}
