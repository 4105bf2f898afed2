package plan

import (
	"context"
	"time"

	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/core/calc"
	"github.com/jwhong1020/LabCalc/pkg/core/notify"
	"github.com/jwhong1020/LabCalc/pkg/core/notify/events"
	"github.com/jwhong1020/LabCalc/pkg/core/plan"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
	phStore "github.com/jwhong1020/LabCalc/pkg/repo/photometry"
	pStore "github.com/jwhong1020/LabCalc/pkg/repo/plan"
	sStore "github.com/jwhong1020/LabCalc/pkg/repo/stock"
	"github.com/jwhong1020/LabCalc/pkg/utils"
)

type planImpl struct {
	planStore  repo.PlanRepo
	stockStore repo.StockRepo
	photoStore repo.PhotometryRepo
	msgCenter  notify.MsgCenter
}

func NewPlan() plan.Service {
	return &planImpl{
		planStore:  pStore.NewPlanImpl(),
		stockStore: sStore.NewStockImpl(),
		photoStore: phStore.NewPhotometryImpl(),
		msgCenter:  events.NewEvents(),
	}
}

// card is one computed reaction ready to persist.
type card struct {
	reaction *model.Reaction
	items    []*model.ReactionItem
}

func (p *planImpl) CreatePlan(ctx context.Context, req *plan.CreatePlanReq) (*plan.PlanResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	cards := make([]*card, 0, len(req.Reactions))
	for _, r := range req.Reactions {
		c, err := p.computeCard(ctx, user.Name, r)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}

	m := &model.Plan{
		Title:     req.Title,
		Category:  req.Category,
		CreatedBy: user.Name,
		Note:      req.Note,
	}
	err := p.planStore.ExecTx(ctx, func(ctx context.Context) error {
		if err := p.planStore.CreatePlan(ctx, m); err != nil {
			return err
		}
		for _, c := range cards {
			c.reaction.PlanID = m.ID
			if err := p.planStore.CreateReaction(ctx, c.reaction); err != nil {
				return err
			}
			for _, it := range c.items {
				it.ReactionID = c.reaction.ID
			}
			if err := p.planStore.BatchCreateReactionItems(ctx, c.items); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.notifyChange(ctx, user.Name, m.UUID)
	return p.GetPlan(ctx, m.UUID)
}

func (p *planImpl) ListPlans(ctx context.Context, req *plan.ListPlanReq) (*common.PageResp[[]*plan.PlanResp], error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	req.Normalize()

	plans, total, err := p.planStore.ListPlans(ctx, &repo.PlanQuery{
		Title:     req.Title,
		Category:  req.Category,
		CreatedBy: req.CreatedBy,
		Offset:    req.Offest(),
		Limit:     req.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*plan.PlanResp]{
		Data:     utils.MapSlice(plans, toPlanResp),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (p *planImpl) GetPlan(ctx context.Context, id uuid.UUID) (*plan.PlanResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	m, err := p.planStore.GetPlanByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	reactions, err := p.loadReactions(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	resp := toPlanResp(m)
	resp.Reactions = reactions
	return resp, nil
}

func (p *planImpl) UpdatePlan(ctx context.Context, req *plan.UpdatePlanReq) (*plan.PlanResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	m, err := p.planStore.GetPlanByUUID(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, code.ParamErr.WithMsg("title must not be empty")
		}
		updates["title"] = *req.Title
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if len(updates) > 0 {
		if err := p.planStore.UpdatePlanByUUID(ctx, req.UUID, updates); err != nil {
			return nil, err
		}
		p.notifyChange(ctx, user.Name, m.UUID)
	}
	return p.GetPlan(ctx, req.UUID)
}

func (p *planImpl) AppendReaction(ctx context.Context, req *plan.AppendReactionReq) (*plan.ReactionResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	m, err := p.planStore.GetPlanByUUID(ctx, req.PlanUUID)
	if err != nil {
		return nil, err
	}
	c, err := p.computeCard(ctx, user.Name, req.Reaction)
	if err != nil {
		return nil, err
	}
	c.reaction.PlanID = m.ID

	err = p.planStore.ExecTx(ctx, func(ctx context.Context) error {
		if err := p.planStore.CreateReaction(ctx, c.reaction); err != nil {
			return err
		}
		for _, it := range c.items {
			it.ReactionID = c.reaction.ID
		}
		return p.planStore.BatchCreateReactionItems(ctx, c.items)
	})
	if err != nil {
		return nil, err
	}

	p.notifyChange(ctx, user.Name, m.UUID)
	return p.reactionResp(ctx, c.reaction)
}

func (p *planImpl) DeleteReaction(ctx context.Context, id uuid.UUID) error {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return code.UnLogin
	}

	rx, err := p.planStore.GetReactionByUUID(ctx, id)
	if err != nil {
		return err
	}
	n, err := p.photoStore.CountRecordsByReactionIDs(ctx, []int64{rx.ID})
	if err != nil {
		return err
	}
	if n > 0 {
		return code.ReferencedErr.WithMsgf("reaction has %d labeling records", n)
	}

	err = p.planStore.ExecTx(ctx, func(ctx context.Context) error {
		if err := p.planStore.DeleteReactionItems(ctx, rx.ID); err != nil {
			return err
		}
		return p.planStore.DeleteReaction(ctx, rx.ID)
	})
	if err != nil {
		return err
	}

	p.notifyChange(ctx, user.Name, rx.UUID)
	return nil
}

func (p *planImpl) DeletePlan(ctx context.Context, id uuid.UUID) error {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return code.UnLogin
	}

	m, err := p.planStore.GetPlanByUUID(ctx, id)
	if err != nil {
		return err
	}
	rxs, err := p.planStore.GetReactionsByPlanID(ctx, m.ID)
	if err != nil {
		return err
	}
	rxIDs := utils.MapSlice(rxs, func(r *model.Reaction) int64 { return r.ID })
	if len(rxIDs) > 0 {
		n, err := p.photoStore.CountRecordsByReactionIDs(ctx, rxIDs)
		if err != nil {
			return err
		}
		if n > 0 {
			return code.ReferencedErr.WithMsgf("plan has %d labeling records", n)
		}
	}

	err = p.planStore.ExecTx(ctx, func(ctx context.Context) error {
		for _, rx := range rxs {
			if err := p.planStore.DeleteReactionItems(ctx, rx.ID); err != nil {
				return err
			}
			if err := p.planStore.DeleteReaction(ctx, rx.ID); err != nil {
				return err
			}
		}
		return p.planStore.DeletePlan(ctx, m.ID)
	})
	if err != nil {
		return err
	}

	p.notifyChange(ctx, user.Name, m.UUID)
	return nil
}

// ExportPlan builds the JSON attachment payload. Each reaction with a
// nonzero fill gets a trailing D.W. row so the exported table matches what
// goes on the bench.
func (p *planImpl) ExportPlan(ctx context.Context, id uuid.UUID) (*plan.ExportResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	m, err := p.planStore.GetPlanByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	reactions, err := p.loadReactions(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	for _, rx := range reactions {
		if rx.FillVolume <= 0 {
			continue
		}
		rx.Lines = append(rx.Lines, &plan.ReactionLineResp{
			LineNo:   len(rx.Lines) + 1,
			Reagent:  "D.W.",
			VolumeUL: rx.FillVolume,
		})
	}

	return &plan.ExportResp{
		Title:       m.Title,
		Category:    m.Category,
		CreatedBy:   m.CreatedBy,
		Note:        m.Note,
		GeneratedAt: time.Now(),
		Reactions:   reactions,
	}, nil
}

// computeCard runs one reaction table and turns the result into rows ready
// to persist. Lines referencing a stock inherit its name and concentration
// when left blank, exactly like the live preview.
func (p *planImpl) computeCard(ctx context.Context, createdBy string, req *plan.ReactionReq) (*card, error) {
	input := &calc.ReactionInput{
		FinalVolume:  req.FinalVolume,
		FinalVolUnit: utils.Or(req.FinalVolUnit, "uL"),
	}
	seen := map[uuid.UUID]*model.Stock{}
	for _, row := range req.Lines {
		line := calc.LineInput{
			Reagent:    row.Reagent,
			StockUUID:  row.StockUUID,
			StockConc:  row.StockConc,
			StockUnit:  row.StockUnit,
			TargetConc: row.TargetConc,
			TargetUnit: row.TargetUnit,
			Volume:     row.Volume,
			VolUnit:    row.VolUnit,
			Note:       row.Note,
		}
		if row.StockUUID != nil {
			st, ok := seen[*row.StockUUID]
			if !ok {
				var err error
				st, err = p.stockStore.GetStockByUUID(ctx, *row.StockUUID)
				if err != nil {
					return nil, err
				}
				seen[*row.StockUUID] = st
			}
			if line.Reagent == "" {
				line.Reagent = st.Name
			}
			if line.StockConc == 0 {
				line.StockConc = st.Conc
				line.StockUnit = st.ConcUnit
			}
		}
		input.Lines = append(input.Lines, line)
	}

	result, err := calc.ComputeReaction(input)
	if err != nil {
		return nil, err
	}

	rx := &model.Reaction{
		Name:         req.Name,
		FinalVolume:  req.FinalVolume,
		FinalVolUnit: input.FinalVolUnit,
		FillVolume:   result.FillUL,
		CreatedBy:    createdBy,
	}
	items := make([]*model.ReactionItem, 0, len(result.Lines))
	for i := range result.Lines {
		ln := &result.Lines[i]
		it := &model.ReactionItem{
			LineNo:     ln.LineNo,
			Reagent:    ln.Reagent,
			StockConc:  ln.StockConc,
			StockUnit:  ln.StockUnit,
			TargetConc: ln.TargetConc,
			TargetUnit: ln.TargetUnit,
			VolumeUL:   ln.VolumeUL,
			AmountNmol: ln.AmountNmol,
			Note:       ln.Note,
		}
		if ln.StockUUID != nil {
			id := seen[*ln.StockUUID].ID
			it.StockID = &id
		}
		items = append(items, it)
	}
	return &card{reaction: rx, items: items}, nil
}

func (p *planImpl) loadReactions(ctx context.Context, planID int64) ([]*plan.ReactionResp, error) {
	rxs, err := p.planStore.GetReactionsByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(rxs) == 0 {
		return nil, nil
	}

	rxIDs := utils.MapSlice(rxs, func(r *model.Reaction) int64 { return r.ID })
	items, err := p.planStore.GetReactionItems(ctx, rxIDs...)
	if err != nil {
		return nil, err
	}
	grouped, err := p.linesByReaction(ctx, items)
	if err != nil {
		return nil, err
	}

	return utils.MapSlice(rxs, func(r *model.Reaction) *plan.ReactionResp {
		return toReactionResp(r, grouped[r.ID])
	}), nil
}

func (p *planImpl) reactionResp(ctx context.Context, rx *model.Reaction) (*plan.ReactionResp, error) {
	items, err := p.planStore.GetReactionItems(ctx, rx.ID)
	if err != nil {
		return nil, err
	}
	grouped, err := p.linesByReaction(ctx, items)
	if err != nil {
		return nil, err
	}
	return toReactionResp(rx, grouped[rx.ID]), nil
}

// linesByReaction maps stored items back to response lines, resolving stock
// ids to the uuid and label the form links against.
func (p *planImpl) linesByReaction(ctx context.Context, items []*model.ReactionItem) (map[int64][]*plan.ReactionLineResp, error) {
	stockIDs := []int64{}
	for _, it := range items {
		if it.StockID != nil {
			stockIDs = append(stockIDs, *it.StockID)
		}
	}
	stocks, err := p.stockStore.GetStocksByIDs(ctx, stockIDs)
	if err != nil {
		return nil, err
	}
	byID := map[int64]*model.Stock{}
	for _, st := range stocks {
		byID[st.ID] = st
	}

	grouped := map[int64][]*plan.ReactionLineResp{}
	for _, it := range items {
		line := &plan.ReactionLineResp{
			LineNo:     it.LineNo,
			Reagent:    it.Reagent,
			StockConc:  it.StockConc,
			StockUnit:  it.StockUnit,
			TargetConc: it.TargetConc,
			TargetUnit: it.TargetUnit,
			VolumeUL:   it.VolumeUL,
			AmountNmol: it.AmountNmol,
			Note:       it.Note,
		}
		if it.StockID != nil {
			if st, ok := byID[*it.StockID]; ok {
				u := st.UUID
				line.StockUUID = &u
				line.StockLabel = st.Label
			}
		}
		grouped[it.ReactionID] = append(grouped[it.ReactionID], line)
	}
	return grouped, nil
}

func (p *planImpl) notifyChange(ctx context.Context, user string, id uuid.UUID) {
	if err := p.msgCenter.Broadcast(ctx, &notify.SendMsg{
		Channel:   notify.PlanModify,
		UUID:      id,
		User:      user,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		logger.Warnf(ctx, "plan notify err: %+v", err)
	}
}

func toPlanResp(m *model.Plan) *plan.PlanResp {
	return &plan.PlanResp{
		UUID:      m.UUID,
		Title:     m.Title,
		Category:  m.Category,
		CreatedBy: m.CreatedBy,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toReactionResp(m *model.Reaction, lines []*plan.ReactionLineResp) *plan.ReactionResp {
	return &plan.ReactionResp{
		UUID:         m.UUID,
		Name:         m.Name,
		FinalVolume:  m.FinalVolume,
		FinalVolUnit: m.FinalVolUnit,
		FillVolume:   m.FillVolume,
		CreatedBy:    m.CreatedBy,
		Lines:        lines,
		CreatedAt:    m.CreatedAt,
	}
}
