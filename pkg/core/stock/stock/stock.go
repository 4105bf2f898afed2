package stock

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	r "github.com/redis/go-redis/v9"

	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/core/calc"
	"github.com/jwhong1020/LabCalc/pkg/core/notify"
	"github.com/jwhong1020/LabCalc/pkg/core/notify/events"
	"github.com/jwhong1020/LabCalc/pkg/core/stock"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/middleware/redis"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	cStore "github.com/jwhong1020/LabCalc/pkg/repo/compound"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
	sStore "github.com/jwhong1020/LabCalc/pkg/repo/stock"
	"github.com/jwhong1020/LabCalc/pkg/utils"
)

type stockImpl struct {
	stockStore repo.StockRepo
	compound   repo.CompoundRepo
	rClient    r.Cmdable
	msgCenter  notify.MsgCenter
}

func NewStock() stock.Service {
	return &stockImpl{
		stockStore: sStore.NewStockImpl(),
		compound:   cStore.NewPubChemRepo(),
		rClient:    redis.GetClient(),
		msgCenter:  events.NewEvents(),
	}
}

func (s *stockImpl) CreateStock(ctx context.Context, req *stock.CreateStockReq) (*stock.StockResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	conc, unit, err := resolveConc(req)
	if err != nil {
		return nil, err
	}

	label := req.Label
	if label == "" {
		label = autoLabel(req.Name, conc, unit)
	}
	if _, err := s.stockStore.GetStockByLabel(ctx, label); err == nil {
		return nil, code.StockExistErr.WithMsgf("label %q", label)
	} else if !errors.Is(err, code.RecordNotFound) {
		return nil, err
	}

	m := &model.Stock{
		Label:     label,
		Name:      req.Name,
		Kind:      req.Kind,
		Conc:      conc,
		ConcUnit:  unit,
		CreatedBy: user.Name,
		Note:      req.Note,
		Meta:      req.Meta,
	}
	if err := s.stockStore.CreateStock(ctx, m); err != nil {
		return nil, err
	}

	s.notifyChange(ctx, user.Name, m.UUID)
	return toStockResp(m), nil
}

func (s *stockImpl) ListStocks(ctx context.Context, req *stock.ListStockReq) (*common.PageResp[[]*stock.StockResp], error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	req.Normalize()

	// the unfiltered list is what reaction forms poll, serve it from cache
	if req.Name == "" && req.Kind == "" {
		all, err := s.cachedAll(ctx)
		if err != nil {
			return nil, err
		}
		total := int64(len(all))
		start := req.Offest()
		if start > len(all) {
			start = len(all)
		}
		end := start + req.PageSize
		if end > len(all) {
			end = len(all)
		}
		return &common.PageResp[[]*stock.StockResp]{
			Data:     utils.MapSlice(all[start:end], toStockResp),
			Total:    total,
			Page:     req.Page,
			PageSize: req.PageSize,
		}, nil
	}

	stocks, total, err := s.stockStore.ListStocks(ctx, &repo.StockQuery{
		Name:   req.Name,
		Kind:   req.Kind,
		Offset: req.Offest(),
		Limit:  req.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*stock.StockResp]{
		Data:     utils.MapSlice(stocks, toStockResp),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (s *stockImpl) GetStock(ctx context.Context, id uuid.UUID) (*stock.StockResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	m, err := s.stockStore.GetStockByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toStockResp(m), nil
}

func (s *stockImpl) UpdateStock(ctx context.Context, req *stock.UpdateStockReq) (*stock.StockResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	current, err := s.stockStore.GetStockByUUID(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	name, conc, unit := current.Name, current.Conc, current.ConcUnit
	updates := map[string]any{}
	if req.Name != nil {
		name = *req.Name
		updates["name"] = name
	}
	if req.Kind != nil {
		updates["kind"] = *req.Kind
	}
	if req.Conc != nil {
		if *req.Conc <= 0 {
			return nil, code.ParamErr.WithMsg("concentration must be positive")
		}
		conc = *req.Conc
		updates["conc"] = conc
	}
	if req.ConcUnit != nil {
		if _, err := calc.ToMM(1, *req.ConcUnit); err != nil {
			return nil, err
		}
		unit = *req.ConcUnit
		updates["conc_unit"] = unit
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if req.Meta != nil {
		updates["meta"] = req.Meta
	}

	label := current.Label
	switch {
	case req.Label != nil && *req.Label != "":
		label = *req.Label
	case req.Name != nil || req.Conc != nil || req.ConcUnit != nil:
		label = autoLabel(name, conc, unit)
	}
	if label != current.Label {
		if other, err := s.stockStore.GetStockByLabel(ctx, label); err == nil && other.UUID != req.UUID {
			return nil, code.StockExistErr.WithMsgf("label %q", label)
		} else if err != nil && !errors.Is(err, code.RecordNotFound) {
			return nil, err
		}
		updates["label"] = label
	}

	if len(updates) == 0 {
		return toStockResp(current), nil
	}
	if err := s.stockStore.UpdateStockByUUID(ctx, req.UUID, updates); err != nil {
		return nil, err
	}

	m, err := s.stockStore.GetStockByUUID(ctx, req.UUID)
	if err != nil {
		return nil, err
	}
	s.notifyChange(ctx, user.Name, m.UUID)
	return toStockResp(m), nil
}

func (s *stockImpl) DeleteStock(ctx context.Context, id uuid.UUID) error {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return code.UnLogin
	}

	m, err := s.stockStore.GetStockByUUID(ctx, id)
	if err != nil {
		return err
	}
	refs, err := s.stockStore.CountStockReferences(ctx, m.ID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return code.ReferencedErr.WithMsgf("stock %q is used by %d reaction lines", m.Label, refs)
	}

	if err := s.stockStore.DeleteStock(ctx, m.ID); err != nil {
		return err
	}
	s.notifyChange(ctx, user.Name, id)
	return nil
}

func (s *stockImpl) Lookup(ctx context.Context, req *stock.LookupReq) (*repo.CompoundInfo, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	return s.compound.GetCompoundByName(ctx, req.Name)
}

// resolveConc picks the stock concentration from whichever entry mode the
// request used. Amount+volume entries land in mM.
func resolveConc(req *stock.CreateStockReq) (float64, string, error) {
	if req.Conc != nil {
		if *req.Conc <= 0 {
			return 0, "", code.ParamErr.WithMsg("concentration must be positive")
		}
		if _, err := calc.ToMM(*req.Conc, req.ConcUnit); err != nil {
			return 0, "", err
		}
		return *req.Conc, req.ConcUnit, nil
	}

	if req.Amount != nil && req.Volume != nil {
		if *req.Amount <= 0 {
			return 0, "", code.ParamErr.WithMsg("amount must be positive")
		}
		concMM, err := calc.ConcFromAmount(*req.Amount, req.AmountUnit, *req.Volume, req.VolUnit)
		if err != nil {
			return 0, "", err
		}
		return concMM, "mM", nil
	}

	return 0, "", code.ParamErr.WithMsg("either conc or amount and volume are required")
}

func (s *stockImpl) cachedAll(ctx context.Context) ([]*model.Stock, error) {
	b, err := s.rClient.Get(ctx, utils.StockListKey()).Bytes()
	if err == nil {
		stocks := []*model.Stock{}
		if uErr := json.Unmarshal(b, &stocks); uErr == nil {
			return stocks, nil
		}
	} else if !errors.Is(err, r.Nil) {
		logger.Warnf(ctx, "stock cache read err: %+v", err)
	}

	stocks, err := s.stockStore.AllStocks(ctx)
	if err != nil {
		return nil, err
	}
	if b, mErr := json.Marshal(stocks); mErr == nil {
		if sErr := s.rClient.Set(ctx, utils.StockListKey(), b, utils.CacheTTL).Err(); sErr != nil {
			logger.Warnf(ctx, "stock cache write err: %+v", sErr)
		}
	}
	return stocks, nil
}

func (s *stockImpl) notifyChange(ctx context.Context, user string, id uuid.UUID) {
	if err := s.rClient.Del(ctx, utils.StockListKey()).Err(); err != nil {
		logger.Warnf(ctx, "stock cache del err: %+v", err)
	}
	if err := s.msgCenter.Broadcast(ctx, &notify.SendMsg{
		Channel:   notify.StockModify,
		UUID:      id,
		User:      user,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		logger.Warnf(ctx, "stock notify err: %+v", err)
	}
}

func toStockResp(m *model.Stock) *stock.StockResp {
	return &stock.StockResp{
		UUID:      m.UUID,
		Label:     m.Label,
		Name:      m.Name,
		Kind:      m.Kind,
		Conc:      m.Conc,
		ConcUnit:  m.ConcUnit,
		CreatedBy: m.CreatedBy,
		Note:      m.Note,
		Meta:      m.Meta,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
