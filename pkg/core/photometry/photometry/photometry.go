package photometry

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
	"github.com/jwhong1020/LabCalc/pkg/core/photometry"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/middleware/redis"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
	phStore "github.com/jwhong1020/LabCalc/pkg/repo/photometry"
	pStore "github.com/jwhong1020/LabCalc/pkg/repo/plan"
	"github.com/jwhong1020/LabCalc/pkg/utils"
)

// The dye correction applies to the nucleic-acid reading at 260 nm unless
// the request names another wavelength.
const defaultTargetWavelength = 260

type photometryImpl struct {
	photoStore repo.PhotometryRepo
	planStore  repo.PlanRepo
	rClient    r.Cmdable
	msgCenter  notify.MsgCenter
}

func NewPhotometry() photometry.Service {
	return &photometryImpl{
		photoStore: phStore.NewPhotometryImpl(),
		planStore:  pStore.NewPlanImpl(),
		rClient:    redis.GetClient(),
		msgCenter:  events.NewEvents(),
	}
}

func (p *photometryImpl) ComputeLabeling(ctx context.Context, req *photometry.LabelingComputeReq) (*photometry.LabelingResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	return p.derive(ctx, req)
}

func (p *photometryImpl) SaveLabeling(ctx context.Context, req *photometry.SaveLabelingReq) (*photometry.RecordResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	rx, err := p.planStore.GetReactionByUUID(ctx, req.ReactionUUID)
	if err != nil {
		return nil, err
	}
	res, err := p.derive(ctx, &req.LabelingComputeReq)
	if err != nil {
		return nil, err
	}

	m := &model.LabelingRecord{
		ReactionID:    rx.ID,
		Title:         req.Title,
		CreatedBy:     user.Name,
		TargetName:    req.TargetName,
		TargetEpsilon: req.TargetEpsilon,
		ATarget:       req.ATarget,
		DyeName:       req.DyeName,
		DyeEpsilon:    req.DyeEpsilon,
		ADye:          req.ADye,
		CFUsed:        res.CFUsed,

		TargetUM:      res.TargetUM,
		DyeUM:         res.DyeUM,
		LabelingRatio: res.Ratio,
		Purity:        res.Purity,

		A260:     req.A260,
		A280:     req.A280,
		UVPurity: res.UVPurity,

		EtohInitialNmol:   req.EtohInitialNmol,
		EtohRecoveredNmol: res.EtohRecoveredNmol,
		EtohEfficiency:    res.EtohEfficiency,

		Note: req.Note,
	}
	if err := p.photoStore.CreateRecord(ctx, m); err != nil {
		return nil, err
	}

	p.notifyRecord(ctx, user.Name, m.UUID)
	return toRecordResp(m, rx.UUID), nil
}

func (p *photometryImpl) ListRecords(ctx context.Context, req *photometry.ListRecordReq) (*common.PageResp[[]*photometry.RecordResp], error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	req.Normalize()

	records, total, err := p.photoStore.ListRecords(ctx, &repo.RecordQuery{
		Title:     req.Title,
		CreatedBy: req.CreatedBy,
		Offset:    req.Offest(),
		Limit:     req.PageSize,
	})
	if err != nil {
		return nil, err
	}
	uuids, err := p.reactionUUIDs(ctx, records)
	if err != nil {
		return nil, err
	}

	return &common.PageResp[[]*photometry.RecordResp]{
		Data: utils.MapSlice(records, func(m *model.LabelingRecord) *photometry.RecordResp {
			return toRecordResp(m, uuids[m.ReactionID])
		}),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (p *photometryImpl) GetRecord(ctx context.Context, id uuid.UUID) (*photometry.RecordResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	m, err := p.photoStore.GetRecordByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	uuids, err := p.reactionUUIDs(ctx, []*model.LabelingRecord{m})
	if err != nil {
		return nil, err
	}
	return toRecordResp(m, uuids[m.ReactionID]), nil
}

func (p *photometryImpl) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return code.UnLogin
	}

	m, err := p.photoStore.GetRecordByUUID(ctx, id)
	if err != nil {
		return err
	}
	if err := p.photoStore.DeleteRecord(ctx, m.ID); err != nil {
		return err
	}

	p.notifyRecord(ctx, user.Name, m.UUID)
	return nil
}

func (p *photometryImpl) UpsertEpsilon(ctx context.Context, req *photometry.EpsilonReq) (*photometry.EpsilonResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if req.Epsilon <= 0 {
		return nil, code.ParamErr.WithMsg("extinction coefficient must be positive")
	}
	if req.Wavelength <= 0 {
		return nil, code.ParamErr.WithMsg("wavelength must be positive")
	}

	m := &model.Epsilon{
		Name:       req.Name,
		Wavelength: req.Wavelength,
		Epsilon:    req.Epsilon,
		Note:       req.Note,
	}
	if err := p.photoStore.UpsertEpsilon(ctx, m); err != nil {
		return nil, err
	}
	p.dropEpsilonCache(ctx)

	return &photometry.EpsilonResp{
		Name:       m.Name,
		Wavelength: m.Wavelength,
		Epsilon:    m.Epsilon,
		Note:       m.Note,
	}, nil
}

func (p *photometryImpl) ListEpsilons(ctx context.Context) ([]*photometry.EpsilonResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	epsilons, err := p.cachedEpsilons(ctx)
	if err != nil {
		return nil, err
	}
	return utils.MapSlice(epsilons, func(m *model.Epsilon) *photometry.EpsilonResp {
		return &photometry.EpsilonResp{
			Name:       m.Name,
			Wavelength: m.Wavelength,
			Epsilon:    m.Epsilon,
			Note:       m.Note,
		}
	}), nil
}

func (p *photometryImpl) DeleteEpsilon(ctx context.Context, req *photometry.EpsilonKeyReq) error {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return code.UnLogin
	}

	if err := p.photoStore.DeleteEpsilon(ctx, req.Name, req.Wavelength); err != nil {
		return err
	}
	p.dropEpsilonCache(ctx)
	return nil
}

func (p *photometryImpl) UpsertCorrectionFactor(ctx context.Context, req *photometry.CorrectionFactorReq) (*photometry.CorrectionFactorResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	if req.Factor < 0 {
		return nil, code.ParamErr.WithMsg("correction factor must not be negative")
	}
	if req.TargetWavelength <= 0 {
		return nil, code.ParamErr.WithMsg("target wavelength must be positive")
	}

	m := &model.CorrectionFactor{
		DyeName:          req.DyeName,
		TargetWavelength: req.TargetWavelength,
		Factor:           req.Factor,
		Note:             req.Note,
	}
	if err := p.photoStore.UpsertCorrectionFactor(ctx, m); err != nil {
		return nil, err
	}

	return &photometry.CorrectionFactorResp{
		DyeName:          m.DyeName,
		TargetWavelength: m.TargetWavelength,
		Factor:           m.Factor,
		Note:             m.Note,
	}, nil
}

func (p *photometryImpl) ListCorrectionFactors(ctx context.Context) ([]*photometry.CorrectionFactorResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	factors, err := p.photoStore.ListCorrectionFactors(ctx)
	if err != nil {
		return nil, err
	}
	return utils.MapSlice(factors, func(m *model.CorrectionFactor) *photometry.CorrectionFactorResp {
		return &photometry.CorrectionFactorResp{
			DyeName:          m.DyeName,
			TargetWavelength: m.TargetWavelength,
			Factor:           m.Factor,
			Note:             m.Note,
		}
	}), nil
}

// derive evaluates the full measurement: labeling efficiency always, UV
// purity and ethanol recovery only when their inputs are complete.
func (p *photometryImpl) derive(ctx context.Context, req *photometry.LabelingComputeReq) (*photometry.LabelingResp, error) {
	cfUsed, err := p.resolveCF(ctx, req)
	if err != nil {
		return nil, err
	}

	res, err := calc.Labeling(&calc.LabelingInput{
		TargetEpsilon: req.TargetEpsilon,
		ATarget:       req.ATarget,
		DyeEpsilon:    req.DyeEpsilon,
		ADye:          req.ADye,
		CF:            cfUsed,
	})
	if err != nil {
		return nil, err
	}

	resp := &photometry.LabelingResp{
		TargetUM: res.TargetUM,
		DyeUM:    res.DyeUM,
		Ratio:    res.Ratio,
		Purity:   res.Purity,
		CFUsed:   cfUsed,
	}
	if req.A260 != nil && req.A280 != nil {
		uv, err := calc.UVPurity(*req.A260, *req.A280)
		if err != nil {
			return nil, err
		}
		resp.UVPurity = &uv
	}
	if req.EtohInitialNmol != nil && req.EtohUMAfter != nil && req.EtohVolumeUL != nil {
		recovered, efficiency, err := calc.EthanolRecovery(*req.EtohInitialNmol, *req.EtohUMAfter, *req.EtohVolumeUL)
		if err != nil {
			return nil, err
		}
		resp.EtohRecoveredNmol = &recovered
		resp.EtohEfficiency = &efficiency
	}
	return resp, nil
}

func (p *photometryImpl) resolveCF(ctx context.Context, req *photometry.LabelingComputeReq) (float64, error) {
	if req.CF != nil {
		return *req.CF, nil
	}
	if req.DyeName == "" {
		return 0, nil
	}

	wavelength := req.TargetWavelength
	if wavelength == 0 {
		wavelength = defaultTargetWavelength
	}
	cf, err := p.photoStore.GetCorrectionFactor(ctx, req.DyeName, wavelength)
	if err != nil {
		if errors.Is(err, code.RecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return cf.Factor, nil
}

func (p *photometryImpl) reactionUUIDs(ctx context.Context, records []*model.LabelingRecord) (map[int64]uuid.UUID, error) {
	ids := []int64{}
	for _, m := range records {
		ids = append(ids, m.ReactionID)
	}
	reactions, err := p.planStore.GetReactionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := map[int64]uuid.UUID{}
	for _, rx := range reactions {
		out[rx.ID] = rx.UUID
	}
	return out, nil
}

func (p *photometryImpl) cachedEpsilons(ctx context.Context) ([]*model.Epsilon, error) {
	b, err := p.rClient.Get(ctx, utils.EpsilonMapKey()).Bytes()
	if err == nil {
		epsilons := []*model.Epsilon{}
		if uErr := json.Unmarshal(b, &epsilons); uErr == nil {
			return epsilons, nil
		}
	} else if !errors.Is(err, r.Nil) {
		logger.Warnf(ctx, "epsilon cache read err: %+v", err)
	}

	epsilons, err := p.photoStore.ListEpsilons(ctx)
	if err != nil {
		return nil, err
	}
	if b, mErr := json.Marshal(epsilons); mErr == nil {
		if sErr := p.rClient.Set(ctx, utils.EpsilonMapKey(), b, utils.CacheTTL).Err(); sErr != nil {
			logger.Warnf(ctx, "epsilon cache write err: %+v", sErr)
		}
	}
	return epsilons, nil
}

func (p *photometryImpl) dropEpsilonCache(ctx context.Context) {
	if err := p.rClient.Del(ctx, utils.EpsilonMapKey()).Err(); err != nil {
		logger.Warnf(ctx, "epsilon cache del err: %+v", err)
	}
}

func (p *photometryImpl) notifyRecord(ctx context.Context, user string, id uuid.UUID) {
	if err := p.msgCenter.Broadcast(ctx, &notify.SendMsg{
		Channel:   notify.RecordModify,
		UUID:      id,
		User:      user,
		Timestamp: time.Now().Unix(),
	}); err != nil {
		logger.Warnf(ctx, "record notify err: %+v", err)
	}
}

func toRecordResp(m *model.LabelingRecord, reactionUUID uuid.UUID) *photometry.RecordResp {
	return &photometry.RecordResp{
		UUID:         m.UUID,
		ReactionUUID: reactionUUID,
		Title:        m.Title,
		CreatedBy:    m.CreatedBy,

		TargetName:    m.TargetName,
		TargetEpsilon: m.TargetEpsilon,
		ATarget:       m.ATarget,
		DyeName:       m.DyeName,
		DyeEpsilon:    m.DyeEpsilon,
		ADye:          m.ADye,
		CFUsed:        m.CFUsed,

		TargetUM: m.TargetUM,
		DyeUM:    m.DyeUM,
		Ratio:    m.LabelingRatio,
		Purity:   m.Purity,

		A260:     m.A260,
		A280:     m.A280,
		UVPurity: m.UVPurity,

		EtohInitialNmol:   m.EtohInitialNmol,
		EtohRecoveredNmol: m.EtohRecoveredNmol,
		EtohEfficiency:    m.EtohEfficiency,

		Note:      m.Note,
		CreatedAt: m.CreatedAt,
	}
}
