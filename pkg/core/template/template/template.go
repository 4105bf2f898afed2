package template

import (
	"context"
	"errors"

	"github.com/jwhong1020/LabCalc/pkg/common"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/core/calc"
	"github.com/jwhong1020/LabCalc/pkg/core/template"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
	sStore "github.com/jwhong1020/LabCalc/pkg/repo/stock"
	tStore "github.com/jwhong1020/LabCalc/pkg/repo/template"
	"github.com/jwhong1020/LabCalc/pkg/utils"
)

type templateImpl struct {
	templateStore repo.TemplateRepo
	stockStore    repo.StockRepo
}

func NewTemplate() template.Service {
	return &templateImpl{
		templateStore: tStore.NewTemplateImpl(),
		stockStore:    sStore.NewStockImpl(),
	}
}

func (t *templateImpl) CreateTemplate(ctx context.Context, req *template.CreateTemplateReq) (*template.TemplateResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	volUnit := utils.Or(req.FinalVolUnit, "uL")
	if req.FinalVolume < 0 {
		return nil, code.ParamErr.WithMsg("final volume must not be negative")
	}
	if _, err := calc.ToUL(1, volUnit); err != nil {
		return nil, err
	}

	if _, err := t.templateStore.GetTemplateByName(ctx, user.Name, req.Name); err == nil {
		return nil, code.TemplateExistErr.WithMsgf("name %q", req.Name)
	} else if !errors.Is(err, code.RecordNotFound) {
		return nil, err
	}

	m := &model.Template{
		Name:         req.Name,
		CreatedBy:    user.Name,
		FinalVolume:  req.FinalVolume,
		FinalVolUnit: volUnit,
		Note:         req.Note,
	}
	err := t.templateStore.ExecTx(ctx, func(ctx context.Context) error {
		if err := t.templateStore.CreateTemplate(ctx, m); err != nil {
			return err
		}
		return t.templateStore.BatchCreateTemplateItems(ctx, itemModels(m.ID, req.Items))
	})
	if err != nil {
		return nil, err
	}
	return t.GetTemplate(ctx, m.UUID)
}

func (t *templateImpl) ListTemplates(ctx context.Context, req *template.ListTemplateReq) (*common.PageResp[[]*template.TemplateResp], error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}
	req.Normalize()

	tpls, total, err := t.templateStore.ListTemplates(ctx, &repo.TemplateQuery{
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
		Offset:    req.Offest(),
		Limit:     req.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &common.PageResp[[]*template.TemplateResp]{
		Data: utils.MapSlice(tpls, func(m *model.Template) *template.TemplateResp {
			return toTemplateResp(m, nil)
		}),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (t *templateImpl) GetTemplate(ctx context.Context, id uuid.UUID) (*template.TemplateResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	m, err := t.templateStore.GetTemplateByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := t.templateStore.GetTemplateItems(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return toTemplateResp(m, items), nil
}

func (t *templateImpl) UpdateTemplate(ctx context.Context, req *template.UpdateTemplateReq) (*template.TemplateResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	current, err := t.templateStore.GetTemplateByUUID(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil && *req.Name != current.Name {
		if _, err := t.templateStore.GetTemplateByName(ctx, current.CreatedBy, *req.Name); err == nil {
			return nil, code.TemplateExistErr.WithMsgf("name %q", *req.Name)
		} else if !errors.Is(err, code.RecordNotFound) {
			return nil, err
		}
		updates["name"] = *req.Name
	}
	if req.FinalVolume != nil {
		if *req.FinalVolume < 0 {
			return nil, code.ParamErr.WithMsg("final volume must not be negative")
		}
		updates["final_volume"] = *req.FinalVolume
	}
	if req.FinalVolUnit != nil {
		if _, err := calc.ToUL(1, *req.FinalVolUnit); err != nil {
			return nil, err
		}
		updates["final_vol_unit"] = *req.FinalVolUnit
	}
	if req.Note != nil {
		updates["note"] = *req.Note
	}

	err = t.templateStore.ExecTx(ctx, func(ctx context.Context) error {
		if len(updates) > 0 {
			if err := t.templateStore.UpdateTemplateByUUID(ctx, req.UUID, updates); err != nil {
				return err
			}
		}
		if req.Items == nil {
			return nil
		}
		if err := t.templateStore.DeleteTemplateItems(ctx, current.ID); err != nil {
			return err
		}
		return t.templateStore.BatchCreateTemplateItems(ctx, itemModels(current.ID, req.Items))
	})
	if err != nil {
		return nil, err
	}
	return t.GetTemplate(ctx, req.UUID)
}

func (t *templateImpl) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return code.UnLogin
	}

	m, err := t.templateStore.GetTemplateByUUID(ctx, id)
	if err != nil {
		return err
	}
	return t.templateStore.ExecTx(ctx, func(ctx context.Context) error {
		if err := t.templateStore.DeleteTemplateItems(ctx, m.ID); err != nil {
			return err
		}
		return t.templateStore.DeleteTemplate(ctx, m.ID)
	})
}

// ResolveTemplate turns a template into prefilled reaction lines by exact
// name match against the stock table. When several stocks share a name the
// newest one wins.
func (t *templateImpl) ResolveTemplate(ctx context.Context, id uuid.UUID) (*template.ResolveResp, error) {
	user := auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, code.UnLogin
	}

	m, err := t.templateStore.GetTemplateByUUID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := t.templateStore.GetTemplateItems(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	names := utils.MapSlice(items, func(it *model.TemplateItem) string { return it.Reagent })
	stocks, err := t.stockStore.GetStocksByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := map[string]*model.Stock{}
	for _, st := range stocks {
		if prev, ok := byName[st.Name]; !ok || st.ID > prev.ID {
			byName[st.Name] = st
		}
	}

	resp := &template.ResolveResp{
		UUID:         m.UUID,
		Name:         m.Name,
		FinalVolume:  m.FinalVolume,
		FinalVolUnit: m.FinalVolUnit,
	}
	for _, it := range items {
		line := &template.ResolvedLine{
			LineNo:  it.LineNo,
			Reagent: it.Reagent,
			Note:    it.Note,
		}
		if st, ok := byName[it.Reagent]; ok {
			u := st.UUID
			c := st.Conc
			line.StockUUID = &u
			line.StockLabel = st.Label
			line.StockConc = &c
			line.StockUnit = st.ConcUnit
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp, nil
}

func itemModels(templateID int64, items []*template.TemplateItemReq) []*model.TemplateItem {
	out := make([]*model.TemplateItem, 0, len(items))
	for i, it := range items {
		out = append(out, &model.TemplateItem{
			TemplateID: templateID,
			LineNo:     i + 1,
			Reagent:    it.Reagent,
			Note:       it.Note,
		})
	}
	return out
}

func toTemplateResp(m *model.Template, items []*model.TemplateItem) *template.TemplateResp {
	return &template.TemplateResp{
		UUID:         m.UUID,
		Name:         m.Name,
		CreatedBy:    m.CreatedBy,
		FinalVolume:  m.FinalVolume,
		FinalVolUnit: m.FinalVolUnit,
		Note:         m.Note,
		Items: utils.MapSlice(items, func(it *model.TemplateItem) *template.TemplateItemResp {
			return &template.TemplateItemResp{
				LineNo:  it.LineNo,
				Reagent: it.Reagent,
				Note:    it.Note,
			}
		}),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
