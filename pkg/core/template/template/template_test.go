package template

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/core/template"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
)

func authedCtx() *gin.Context {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Set(auth.USERKEY, &model.UserData{Name: "soyeon"})
	return ctx
}

type fakeTemplateRepo struct {
	templates []*model.Template
	items     map[int64][]*model.TemplateItem
	nextID    int64
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{items: map[int64][]*model.TemplateItem{}}
}

func (f *fakeTemplateRepo) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeTemplateRepo) CreateTemplate(_ context.Context, tpl *model.Template) error {
	f.nextID++
	tpl.ID = f.nextID
	tpl.UUID = uuid.NewV4()
	f.templates = append(f.templates, tpl)
	return nil
}

func (f *fakeTemplateRepo) BatchCreateTemplateItems(_ context.Context, items []*model.TemplateItem) error {
	for _, it := range items {
		f.items[it.TemplateID] = append(f.items[it.TemplateID], it)
	}
	return nil
}

func (f *fakeTemplateRepo) GetTemplateByUUID(_ context.Context, id uuid.UUID) (*model.Template, error) {
	for _, tpl := range f.templates {
		if tpl.UUID == id {
			return tpl, nil
		}
	}
	return nil, code.RecordNotFound
}

func (f *fakeTemplateRepo) GetTemplateByName(_ context.Context, createdBy string, name string) (*model.Template, error) {
	for _, tpl := range f.templates {
		if tpl.CreatedBy == createdBy && tpl.Name == name {
			return tpl, nil
		}
	}
	return nil, code.RecordNotFound
}

func (f *fakeTemplateRepo) GetTemplateItems(_ context.Context, templateID int64) ([]*model.TemplateItem, error) {
	return f.items[templateID], nil
}

func (f *fakeTemplateRepo) ListTemplates(_ context.Context, _ *repo.TemplateQuery) ([]*model.Template, int64, error) {
	return f.templates, int64(len(f.templates)), nil
}

func (f *fakeTemplateRepo) UpdateTemplateByUUID(_ context.Context, id uuid.UUID, data map[string]any) error {
	for _, tpl := range f.templates {
		if tpl.UUID != id {
			continue
		}
		for k, v := range data {
			switch k {
			case "name":
				tpl.Name = v.(string)
			case "final_volume":
				tpl.FinalVolume = v.(float64)
			case "final_vol_unit":
				tpl.FinalVolUnit = v.(string)
			case "note":
				tpl.Note = v.(string)
			}
		}
		return nil
	}
	return code.RecordNotFound
}

func (f *fakeTemplateRepo) DeleteTemplateItems(_ context.Context, templateID int64) error {
	delete(f.items, templateID)
	return nil
}

func (f *fakeTemplateRepo) DeleteTemplate(_ context.Context, id int64) error {
	for i, tpl := range f.templates {
		if tpl.ID == id {
			f.templates = append(f.templates[:i], f.templates[i+1:]...)
			return nil
		}
	}
	return code.RecordNotFound
}

type fakeStockLookup struct {
	stocks []*model.Stock
}

func (f *fakeStockLookup) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (f *fakeStockLookup) CreateStock(context.Context, *model.Stock) error { return nil }
func (f *fakeStockLookup) GetStockByUUID(context.Context, uuid.UUID) (*model.Stock, error) {
	return nil, code.RecordNotFound
}
func (f *fakeStockLookup) GetStockByLabel(context.Context, string) (*model.Stock, error) {
	return nil, code.RecordNotFound
}
func (f *fakeStockLookup) GetStocksByNames(_ context.Context, names []string) ([]*model.Stock, error) {
	out := []*model.Stock{}
	for _, st := range f.stocks {
		for _, n := range names {
			if st.Name == n {
				out = append(out, st)
			}
		}
	}
	return out, nil
}
func (f *fakeStockLookup) GetStocksByIDs(_ context.Context, ids []int64) ([]*model.Stock, error) {
	out := []*model.Stock{}
	for _, st := range f.stocks {
		for _, id := range ids {
			if st.ID == id {
				out = append(out, st)
			}
		}
	}
	return out, nil
}
func (f *fakeStockLookup) AllStocks(context.Context) ([]*model.Stock, error) { return f.stocks, nil }
func (f *fakeStockLookup) ListStocks(context.Context, *repo.StockQuery) ([]*model.Stock, int64, error) {
	return f.stocks, int64(len(f.stocks)), nil
}
func (f *fakeStockLookup) UpdateStockByUUID(context.Context, uuid.UUID, map[string]any) error {
	return nil
}
func (f *fakeStockLookup) DeleteStock(context.Context, int64) error { return nil }
func (f *fakeStockLookup) CountStockReferences(context.Context, int64) (int64, error) {
	return 0, nil
}

func newTestTemplate(store *fakeTemplateRepo, stocks *fakeStockLookup) *templateImpl {
	if stocks == nil {
		stocks = &fakeStockLookup{}
	}
	return &templateImpl{templateStore: store, stockStore: stocks}
}

func TestCreateTemplate_AssignsLineNumbers(t *testing.T) {
	store := newFakeTemplateRepo()
	svc := newTestTemplate(store, nil)

	resp, err := svc.CreateTemplate(authedCtx(), &template.CreateTemplateReq{
		Name:        "PCR mix",
		FinalVolume: 50,
		Items: []*template.TemplateItemReq{
			{Reagent: "Tris"},
			{Reagent: "MgCl2"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(resp.Items))
	}
	if resp.Items[0].LineNo != 1 || resp.Items[1].LineNo != 2 {
		t.Errorf("line numbers = %d, %d", resp.Items[0].LineNo, resp.Items[1].LineNo)
	}
	if resp.FinalVolUnit != "uL" {
		t.Errorf("default unit = %q, want uL", resp.FinalVolUnit)
	}
	if resp.CreatedBy != "soyeon" {
		t.Errorf("created_by = %q", resp.CreatedBy)
	}
}

func TestCreateTemplate_DuplicateName(t *testing.T) {
	store := newFakeTemplateRepo()
	svc := newTestTemplate(store, nil)

	req := &template.CreateTemplateReq{Name: "PCR mix"}
	if _, err := svc.CreateTemplate(authedCtx(), req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateTemplate(authedCtx(), req); !errors.Is(err, code.TemplateExistErr) {
		t.Fatalf("expected TemplateExistErr, got %v", err)
	}
}

func TestResolveTemplate_MatchesByName(t *testing.T) {
	store := newFakeTemplateRepo()
	stocks := &fakeStockLookup{stocks: []*model.Stock{
		{BaseModel: model.BaseModel{ID: 1, UUID: uuid.NewV4()}, Name: "Tris", Label: "Tris_1M", Conc: 1, ConcUnit: "M"},
	}}
	svc := newTestTemplate(store, stocks)

	created, err := svc.CreateTemplate(authedCtx(), &template.CreateTemplateReq{
		Name: "mix",
		Items: []*template.TemplateItemReq{
			{Reagent: "Tris"},
			{Reagent: "mystery buffer"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := svc.ResolveTemplate(authedCtx(), created.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if len(resolved.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(resolved.Lines))
	}
	bound := resolved.Lines[0]
	if bound.StockUUID == nil || bound.StockLabel != "Tris_1M" || bound.StockConc == nil || *bound.StockConc != 1 {
		t.Errorf("expected Tris bound to its stock, got %+v", bound)
	}
	loose := resolved.Lines[1]
	if loose.StockUUID != nil || loose.StockLabel != "" {
		t.Errorf("unmatched reagent must stay unbound, got %+v", loose)
	}
}

func TestResolveTemplate_NewestStockWins(t *testing.T) {
	store := newFakeTemplateRepo()
	stocks := &fakeStockLookup{stocks: []*model.Stock{
		{BaseModel: model.BaseModel{ID: 1, UUID: uuid.NewV4()}, Name: "Tris", Label: "Tris_1M", Conc: 1, ConcUnit: "M"},
		{BaseModel: model.BaseModel{ID: 2, UUID: uuid.NewV4()}, Name: "Tris", Label: "Tris_100mM", Conc: 100, ConcUnit: "mM"},
	}}
	svc := newTestTemplate(store, stocks)

	created, err := svc.CreateTemplate(authedCtx(), &template.CreateTemplateReq{
		Name:  "mix",
		Items: []*template.TemplateItemReq{{Reagent: "Tris"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	resolved, err := svc.ResolveTemplate(authedCtx(), created.UUID)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Lines[0].StockLabel != "Tris_100mM" {
		t.Errorf("expected the newest stock, got %q", resolved.Lines[0].StockLabel)
	}
}

func TestUpdateTemplate_ReplacesItems(t *testing.T) {
	store := newFakeTemplateRepo()
	svc := newTestTemplate(store, nil)

	created, err := svc.CreateTemplate(authedCtx(), &template.CreateTemplateReq{
		Name:  "mix",
		Items: []*template.TemplateItemReq{{Reagent: "Tris"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := svc.UpdateTemplate(authedCtx(), &template.UpdateTemplateReq{
		UUID:  created.UUID,
		Items: []*template.TemplateItemReq{{Reagent: "NaCl"}, {Reagent: "EDTA"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 2 || resp.Items[0].Reagent != "NaCl" {
		t.Fatalf("items not replaced: %+v", resp.Items)
	}
}

func TestDeleteTemplate_RemovesItems(t *testing.T) {
	store := newFakeTemplateRepo()
	svc := newTestTemplate(store, nil)

	created, err := svc.CreateTemplate(authedCtx(), &template.CreateTemplateReq{
		Name:  "mix",
		Items: []*template.TemplateItemReq{{Reagent: "Tris"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTemplate(authedCtx(), created.UUID); err != nil {
		t.Fatal(err)
	}
	if len(store.templates) != 0 || len(store.items) != 0 {
		t.Errorf("template or items left behind: %d/%d", len(store.templates), len(store.items))
	}
	if _, err := svc.GetTemplate(authedCtx(), created.UUID); !errors.Is(err, code.RecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
}
