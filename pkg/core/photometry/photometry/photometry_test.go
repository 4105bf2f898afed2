package photometry

import (
	"context"
	"errors"
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	r "github.com/redis/go-redis/v9"

	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/common/uuid"
	"github.com/jwhong1020/LabCalc/pkg/core/notify"
	"github.com/jwhong1020/LabCalc/pkg/core/photometry"
	"github.com/jwhong1020/LabCalc/pkg/middleware/auth"
	"github.com/jwhong1020/LabCalc/pkg/repo"
	"github.com/jwhong1020/LabCalc/pkg/repo/model"
	"github.com/jwhong1020/LabCalc/pkg/utils"
)

func authedCtx() *gin.Context {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Set(auth.USERKEY, &model.UserData{Name: "soyeon"})
	return ctx
}

func fptr(v float64) *float64 { return &v }

type fakePhotoRepo struct {
	epsilons []*model.Epsilon
	cfs      []*model.CorrectionFactor
	records  []*model.LabelingRecord
	nextID   int64
}

func (f *fakePhotoRepo) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakePhotoRepo) UpsertEpsilon(_ context.Context, eps *model.Epsilon) error {
	for _, e := range f.epsilons {
		if e.Name == eps.Name && e.Wavelength == eps.Wavelength {
			e.Epsilon = eps.Epsilon
			e.Note = eps.Note
			return nil
		}
	}
	f.nextID++
	eps.ID = f.nextID
	eps.UUID = uuid.NewV4()
	f.epsilons = append(f.epsilons, eps)
	return nil
}

func (f *fakePhotoRepo) GetEpsilon(_ context.Context, name string, wavelength int) (*model.Epsilon, error) {
	for _, e := range f.epsilons {
		if e.Name == name && e.Wavelength == wavelength {
			return e, nil
		}
	}
	return nil, code.RecordNotFound
}

func (f *fakePhotoRepo) ListEpsilons(_ context.Context) ([]*model.Epsilon, error) {
	return f.epsilons, nil
}

func (f *fakePhotoRepo) DeleteEpsilon(_ context.Context, name string, wavelength int) error {
	for i, e := range f.epsilons {
		if e.Name == name && e.Wavelength == wavelength {
			f.epsilons = append(f.epsilons[:i], f.epsilons[i+1:]...)
			return nil
		}
	}
	return code.RecordNotFound
}

func (f *fakePhotoRepo) UpsertCorrectionFactor(_ context.Context, cf *model.CorrectionFactor) error {
	for _, c := range f.cfs {
		if c.DyeName == cf.DyeName && c.TargetWavelength == cf.TargetWavelength {
			c.Factor = cf.Factor
			c.Note = cf.Note
			return nil
		}
	}
	f.nextID++
	cf.ID = f.nextID
	cf.UUID = uuid.NewV4()
	f.cfs = append(f.cfs, cf)
	return nil
}

func (f *fakePhotoRepo) GetCorrectionFactor(_ context.Context, dyeName string, targetWavelength int) (*model.CorrectionFactor, error) {
	for _, c := range f.cfs {
		if c.DyeName == dyeName && c.TargetWavelength == targetWavelength {
			return c, nil
		}
	}
	return nil, code.RecordNotFound
}

func (f *fakePhotoRepo) ListCorrectionFactors(_ context.Context) ([]*model.CorrectionFactor, error) {
	return f.cfs, nil
}

func (f *fakePhotoRepo) CreateRecord(_ context.Context, m *model.LabelingRecord) error {
	f.nextID++
	m.ID = f.nextID
	m.UUID = uuid.NewV4()
	f.records = append(f.records, m)
	return nil
}

func (f *fakePhotoRepo) GetRecordByUUID(_ context.Context, id uuid.UUID) (*model.LabelingRecord, error) {
	for _, m := range f.records {
		if m.UUID == id {
			return m, nil
		}
	}
	return nil, code.RecordNotFound
}

func (f *fakePhotoRepo) ListRecords(_ context.Context, _ *repo.RecordQuery) ([]*model.LabelingRecord, int64, error) {
	return f.records, int64(len(f.records)), nil
}

func (f *fakePhotoRepo) DeleteRecord(_ context.Context, id int64) error {
	for i, m := range f.records {
		if m.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return code.RecordNotFound
}

func (f *fakePhotoRepo) CountRecordsByReactionIDs(_ context.Context, reactionIDs []int64) (int64, error) {
	var n int64
	for _, m := range f.records {
		for _, id := range reactionIDs {
			if m.ReactionID == id {
				n++
			}
		}
	}
	return n, nil
}

type fakeReactionStore struct {
	reactions []*model.Reaction
}

func (f *fakeReactionStore) ExecTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (f *fakeReactionStore) CreatePlan(context.Context, *model.Plan) error { return nil }
func (f *fakeReactionStore) GetPlanByUUID(context.Context, uuid.UUID) (*model.Plan, error) {
	return nil, code.RecordNotFound
}
func (f *fakeReactionStore) ListPlans(context.Context, *repo.PlanQuery) ([]*model.Plan, int64, error) {
	return nil, 0, nil
}
func (f *fakeReactionStore) UpdatePlanByUUID(context.Context, uuid.UUID, map[string]any) error {
	return nil
}
func (f *fakeReactionStore) DeletePlan(context.Context, int64) error { return nil }
func (f *fakeReactionStore) CreateReaction(_ context.Context, m *model.Reaction) error {
	m.ID = int64(len(f.reactions) + 1)
	m.UUID = uuid.NewV4()
	f.reactions = append(f.reactions, m)
	return nil
}
func (f *fakeReactionStore) BatchCreateReactionItems(context.Context, []*model.ReactionItem) error {
	return nil
}
func (f *fakeReactionStore) GetReactionByUUID(_ context.Context, id uuid.UUID) (*model.Reaction, error) {
	for _, m := range f.reactions {
		if m.UUID == id {
			return m, nil
		}
	}
	return nil, code.RecordNotFound
}
func (f *fakeReactionStore) GetReactionsByIDs(_ context.Context, ids []int64) ([]*model.Reaction, error) {
	out := []*model.Reaction{}
	for _, m := range f.reactions {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}
func (f *fakeReactionStore) GetReactionsByPlanID(context.Context, int64) ([]*model.Reaction, error) {
	return nil, nil
}
func (f *fakeReactionStore) GetReactionItems(context.Context, ...int64) ([]*model.ReactionItem, error) {
	return nil, nil
}
func (f *fakeReactionStore) DeleteReaction(context.Context, int64) error      { return nil }
func (f *fakeReactionStore) DeleteReactionItems(context.Context, int64) error { return nil }

type fakeRedis struct {
	r.Cmdable
	data map[string]string
	dels []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *r.StringCmd {
	cmd := r.NewStringCmd(ctx, "get", key)
	if v, ok := f.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(r.Nil)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, _ time.Duration) *r.StatusCmd {
	cmd := r.NewStatusCmd(ctx, "set", key)
	switch v := value.(type) {
	case string:
		f.data[key] = v
	case []byte:
		f.data[key] = string(v)
	}
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *r.IntCmd {
	cmd := r.NewIntCmd(ctx, "del")
	for _, k := range keys {
		delete(f.data, k)
		f.dels = append(f.dels, k)
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

type fakeMsgCenter struct {
	sent []*notify.SendMsg
}

func (f *fakeMsgCenter) Registry(context.Context, notify.Action, notify.HandleFunc) error {
	return nil
}

func (f *fakeMsgCenter) Broadcast(_ context.Context, msg *notify.SendMsg) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMsgCenter) Close(context.Context) error { return nil }

type testPhoto struct {
	svc   *photometryImpl
	store *fakePhotoRepo
	plans *fakeReactionStore
	rdb   *fakeRedis
	msgs  *fakeMsgCenter
}

func newTestPhoto() *testPhoto {
	tp := &testPhoto{
		store: &fakePhotoRepo{},
		plans: &fakeReactionStore{},
		rdb:   newFakeRedis(),
		msgs:  &fakeMsgCenter{},
	}
	tp.svc = &photometryImpl{
		photoStore: tp.store,
		planStore:  tp.plans,
		rClient:    tp.rdb,
		msgCenter:  tp.msgs,
	}
	return tp
}

func baseReadings() *photometry.LabelingComputeReq {
	return &photometry.LabelingComputeReq{
		TargetName:    "probe-17",
		TargetEpsilon: 200000,
		ATarget:       2.35,
		DyeName:       "Cy5",
		DyeEpsilon:    150000,
		ADye:          2.0,
	}
}

func TestComputeLabeling_UsesStoredCF(t *testing.T) {
	tp := newTestPhoto()
	tp.store.cfs = append(tp.store.cfs, &model.CorrectionFactor{
		DyeName: "Cy5", TargetWavelength: 260, Factor: 0.08,
	})

	res, err := tp.svc.ComputeLabeling(authedCtx(), baseReadings())
	if err != nil {
		t.Fatal(err)
	}
	if res.CFUsed != 0.08 {
		t.Errorf("cf used = %v, want stored 0.08", res.CFUsed)
	}
	// (2.35 - 0.08*2.0) / 200000 * 1e6
	if math.Abs(res.TargetUM-10.95) > 1e-9 {
		t.Errorf("target = %v uM, want 10.95", res.TargetUM)
	}
}

func TestComputeLabeling_ExplicitCFWins(t *testing.T) {
	tp := newTestPhoto()
	tp.store.cfs = append(tp.store.cfs, &model.CorrectionFactor{
		DyeName: "Cy5", TargetWavelength: 260, Factor: 0.08,
	})

	req := baseReadings()
	req.CF = fptr(0)
	res, err := tp.svc.ComputeLabeling(authedCtx(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.CFUsed != 0 {
		t.Errorf("explicit cf must win over the stored one, got %v", res.CFUsed)
	}
	if math.Abs(res.TargetUM-11.75) > 1e-9 {
		t.Errorf("target = %v uM, want uncorrected 11.75", res.TargetUM)
	}
}

func TestComputeLabeling_UnknownDyeFallsBackToZero(t *testing.T) {
	tp := newTestPhoto()

	res, err := tp.svc.ComputeLabeling(authedCtx(), baseReadings())
	if err != nil {
		t.Fatal(err)
	}
	if res.CFUsed != 0 {
		t.Errorf("cf for an unknown dye must be zero, got %v", res.CFUsed)
	}
}

func TestComputeLabeling_OptionalBlocks(t *testing.T) {
	tp := newTestPhoto()

	req := baseReadings()
	req.A260 = fptr(1.8)
	req.A280 = fptr(1.0)
	req.EtohInitialNmol = fptr(10)
	req.EtohUMAfter = fptr(80)
	req.EtohVolumeUL = fptr(100)

	res, err := tp.svc.ComputeLabeling(authedCtx(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.UVPurity == nil || math.Abs(*res.UVPurity-1.8) > 1e-9 {
		t.Errorf("uv purity = %v, want 1.8", res.UVPurity)
	}
	if res.EtohRecoveredNmol == nil || math.Abs(*res.EtohRecoveredNmol-8) > 1e-9 {
		t.Errorf("recovered = %v, want 8 nmol", res.EtohRecoveredNmol)
	}
	if res.EtohEfficiency == nil || math.Abs(*res.EtohEfficiency-80) > 1e-9 {
		t.Errorf("efficiency = %v, want 80%%", res.EtohEfficiency)
	}
}

func TestSaveLabeling_PersistsDerivedValues(t *testing.T) {
	tp := newTestPhoto()
	rx := &model.Reaction{}
	if err := tp.plans.CreateReaction(context.Background(), rx); err != nil {
		t.Fatal(err)
	}

	resp, err := tp.svc.SaveLabeling(authedCtx(), &photometry.SaveLabelingReq{
		LabelingComputeReq: *baseReadings(),
		ReactionUUID:       rx.UUID,
		Title:              "after cleanup",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.ReactionUUID != rx.UUID {
		t.Errorf("resp bound to reaction %s, want %s", resp.ReactionUUID, rx.UUID)
	}
	if resp.CreatedBy != "soyeon" || resp.Title != "after cleanup" {
		t.Errorf("unexpected resp: %+v", resp)
	}
	if len(tp.store.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(tp.store.records))
	}
	stored := tp.store.records[0]
	if math.Abs(stored.TargetUM-11.75) > 1e-9 {
		t.Errorf("stored target = %v, want freshly derived 11.75", stored.TargetUM)
	}
	if len(tp.msgs.sent) != 1 || tp.msgs.sent[0].Channel != notify.RecordModify {
		t.Errorf("expected one record-modify broadcast, got %+v", tp.msgs.sent)
	}
}

func TestSaveLabeling_DanglingReaction(t *testing.T) {
	tp := newTestPhoto()

	_, err := tp.svc.SaveLabeling(authedCtx(), &photometry.SaveLabelingReq{
		LabelingComputeReq: *baseReadings(),
		ReactionUUID:       uuid.NewV4(),
	})
	if !errors.Is(err, code.RecordNotFound) {
		t.Fatalf("expected RecordNotFound, got %v", err)
	}
	if len(tp.store.records) != 0 {
		t.Errorf("no record may be written for a dangling reaction")
	}
}

func TestDeleteRecord_Notifies(t *testing.T) {
	tp := newTestPhoto()
	rx := &model.Reaction{}
	if err := tp.plans.CreateReaction(context.Background(), rx); err != nil {
		t.Fatal(err)
	}
	saved, err := tp.svc.SaveLabeling(authedCtx(), &photometry.SaveLabelingReq{
		LabelingComputeReq: *baseReadings(),
		ReactionUUID:       rx.UUID,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := tp.svc.DeleteRecord(authedCtx(), saved.UUID); err != nil {
		t.Fatal(err)
	}
	if len(tp.store.records) != 0 {
		t.Errorf("record not deleted")
	}
	if len(tp.msgs.sent) != 2 {
		t.Errorf("expected save + delete broadcasts, got %d", len(tp.msgs.sent))
	}
	if _, err := tp.svc.GetRecord(authedCtx(), saved.UUID); !errors.Is(err, code.RecordNotFound) {
		t.Fatalf("expected RecordNotFound after delete, got %v", err)
	}
}

func TestListEpsilons_ServedFromCache(t *testing.T) {
	tp := newTestPhoto()
	if _, err := tp.svc.UpsertEpsilon(authedCtx(), &photometry.EpsilonReq{
		Name: "Cy5", Wavelength: 649, Epsilon: 250000,
	}); err != nil {
		t.Fatal(err)
	}

	first, err := tp.svc.ListEpsilons(authedCtx())
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 epsilon, got %d", len(first))
	}
	if _, ok := tp.rdb.data[utils.EpsilonMapKey()]; !ok {
		t.Fatalf("list must fill the cache")
	}

	// mutate the store behind the cache; the list must not notice
	tp.store.epsilons[0].Epsilon = 1
	second, err := tp.svc.ListEpsilons(authedCtx())
	if err != nil {
		t.Fatal(err)
	}
	if second[0].Epsilon != 250000 {
		t.Errorf("expected the cached value, got %v", second[0].Epsilon)
	}
}

func TestUpsertEpsilon_InvalidatesCache(t *testing.T) {
	tp := newTestPhoto()
	if _, err := tp.svc.UpsertEpsilon(authedCtx(), &photometry.EpsilonReq{
		Name: "Cy5", Wavelength: 649, Epsilon: 250000,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tp.svc.ListEpsilons(authedCtx()); err != nil {
		t.Fatal(err)
	}

	if _, err := tp.svc.UpsertEpsilon(authedCtx(), &photometry.EpsilonReq{
		Name: "Cy5", Wavelength: 649, Epsilon: 271000,
	}); err != nil {
		t.Fatal(err)
	}
	if _, ok := tp.rdb.data[utils.EpsilonMapKey()]; ok {
		t.Fatalf("upsert must drop the cache")
	}

	refreshed, err := tp.svc.ListEpsilons(authedCtx())
	if err != nil {
		t.Fatal(err)
	}
	if refreshed[0].Epsilon != 271000 {
		t.Errorf("expected the updated value, got %v", refreshed[0].Epsilon)
	}
}

func TestUpsertEpsilon_RejectsNonPositive(t *testing.T) {
	tp := newTestPhoto()

	if _, err := tp.svc.UpsertEpsilon(authedCtx(), &photometry.EpsilonReq{
		Name: "Cy5", Wavelength: 649, Epsilon: 0,
	}); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for zero epsilon, got %v", err)
	}
	if _, err := tp.svc.UpsertEpsilon(authedCtx(), &photometry.EpsilonReq{
		Name: "Cy5", Wavelength: -1, Epsilon: 250000,
	}); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for negative wavelength, got %v", err)
	}
}

func TestUpsertCorrectionFactor_Roundtrip(t *testing.T) {
	tp := newTestPhoto()

	if _, err := tp.svc.UpsertCorrectionFactor(authedCtx(), &photometry.CorrectionFactorReq{
		DyeName: "Cy5", TargetWavelength: 260, Factor: 0.05,
	}); err != nil {
		t.Fatal(err)
	}
	factors, err := tp.svc.ListCorrectionFactors(authedCtx())
	if err != nil {
		t.Fatal(err)
	}
	if len(factors) != 1 || factors[0].Factor != 0.05 {
		t.Fatalf("unexpected factors: %+v", factors)
	}

	if _, err := tp.svc.UpsertCorrectionFactor(authedCtx(), &photometry.CorrectionFactorReq{
		DyeName: "Cy5", TargetWavelength: 260, Factor: -0.1,
	}); !errors.Is(err, code.ParamErr) {
		t.Fatalf("expected ParamErr for negative factor, got %v", err)
	}
}
