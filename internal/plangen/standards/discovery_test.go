package standards

import (
	"context"
	"testing"

	"github.com/google/uuid"

	repo "github.com/strivekit/strivekit-backend/internal/data/repos/standards"
	"github.com/strivekit/strivekit-backend/internal/data/repos/testutil"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
)

type fakeStandardRepo struct {
	rows []*types.Standard
}

func (f *fakeStandardRepo) Create(dbc dbctx.Context, row *types.Standard) error {
	for _, r := range f.rows {
		if r.MetricKey == row.MetricKey && r.Gender == row.Gender &&
			r.AgeMin == row.AgeMin && r.AgeMax == row.AgeMax {
			return repo.ErrDuplicateStratum
		}
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeStandardRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Standard, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeStandardRepo) ListByMetricKey(dbc dbctx.Context, metricKey string) ([]*types.Standard, error) {
	var out []*types.Standard
	for _, r := range f.rows {
		if r.MetricKey == metricKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStandardRepo) ExistsByMetricKey(dbc dbctx.Context, metricKey string) (bool, error) {
	for _, r := range f.rows {
		if r.MetricKey == metricKey {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStandardRepo) IncrementUsage(dbc dbctx.Context, id uuid.UUID) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.UsageCount++
		}
	}
	return nil
}

func (f *fakeStandardRepo) SetVerified(dbc dbctx.Context, id uuid.UUID, verified bool) error {
	for _, r := range f.rows {
		if r.ID == id {
			r.VerifiedByAdmin = verified
		}
	}
	return nil
}

func (f *fakeStandardRepo) List(dbc dbctx.Context, onlyUnverified bool, limit int) ([]*types.Standard, error) {
	return f.rows, nil
}

type fakeAI struct {
	calls int
	out   map[string]any
	err   error
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *fakeAI) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", nil
}

func candidateResponse(source, level string, confidence float64) map[string]any {
	return map[string]any{
		"found": true,
		"standards": []any{
			map[string]any{
				"metric_key":         "vo2_max",
				"standard_type":      "range",
				"category":           "cardio",
				"age_min":            float64(20),
				"age_max":            float64(29),
				"gender":             "male",
				"value_min":          44.0,
				"value_max":          51.0,
				"value_single":       nil,
				"unit":               "ml/kg/min",
				"percentile":         75.0,
				"level":              "good",
				"source_name":        source,
				"source_url":         nil,
				"source_description": "normative table",
				"evidence_level":     level,
				"confidence":         confidence,
			},
		},
	}
}

func testDBC() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func TestDiscoverShortCircuitsOnExistingStandard(t *testing.T) {
	rp := &fakeStandardRepo{rows: []*types.Standard{{
		ID: uuid.New(), MetricKey: "vo2_max", Gender: "male", AgeMin: 20, AgeMax: 29,
	}}}
	ai := &fakeAI{out: candidateResponse("ACSM", "professional_org", 0.9)}
	svc := NewDiscoveryService(rp, ai, 0.5, testutil.Logger(t))

	for i := 0; i < 2; i++ {
		got, err := svc.Discover(testDBC(), "vo2_max", "cardio goal")
		if err != nil {
			t.Fatalf("discover %d: %v", i, err)
		}
		if got != nil {
			t.Fatalf("discover %d: expected nil for already-cataloged metric, got %+v", i, got)
		}
	}
	if ai.calls != 0 {
		t.Fatalf("expected no generative calls, got %d", ai.calls)
	}
}

func TestDiscoverAndStoreTrustedSource(t *testing.T) {
	rp := &fakeStandardRepo{}
	ai := &fakeAI{out: candidateResponse("American College of Sports Medicine (ACSM)", "professional_org", 0.9)}
	svc := NewDiscoveryService(rp, ai, 0.5, testutil.Logger(t))

	id := svc.DiscoverAndStore(testDBC(), "vo2_max", "cardio goal")
	if id == nil {
		t.Fatal("expected stored standard id")
	}
	if len(rp.rows) != 1 {
		t.Fatalf("expected 1 stored row, got %d", len(rp.rows))
	}
	row := rp.rows[0]
	if row.VerifiedByAdmin {
		t.Fatal("discovered standards must start unverified")
	}
	// Validator scores ACSM at 1.0; claimed 0.9 must win the min.
	if row.ConfidenceScore != 0.9 {
		t.Fatalf("confidence = %v, want 0.9 (min of claimed and validator)", row.ConfidenceScore)
	}
	if row.EvidenceLevel != string(types.EvidenceProfessionalOrg) {
		t.Fatalf("evidence level = %s", row.EvidenceLevel)
	}
	if row.Percentile == nil || *row.Percentile != 75.0 {
		t.Fatalf("percentile = %v, want 75", row.Percentile)
	}
}

func TestDiscoverDiscardsUntrustedSource(t *testing.T) {
	rp := &fakeStandardRepo{}
	ai := &fakeAI{out: candidateResponse("randomfitnessblog.net", "ai_discovered", 0.9)}
	svc := NewDiscoveryService(rp, ai, 0.5, testutil.Logger(t))

	got, err := svc.Discover(testDBC(), "vo2_max", "cardio goal")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if got != nil {
		t.Fatalf("untrusted source must be discarded, got %+v", got)
	}
	if len(rp.rows) != 0 {
		t.Fatal("untrusted standard must never be stored")
	}
}

func TestDiscoverAndStoreAbsorbsSearchFailure(t *testing.T) {
	rp := &fakeStandardRepo{}
	ai := &fakeAI{err: context.DeadlineExceeded}
	svc := NewDiscoveryService(rp, ai, 0.5, testutil.Logger(t))

	if id := svc.DiscoverAndStore(testDBC(), "vo2_max", "cardio goal"); id != nil {
		t.Fatal("failed search must report nothing stored")
	}
	if len(rp.rows) != 0 {
		t.Fatal("no row should be stored on search failure")
	}
}
