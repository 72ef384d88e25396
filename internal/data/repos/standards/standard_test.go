package standards

import (
	"context"
	"testing"

	"github.com/strivekit/strivekit-backend/internal/data/repos/testutil"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/pointers"
)

func seedStandard(metricKey, gender string, ageMin, ageMax int, confidence float64, verified bool) *types.Standard {
	return &types.Standard{
		MetricKey:         metricKey,
		StandardType:      "strength",
		Category:          "strength",
		AgeMin:            ageMin,
		AgeMax:            ageMax,
		Gender:            gender,
		ValueMin:          pointers.Ptr(100.0),
		ValueMax:          pointers.Ptr(180.0),
		Unit:              "kg",
		SourceName:        "NSCA",
		SourceDescription: "NSCA strength norms",
		ConfidenceScore:   confidence,
		EvidenceLevel:     string(types.EvidenceProfessionalOrg),
		VerifiedByAdmin:   verified,
	}
}

func TestStandardCreateAndTrustOrdering(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	repo := NewStandardRepo(gdb, testutil.Logger(t))

	unverifiedHigh := seedStandard("deadlift_1rm_kg", "male", 20, 29, 0.95, false)
	verifiedLow := seedStandard("deadlift_1rm_kg", "male", 30, 39, 0.7, true)
	for _, s := range []*types.Standard{unverifiedHigh, verifiedLow} {
		if err := repo.Create(dbc, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	exists, err := repo.ExistsByMetricKey(dbc, "deadlift_1rm_kg")
	if err != nil || !exists {
		t.Fatalf("ExistsByMetricKey = %v, %v; want true", exists, err)
	}

	rows, err := repo.ListByMetricKey(dbc, "deadlift_1rm_kg")
	if err != nil {
		t.Fatalf("ListByMetricKey: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if !rows[0].VerifiedByAdmin {
		t.Error("verified rows should order before unverified regardless of confidence")
	}
}

func TestStandardDuplicateStratumIsNoOp(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	repo := NewStandardRepo(gdb, testutil.Logger(t))

	first := seedStandard("bench_1rm_kg", "all", 18, 120, 0.9, false)
	if err := repo.Create(dbc, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := seedStandard("bench_1rm_kg", "all", 18, 120, 0.4, false)
	if err := repo.Create(dbc, dup); err != nil {
		t.Fatalf("duplicate Create: %v", err)
	}
	rows, err := repo.ListByMetricKey(dbc, "bench_1rm_kg")
	if err != nil {
		t.Fatalf("ListByMetricKey: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1 after duplicate stratum insert", len(rows))
	}
}

func TestStandardVerifyAndUsage(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	repo := NewStandardRepo(gdb, testutil.Logger(t))

	row := seedStandard("vo2max_ml_kg_min", "female", 20, 29, 0.8, false)
	if err := repo.Create(dbc, row); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.SetVerified(dbc, row.ID, true); err != nil {
		t.Fatalf("SetVerified: %v", err)
	}
	if err := repo.IncrementUsage(dbc, row.ID); err != nil {
		t.Fatalf("IncrementUsage: %v", err)
	}

	got, err := repo.GetByID(dbc, row.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID = %v, %v", got, err)
	}
	if !got.VerifiedByAdmin {
		t.Error("expected verified_by_admin true")
	}
	if got.UsageCount != 1 {
		t.Errorf("usage_count = %d, want 1", got.UsageCount)
	}

	unverified, err := repo.List(dbc, true, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, s := range unverified {
		if s.ID == row.ID {
			t.Error("verified row should not appear in unverified listing")
		}
	}
}
