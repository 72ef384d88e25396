package standards

import (
	"testing"

	"github.com/google/uuid"

	"github.com/strivekit/strivekit-backend/internal/data/repos/testutil"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/pointers"
)

func maleProfile(age int) *types.UserProfile {
	return &types.UserProfile{
		UserID: uuid.New(),
		Age:    age,
		Gender: pointers.String("male"),
	}
}

func TestCalculateTargetMatchesStratum(t *testing.T) {
	right := &types.Standard{
		ID: uuid.New(), MetricKey: "vo2_max", Gender: "male",
		AgeMin: 20, AgeMax: 29, Unit: "ml/kg/min",
		ValueMin: pointers.Float64(44), ValueMax: pointers.Float64(51),
		ConfidenceScore: 0.9, SourceName: "ACSM",
	}
	rp := &fakeStandardRepo{rows: []*types.Standard{
		{
			ID: uuid.New(), MetricKey: "vo2_max", Gender: "female",
			AgeMin: 20, AgeMax: 29, ValueSingle: pointers.Float64(38),
			ConfidenceScore: 0.95, SourceName: "ACSM",
		},
		right,
	}}
	r := NewCatalogResolver(rp, testutil.Logger(t))

	got, err := r.CalculateTarget(testDBC(), "vo2_max", pointers.Float64(40), "run a 10k", maleProfile(25), LevelIntermediate)
	if err != nil {
		t.Fatalf("calculate target: %v", err)
	}
	if got == nil {
		t.Fatal("expected a resolved target")
	}
	if got.StandardID != right.ID {
		t.Fatal("resolver picked a standard outside the user's stratum")
	}
	// Intermediate picks the range midpoint.
	if got.TargetValue != 47.5 {
		t.Fatalf("target = %v, want 47.5", got.TargetValue)
	}
	if got.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", got.Confidence)
	}
}

func TestCalculateTargetDesiredLevels(t *testing.T) {
	rp := &fakeStandardRepo{rows: []*types.Standard{{
		ID: uuid.New(), MetricKey: "pushups", Gender: "all",
		AgeMin: 18, AgeMax: 99,
		ValueMin: pointers.Float64(10), ValueMax: pointers.Float64(40),
		ConfidenceScore: 0.8, SourceName: "ACSM",
	}}}
	r := NewCatalogResolver(rp, testutil.Logger(t))

	cases := []struct {
		level DesiredLevel
		want  float64
	}{
		{LevelBeginner, 10},
		{LevelIntermediate, 25},
		{LevelAdvanced, 40},
	}
	for _, c := range cases {
		got, err := r.CalculateTarget(testDBC(), "pushups", nil, "", maleProfile(30), c.level)
		if err != nil {
			t.Fatalf("%s: %v", c.level, err)
		}
		if got == nil || got.TargetValue != c.want {
			t.Fatalf("%s: got %+v, want value %v", c.level, got, c.want)
		}
	}
}

func TestCalculateTargetNoStandard(t *testing.T) {
	r := NewCatalogResolver(&fakeStandardRepo{}, testutil.Logger(t))
	got, err := r.CalculateTarget(testDBC(), "grip_strength", nil, "", maleProfile(30), LevelIntermediate)
	if err != nil {
		t.Fatalf("calculate target: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for uncataloged metric, got %+v", got)
	}
}

func TestCalculateTargetRequiresGender(t *testing.T) {
	r := NewCatalogResolver(&fakeStandardRepo{}, testutil.Logger(t))
	p := &types.UserProfile{UserID: uuid.New(), Age: 30}
	if _, err := r.CalculateTarget(testDBC(), "vo2_max", nil, "", p, LevelIntermediate); err == nil {
		t.Fatal("expected error for profile without gender")
	}
}

func TestInferDesiredLevel(t *testing.T) {
	r := NewCatalogResolver(&fakeStandardRepo{}, testutil.Logger(t))
	cases := []struct {
		desc string
		want DesiredLevel
	}{
		{"train for my first marathon race", LevelAdvanced},
		{"new to lifting, starting from scratch", LevelBeginner},
		{"improve general fitness", LevelIntermediate},
	}
	for _, c := range cases {
		if got := r.InferDesiredLevel(c.desc); got != c.want {
			t.Fatalf("%q: got %s, want %s", c.desc, got, c.want)
		}
	}
}
