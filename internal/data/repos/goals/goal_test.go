package goals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/strivekit/strivekit-backend/internal/data/repos/testutil"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/pointers"
)

func seedGoal(dbc dbctx.Context, t *testing.T, repo GoalRepo) *types.Goal {
	t.Helper()
	now := time.Now().UTC()
	goal := &types.Goal{
		UserID:      uuid.New(),
		Title:       "Deadlift 180kg",
		Description: "Pull double bodyweight",
		Category:    string(types.GoalCategoryStrength),
		Status:      "active",
		StartDate:   now,
		TargetDate:  now.AddDate(0, 0, 16*7),
	}
	if err := repo.Create(dbc, goal); err != nil {
		t.Fatalf("Create goal: %v", err)
	}
	return goal
}

func TestGoalRoundTripWithMetrics(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	log := testutil.Logger(t)

	goalRepo := NewGoalRepo(gdb, log)
	metricRepo := NewGoalMetricRepo(gdb, log)

	goal := seedGoal(dbc, t, goalRepo)
	metric := &types.GoalMetric{
		GoalID:       goal.ID,
		MetricKey:    "deadlift_1rm_kg",
		Label:        "Deadlift 1RM",
		Unit:         "kg",
		Direction:    string(types.DirectionIncrease),
		CurrentValue: pointers.Ptr(140.0),
	}
	if err := metricRepo.Create(dbc, []*types.GoalMetric{metric}); err != nil {
		t.Fatalf("Create metric: %v", err)
	}

	got, err := goalRepo.GetByIDWithMetrics(dbc, goal.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByIDWithMetrics = %v, %v", got, err)
	}
	if len(got.Metrics) != 1 || got.Metrics[0].MetricKey != "deadlift_1rm_kg" {
		t.Fatalf("metrics = %+v, want the seeded metric preloaded", got.Metrics)
	}

	if err := metricRepo.UpdateTarget(dbc, metric.ID, pointers.Ptr(180.0), 0.9, "estimated", pointers.Ptr("projected from current")); err != nil {
		t.Fatalf("UpdateTarget: %v", err)
	}
	metrics, err := metricRepo.ListByGoal(dbc, goal.ID)
	if err != nil || len(metrics) != 1 {
		t.Fatalf("ListByGoal = %v, %v", metrics, err)
	}
	m := metrics[0]
	if m.TargetValue == nil || *m.TargetValue != 180.0 {
		t.Errorf("TargetValue = %v, want 180", m.TargetValue)
	}
	if m.Confidence == nil || *m.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9", m.Confidence)
	}
	if m.TargetState() != types.MetricEnriched {
		t.Errorf("TargetState = %q, want enriched", m.TargetState())
	}
}

func TestMilestoneReplaceForGoal(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	log := testutil.Logger(t)

	goalRepo := NewGoalRepo(gdb, log)
	msRepo := NewMilestoneRepo(gdb, log)
	goal := seedGoal(dbc, t, goalRepo)

	now := time.Now().UTC()
	first := []*types.Milestone{
		{Title: "Week 4 check-in", DueDate: now.AddDate(0, 0, 28), Status: types.MilestoneStatusPending},
		{Title: "Week 8 check-in", DueDate: now.AddDate(0, 0, 56), Status: types.MilestoneStatusPending},
	}
	if err := msRepo.ReplaceForGoal(dbc, goal.ID, first); err != nil {
		t.Fatalf("ReplaceForGoal: %v", err)
	}

	second := []*types.Milestone{
		{Title: "Hit 150kg single", DueDate: now.AddDate(0, 0, 35), Status: types.MilestoneStatusPending},
	}
	second[0].SetCompletionRule(&types.CompletionRule{
		Type:      types.CompletionRuleMetricThreshold,
		MetricKey: "deadlift_1rm_kg",
		Operator:  "gte",
		Value:     150,
	})
	if err := msRepo.ReplaceForGoal(dbc, goal.ID, second); err != nil {
		t.Fatalf("second ReplaceForGoal: %v", err)
	}

	rows, err := msRepo.ListByGoal(dbc, goal.ID)
	if err != nil {
		t.Fatalf("ListByGoal: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 after replacement", len(rows))
	}
	rule := rows[0].GetCompletionRule()
	if rule == nil || rule.MetricKey != "deadlift_1rm_kg" || rule.Value != 150 {
		t.Errorf("completion rule = %+v", rule)
	}
}

func TestPlanActivateNewDeactivatesPrior(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	log := testutil.Logger(t)

	goalRepo := NewGoalRepo(gdb, log)
	planRepo := NewPlanRepo(gdb, log)
	goal := seedGoal(dbc, t, goalRepo)

	mkPlan := func(summary string) *types.Plan {
		return &types.Plan{
			GoalID:      goal.ID,
			PlanType:    string(types.PlanTypeTraining),
			Period:      types.PlanPeriodWeekly,
			ContentJSON: datatypes.JSON([]byte(`{"summary":"` + summary + `"}`)),
			Version:     1,
		}
	}

	if err := planRepo.ActivateNew(dbc, mkPlan("v1")); err != nil {
		t.Fatalf("ActivateNew: %v", err)
	}
	replacement := mkPlan("v2")
	if err := planRepo.ActivateNew(dbc, replacement); err != nil {
		t.Fatalf("second ActivateNew: %v", err)
	}

	active, err := planRepo.GetActive(dbc, goal.ID, string(types.PlanTypeTraining))
	if err != nil || active == nil {
		t.Fatalf("GetActive = %v, %v", active, err)
	}
	if active.ID != replacement.ID {
		t.Errorf("active plan = %v, want the replacement %v", active.ID, replacement.ID)
	}

	all, err := planRepo.ListActiveByGoal(dbc, goal.ID)
	if err != nil {
		t.Fatalf("ListActiveByGoal: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("active plans = %d, want 1 per type", len(all))
	}
}
