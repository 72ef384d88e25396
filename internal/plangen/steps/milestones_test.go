package steps

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/strivekit/strivekit-backend/internal/data/repos/testutil"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/pointers"
)

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

func testDBC() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func testGoal(category string, weeks int, now time.Time) *types.Goal {
	return &types.Goal{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "Run a sub-50 10k",
		Description: "Build up to racing a 10k",
		Category:    category,
		StartDate:   now,
		TargetDate:  now.AddDate(0, 0, weeks*7),
		Metrics: []types.GoalMetric{{
			ID:           uuid.New(),
			MetricKey:    "weekly_km",
			Label:        "Weekly distance",
			Unit:         "km",
			Direction:    string(types.DirectionIncrease),
			CurrentValue: pointers.Float64(20),
			TargetValue:  pointers.Float64(40),
			TargetSource: pointers.String("estimated"),
		}},
	}
}

func milestonesResponse(now time.Time, dates ...int) map[string]any {
	items := make([]any, 0, len(dates))
	for i, d := range dates {
		items = append(items, map[string]any{
			"title":               fmt.Sprintf("Milestone %d", i+1),
			"description":         "keep building",
			"due_date":            now.AddDate(0, 0, d).Format("2006-01-02"),
			"has_completion_rule": i == 0,
			"completion_rule": map[string]any{
				"type":       "metric_threshold",
				"metric_key": "weekly_km",
				"operator":   "gte",
				"value":      25.0,
			},
		})
	}
	return map[string]any{"milestones": items}
}

func assertMilestoneInvariants(t *testing.T, ms []*types.Milestone, goal *types.Goal) {
	t.Helper()
	if len(ms) < 3 || len(ms) > 6 {
		t.Fatalf("milestone count %d outside [3,6]", len(ms))
	}
	for i, m := range ms {
		if m.Status != types.MilestoneStatusPending || m.ProgressPct != 0 {
			t.Fatalf("milestone %d not initialized pending/0", i)
		}
		if i > 0 && !m.DueDate.After(ms[i-1].DueDate) {
			t.Fatalf("due dates not strictly increasing at %d", i)
		}
		if m.DueDate.After(goal.TargetDate) {
			t.Fatalf("milestone %d due after target date", i)
		}
	}
}

func TestGenerateMilestonesGenerativePath(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	goal := testGoal("endurance_event", 16, now)
	ai := &fakeAI{out: milestonesResponse(now, 21, 42, 70, 98)}

	ms, fellBack := GenerateMilestones(testDBC(), goal, now, ai, testutil.Logger(t))
	if fellBack {
		t.Fatal("expected generative path")
	}
	assertMilestoneInvariants(t, ms, goal)
	if len(ms) != 4 {
		t.Fatalf("got %d milestones, want 4 for a 16-week goal", len(ms))
	}
	rule := ms[0].GetCompletionRule()
	if rule == nil || rule.MetricKey != "weekly_km" || rule.Operator != "gte" || rule.Value != 25 {
		t.Fatalf("completion rule not carried through: %+v", rule)
	}
	if ms[1].GetCompletionRule() != nil {
		t.Fatal("milestone without has_completion_rule must have no rule")
	}
}

func TestGenerateMilestonesFallbackOnCallFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	goal := testGoal("strength", 20, now)
	ai := &fakeAI{err: errors.New("model unavailable")}

	ms, fellBack := GenerateMilestones(testDBC(), goal, now, ai, testutil.Logger(t))
	if !fellBack {
		t.Fatal("expected fallback")
	}
	assertMilestoneInvariants(t, ms, goal)
	if len(ms) != 5 {
		t.Fatalf("got %d milestones, want 5 for a 20-week goal", len(ms))
	}
}

func TestGenerateMilestonesFallbackOnBadDates(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	goal := testGoal("endurance_event", 16, now)
	// Second date not after the first.
	ai := &fakeAI{out: milestonesResponse(now, 21, 21, 70, 98)}

	ms, fellBack := GenerateMilestones(testDBC(), goal, now, ai, testutil.Logger(t))
	if !fellBack {
		t.Fatal("non-increasing due dates must trigger the fallback")
	}
	assertMilestoneInvariants(t, ms, goal)
}

func TestFallbackMilestonesShortTimeline(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	goal := testGoal("habit", 4, now)
	ai := &fakeAI{err: errors.New("down")}

	ms, _ := GenerateMilestones(testDBC(), goal, now, ai, testutil.Logger(t))
	// 4 weeks floor-divides to 1, clamped up to 3.
	if len(ms) != 3 {
		t.Fatalf("got %d milestones, want 3", len(ms))
	}
	assertMilestoneInvariants(t, ms, goal)
}

func TestFallbackMilestonesPastTargetDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	goal := testGoal("strength", 4, now)
	// Target already behind us; the span clamp keeps due dates ahead of now.
	goal.TargetDate = now.AddDate(0, 0, -7)
	ai := &fakeAI{err: errors.New("down")}

	ms, fellBack := GenerateMilestones(testDBC(), goal, now, ai, testutil.Logger(t))
	if !fellBack {
		t.Fatal("expected fallback")
	}
	if len(ms) != 3 {
		t.Fatalf("got %d milestones, want 3", len(ms))
	}
	prev := now
	for i, m := range ms {
		if !m.DueDate.After(prev) {
			t.Fatalf("milestone %d due %s not strictly after %s",
				i, m.DueDate.Format("2006-01-02"), prev.Format("2006-01-02"))
		}
		prev = m.DueDate
	}
}

func TestMilestoneCountClamp(t *testing.T) {
	cases := map[int]int{1: 3, 8: 3, 16: 4, 24: 6, 52: 6}
	for weeks, want := range cases {
		if got := MilestoneCount(weeks); got != want {
			t.Fatalf("MilestoneCount(%d) = %d, want %d", weeks, got, want)
		}
	}
}
