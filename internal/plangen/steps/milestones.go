package steps

import (
	"fmt"
	"time"

	"github.com/strivekit/strivekit-backend/internal/clients/openai"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
	"github.com/strivekit/strivekit-backend/internal/pkg/pointers"
	"github.com/strivekit/strivekit-backend/internal/plangen/prompts"
)

// GenerateMilestones produces the goal's milestone set. The generative path
// is attempted once; any call, parse, or validation failure falls back to the
// category's static template. The returned flag reports whether the fallback
// was used.
func GenerateMilestones(dbc dbctx.Context, goal *types.Goal, now time.Time, ai openai.Client, log *logger.Logger) ([]*types.Milestone, bool) {
	weeks := goal.WeeksToTarget(now)
	count := MilestoneCount(weeks)

	ms, err := generateMilestonesOnce(dbc, goal, now, weeks, count, ai)
	if err != nil {
		log.Warn("milestone generation fell back to template", "goal_id", goal.ID, "error", err)
		return fallbackMilestones(goal, now, count), true
	}
	return ms, false
}

func generateMilestonesOnce(dbc dbctx.Context, goal *types.Goal, now time.Time, weeks, count int, ai openai.Client) ([]*types.Milestone, error) {
	p, err := prompts.Build(prompts.PromptMilestones, prompts.Input{
		GoalTitle:          goal.Title,
		GoalDescription:    goal.Description,
		GoalCategory:       goal.Category,
		TargetDate:         goal.TargetDate.Format("2006-01-02"),
		WeeksToTarget:      weeks,
		MetricsSummary:     metricsSummary(goal.Metrics),
		ProgressionPreview: progressionPreview(goal.Metrics, weeks),
		MilestoneCount:     count,
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	out, err := ai.GenerateJSON(dbc.Ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	raw, _ := out["milestones"].([]any)
	if len(raw) < 3 || len(raw) > 6 {
		return nil, fmt.Errorf("milestone count %d outside [3,6]", len(raw))
	}

	ms := make([]*types.Milestone, 0, len(raw))
	prev := now
	for i, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("milestone %d is not an object", i)
		}
		title := asString(obj["title"])
		if title == "" {
			return nil, fmt.Errorf("milestone %d missing title", i)
		}
		due, err := time.Parse("2006-01-02", asString(obj["due_date"]))
		if err != nil {
			return nil, fmt.Errorf("milestone %d due_date: %w", i, err)
		}
		// Strictly increasing, inside [now, target_date].
		if !due.After(prev) || due.After(goal.TargetDate) {
			return nil, fmt.Errorf("milestone %d due_date %s out of order", i, due.Format("2006-01-02"))
		}
		prev = due

		m := &types.Milestone{
			GoalID:      goal.ID,
			Title:       title,
			DueDate:     due,
			Status:      types.MilestoneStatusPending,
			ProgressPct: 0,
		}
		if desc := asString(obj["description"]); desc != "" {
			m.Description = pointers.String(desc)
		}
		if has, _ := obj["has_completion_rule"].(bool); has {
			rule, err := parseCompletionRule(obj["completion_rule"])
			if err != nil {
				return nil, fmt.Errorf("milestone %d: %w", i, err)
			}
			m.SetCompletionRule(rule)
		}
		ms = append(ms, m)
	}
	return ms, nil
}

func parseCompletionRule(v any) (*types.CompletionRule, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("completion_rule is not an object")
	}
	rule := &types.CompletionRule{
		Type:      asString(obj["type"]),
		MetricKey: asString(obj["metric_key"]),
		Operator:  asString(obj["operator"]),
	}
	val, ok := asFloat(obj["value"])
	if !ok {
		return nil, fmt.Errorf("completion_rule missing value")
	}
	rule.Value = val
	if rule.Type != types.CompletionRuleMetricThreshold || rule.MetricKey == "" {
		return nil, fmt.Errorf("invalid completion_rule %+v", rule)
	}
	switch rule.Operator {
	case "gte", "lte":
	default:
		return nil, fmt.Errorf("invalid completion_rule operator %q", rule.Operator)
	}
	return rule, nil
}

// Per-category default milestone templates, used verbatim when generation
// fails. Each list holds at least six entries so any count in [3,6] works.
var defaultMilestoneTitles = map[types.GoalCategory][]string{
	types.GoalCategoryEnduranceEvent: {
		"Establish a consistent weekly training routine",
		"Complete your first continuous long session",
		"Reach half the event distance comfortably",
		"Hold goal pace over a sustained interval",
		"Complete a full-distance rehearsal",
		"Taper and arrive fresh on event day",
	},
	types.GoalCategoryStrength: {
		"Groove technique on the core lifts",
		"Add load for the first time since baseline",
		"Hit a new five-rep best",
		"Reach the midpoint of your target load",
		"Set a new personal record single",
		"Consolidate the new strength baseline",
	},
	types.GoalCategoryBodyComp: {
		"Lock in your nutrition and training routine",
		"Reach a quarter of the target change",
		"Reach half of the target change",
		"Hold the trend through a full month",
		"Reach three quarters of the target change",
		"Arrive at your target and plan maintenance",
	},
	types.GoalCategoryHealthMarker: {
		"Establish the habits that move your marker",
		"Complete your first follow-up measurement",
		"See the first measurable improvement",
		"Sustain the improvement for a month",
		"Reach the target range on a repeat measurement",
		"Review results with your clinician",
	},
	types.GoalCategoryHabit: {
		"Complete the first full week without a miss",
		"Reach a two-week streak",
		"Reach a one-month streak",
		"Recover from a missed day within 24 hours",
		"Make the habit automatic in your routine",
		"Maintain the habit through a disrupted week",
	},
	types.GoalCategoryHybrid: {
		"Establish your combined training routine",
		"Hit your first checkpoint on every tracked metric",
		"Reach the midpoint across the board",
		"Push past a plateau on your weakest metric",
		"Reach three quarters of every target",
		"Close out all targets together",
	},
}

// fallbackMilestones spaces template milestones evenly across [now, target].
// A target date at or before now collapses the span; it then falls back to
// the one-week floor WeeksToTarget applies so due dates still land strictly
// after now and strictly increase.
func fallbackMilestones(goal *types.Goal, now time.Time, count int) []*types.Milestone {
	titles, ok := defaultMilestoneTitles[types.GoalCategory(goal.Category)]
	if !ok {
		titles = defaultMilestoneTitles[types.GoalCategoryHybrid]
	}
	if count > len(titles) {
		count = len(titles)
	}
	span := goal.TargetDate.Sub(now)
	if span <= 0 {
		span = time.Duration(goal.WeeksToTarget(now)) * 7 * 24 * time.Hour
	}
	ms := make([]*types.Milestone, 0, count)
	for i := 0; i < count; i++ {
		due := now.Add(span * time.Duration(i+1) / time.Duration(count))
		ms = append(ms, &types.Milestone{
			GoalID:      goal.ID,
			Title:       titles[i],
			DueDate:     due,
			Status:      types.MilestoneStatusPending,
			ProgressPct: 0,
		})
	}
	return ms
}
