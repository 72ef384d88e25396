package steps

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/strivekit/strivekit-backend/internal/clients/openai"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
	"github.com/strivekit/strivekit-backend/internal/plangen/prompts"
)

const trainingPlanVersion = 1

// Training plan content document. Both the generative and fallback paths
// produce exactly this shape.
type TrainingContent struct {
	Summary              string          `json:"summary"`
	WeeklyFrequency      int             `json:"weekly_frequency"`
	Phases               []TrainingPhase `json:"phases"`
	ProgressionPrinciple string          `json:"progression_principle"`
	Notes                []string        `json:"notes"`
}

type TrainingPhase struct {
	Name     string            `json:"name"`
	Weeks    int               `json:"weeks"`
	Focus    string            `json:"focus"`
	Sessions []TrainingSession `json:"sessions"`
}

type TrainingSession struct {
	Day             string `json:"day"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
}

// BuildTrainingPlan assembles the training plan for categories that need one.
// Any generative failure, including a structurally invalid response, yields
// the deterministic fallback. The flag reports fallback use.
func BuildTrainingPlan(dbc dbctx.Context, goal *types.Goal, profile *types.UserProfile, now time.Time, ai openai.Client, log *logger.Logger) (*types.Plan, bool) {
	weeks := goal.WeeksToTarget(now)

	content, err := trainingPlanOnce(dbc, goal, profile, weeks, ai)
	fallback := false
	if err != nil {
		log.Warn("training plan fell back to template", "goal_id", goal.ID, "error", err)
		content = fallbackTrainingContent(types.GoalCategory(goal.Category), weeks)
		fallback = true
	}
	return wrapPlan(goal.ID, types.PlanTypeTraining, content, trainingPlanVersion), fallback
}

func trainingPlanOnce(dbc dbctx.Context, goal *types.Goal, profile *types.UserProfile, weeks int, ai openai.Client) (*TrainingContent, error) {
	p, err := prompts.Build(prompts.PromptTrainingPlan, prompts.Input{
		GoalTitle:       goal.Title,
		GoalDescription: goal.Description,
		GoalCategory:    goal.Category,
		TargetDate:      goal.TargetDate.Format("2006-01-02"),
		WeeksToTarget:   weeks,
		MetricsSummary:  metricsSummary(goal.Metrics),
		ProfileSummary:  profileSummary(profile),
	})
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	out, err := ai.GenerateJSON(dbc.Ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	content, err := parseTrainingContent(out)
	if err != nil {
		return nil, fmt.Errorf("validate response: %w", err)
	}
	return content, nil
}

func parseTrainingContent(out map[string]any) (*TrainingContent, error) {
	c := &TrainingContent{
		Summary:              asString(out["summary"]),
		ProgressionPrinciple: asString(out["progression_principle"]),
		Notes:                asStringSlice(out["notes"]),
	}
	if c.Summary == "" {
		return nil, fmt.Errorf("missing summary")
	}
	freq, ok := asInt(out["weekly_frequency"])
	if !ok || freq <= 0 {
		return nil, fmt.Errorf("invalid weekly_frequency")
	}
	c.WeeklyFrequency = freq

	rawPhases, _ := out["phases"].([]any)
	if len(rawPhases) == 0 {
		return nil, fmt.Errorf("no phases")
	}
	for i, rp := range rawPhases {
		obj, ok := rp.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("phase %d is not an object", i)
		}
		phase := TrainingPhase{
			Name:  asString(obj["name"]),
			Focus: asString(obj["focus"]),
		}
		if phase.Name == "" {
			return nil, fmt.Errorf("phase %d missing name", i)
		}
		w, ok := asInt(obj["weeks"])
		if !ok || w <= 0 {
			return nil, fmt.Errorf("phase %d invalid weeks", i)
		}
		phase.Weeks = w
		rawSessions, _ := obj["sessions"].([]any)
		if len(rawSessions) == 0 {
			return nil, fmt.Errorf("phase %d has no sessions", i)
		}
		for j, rs := range rawSessions {
			sObj, ok := rs.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("phase %d session %d is not an object", i, j)
			}
			sess := TrainingSession{
				Day:         asString(sObj["day"]),
				Title:       asString(sObj["title"]),
				Description: asString(sObj["description"]),
			}
			if sess.Title == "" {
				return nil, fmt.Errorf("phase %d session %d missing title", i, j)
			}
			dur, _ := asInt(sObj["duration_minutes"])
			sess.DurationMinutes = dur
			phase.Sessions = append(phase.Sessions, sess)
		}
		c.Phases = append(c.Phases, phase)
	}
	return c, nil
}

// Fallback phase split: ~40% foundation, ~40% progressive overload, ~20%
// taper, with generic session templates per category.
func fallbackTrainingContent(category types.GoalCategory, weeks int) *TrainingContent {
	foundation := weeks * 2 / 5
	if foundation < 1 {
		foundation = 1
	}
	build := weeks * 2 / 5
	if build < 1 {
		build = 1
	}
	taper := weeks - foundation - build
	if taper < 1 {
		taper = 1
	}

	sessions := fallbackSessions(category)
	return &TrainingContent{
		Summary:         fmt.Sprintf("A %d-week periodized plan: foundation, progressive build, then taper.", weeks),
		WeeklyFrequency: len(sessions),
		Phases: []TrainingPhase{
			{Name: "Foundation", Weeks: foundation, Focus: "Build consistency and base capacity at moderate effort.", Sessions: sessions},
			{Name: "Progressive overload", Weeks: build, Focus: "Increase load or volume a little each week.", Sessions: sessions},
			{Name: "Taper", Weeks: taper, Focus: "Reduce volume, keep intensity, arrive fresh.", Sessions: sessions},
		},
		ProgressionPrinciple: "Increase weekly load or volume by roughly 5-10% while recovery stays solid.",
		Notes: []string{
			"Keep one full rest day between hard sessions.",
			"Repeat a week rather than forcing progression after poor sleep or illness.",
		},
	}
}

func fallbackSessions(category types.GoalCategory) []TrainingSession {
	switch category {
	case types.GoalCategoryEnduranceEvent:
		return []TrainingSession{
			{Day: "Tuesday", Title: "Intervals", Description: "Short hard repeats with full recovery.", DurationMinutes: 45},
			{Day: "Thursday", Title: "Steady effort", Description: "Continuous work at a comfortably hard pace.", DurationMinutes: 40},
			{Day: "Saturday", Title: "Long session", Description: "Easy pace, extend duration week over week.", DurationMinutes: 75},
		}
	case types.GoalCategoryStrength:
		return []TrainingSession{
			{Day: "Monday", Title: "Lower body", Description: "Squat pattern plus hinge accessory work.", DurationMinutes: 60},
			{Day: "Wednesday", Title: "Upper body", Description: "Press and pull pairs, moderate volume.", DurationMinutes: 60},
			{Day: "Friday", Title: "Full body", Description: "Main lifts at higher load, lower volume.", DurationMinutes: 60},
		}
	default:
		return []TrainingSession{
			{Day: "Monday", Title: "Strength", Description: "Full-body resistance session.", DurationMinutes: 50},
			{Day: "Wednesday", Title: "Conditioning", Description: "Mixed-intensity cardio work.", DurationMinutes: 40},
			{Day: "Saturday", Title: "Long easy session", Description: "Low intensity, longer duration.", DurationMinutes: 60},
		}
	}
}

// wrapPlan wraps a content document in the persisted plan envelope.
func wrapPlan(goalID uuid.UUID, planType types.PlanType, content any, version int) *types.Plan {
	b, _ := json.Marshal(content)
	return &types.Plan{
		GoalID:      goalID,
		PlanType:    string(planType),
		Period:      types.PlanPeriodWeekly,
		ContentJSON: datatypes.JSON(b),
		Version:     version,
		IsActive:    true,
	}
}
