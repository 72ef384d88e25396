package steps

import (
	"fmt"
	"time"

	"github.com/strivekit/strivekit-backend/internal/clients/openai"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
	"github.com/strivekit/strivekit-backend/internal/plangen/prompts"
)

const nutritionPlanVersion = 1

const nutritionDisclaimer = "General nutrition guidance only, not medical or dietetic advice. Consult a registered dietitian or physician for individual needs."

type NutritionContent struct {
	Summary       string   `json:"summary"`
	DailyCalories float64  `json:"daily_calories"`
	ProteinG      float64  `json:"protein_g"`
	CarbsG        float64  `json:"carbs_g"`
	FatG          float64  `json:"fat_g"`
	MealTiming    []string `json:"meal_timing"`
	FoodGuidance  []string `json:"food_guidance"`
	Hydration     string   `json:"hydration"`
	Disclaimer    string   `json:"disclaimer"`
}

// BuildNutritionPlan assembles the nutrition plan. Produced for every goal
// category; falls back deterministically like the training assembler.
func BuildNutritionPlan(dbc dbctx.Context, goal *types.Goal, profile *types.UserProfile, now time.Time, ai openai.Client, log *logger.Logger) (*types.Plan, bool) {
	weeks := goal.WeeksToTarget(now)

	content, err := nutritionPlanOnce(dbc, goal, profile, weeks, ai)
	fallback := false
	if err != nil {
		log.Warn("nutrition plan fell back to template", "goal_id", goal.ID, "error", err)
		content = fallbackNutritionContent(types.GoalCategory(goal.Category), profile)
		fallback = true
	}
	return wrapPlan(goal.ID, types.PlanTypeNutrition, content, nutritionPlanVersion), fallback
}

func nutritionPlanOnce(dbc dbctx.Context, goal *types.Goal, profile *types.UserProfile, weeks int, ai openai.Client) (*NutritionContent, error) {
	p, err := prompts.Build(prompts.PromptNutritionPlan, prompts.Input{
		GoalTitle:       goal.Title,
		GoalDescription: goal.Description,
		GoalCategory:    goal.Category,
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
	return parseNutritionContent(out)
}

func parseNutritionContent(out map[string]any) (*NutritionContent, error) {
	c := &NutritionContent{
		Summary:      asString(out["summary"]),
		MealTiming:   asStringSlice(out["meal_timing"]),
		FoodGuidance: asStringSlice(out["food_guidance"]),
		Hydration:    asString(out["hydration"]),
		Disclaimer:   asString(out["disclaimer"]),
	}
	if c.Summary == "" {
		return nil, fmt.Errorf("missing summary")
	}
	var ok bool
	if c.DailyCalories, ok = asFloat(out["daily_calories"]); !ok || c.DailyCalories <= 0 {
		return nil, fmt.Errorf("invalid daily_calories")
	}
	if c.ProteinG, ok = asFloat(out["protein_g"]); !ok || c.ProteinG <= 0 {
		return nil, fmt.Errorf("invalid protein_g")
	}
	if c.CarbsG, ok = asFloat(out["carbs_g"]); !ok || c.CarbsG < 0 {
		return nil, fmt.Errorf("invalid carbs_g")
	}
	if c.FatG, ok = asFloat(out["fat_g"]); !ok || c.FatG < 0 {
		return nil, fmt.Errorf("invalid fat_g")
	}
	if len(c.MealTiming) == 0 || len(c.FoodGuidance) == 0 {
		return nil, fmt.Errorf("missing meal_timing or food_guidance")
	}
	if c.Disclaimer == "" {
		c.Disclaimer = nutritionDisclaimer
	}
	return c, nil
}

// fallbackNutritionContent uses bodyweight-scaled defaults when available and
// maintenance-style estimates otherwise.
func fallbackNutritionContent(category types.GoalCategory, profile *types.UserProfile) *NutritionContent {
	weight := 75.0
	if profile != nil && profile.BodyweightKg != nil {
		weight = *profile.BodyweightKg
	}
	calories := weight * 31
	if category == types.GoalCategoryBodyComp {
		calories = weight * 27
	}
	protein := weight * 1.8
	fat := weight * 0.9
	carbs := (calories - protein*4 - fat*9) / 4
	if carbs < 0 {
		carbs = 0
	}
	return &NutritionContent{
		Summary:       "A balanced weekly template centered on whole foods and steady protein intake.",
		DailyCalories: round1(calories),
		ProteinG:      round1(protein),
		CarbsG:        round1(carbs),
		FatG:          round1(fat),
		MealTiming: []string{
			"Eat a protein-containing meal within 2 hours of waking.",
			"Have a carbohydrate-forward meal or snack 1-2 hours before training.",
			"Eat protein and carbohydrate within 2 hours after training.",
			"Finish the last large meal 2-3 hours before sleep.",
		},
		FoodGuidance: []string{
			"Anchor each meal around a lean protein source.",
			"Fill half the plate with vegetables or fruit.",
			"Prefer whole grains over refined carbohydrate.",
			"Keep liquid calories to a minimum.",
			"Plan snacks instead of improvising them.",
		},
		Hydration:  "Drink roughly 30-35 ml of fluid per kg of bodyweight daily, more on training days.",
		Disclaimer: nutritionDisclaimer,
	}
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
