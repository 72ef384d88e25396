package steps

import (
	"fmt"
	"math"

	types "github.com/strivekit/strivekit-backend/internal/domain"
)

const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

// FeasibilityAssessment is always fully populated; callers never see a
// partial verdict.
type FeasibilityAssessment struct {
	IsFeasible             bool     `json:"is_feasible"`
	RecommendedAdjustments []string `json:"recommended_adjustments,omitempty"`
	RiskLevel              string   `json:"risk_level"`
}

// FeasibilityRules holds the tunable safety thresholds.
type FeasibilityRules struct {
	MinEnduranceWeeks int
	// Maximum safe bodyweight change per week, kg.
	SafeWeeklyRateKg float64
}

func DefaultFeasibilityRules() FeasibilityRules {
	return FeasibilityRules{
		MinEnduranceWeeks: 12,
		SafeWeeklyRateKg:  0.5,
	}
}

// AssessFeasibility evaluates the safety rule table in order. It is the
// deterministic backstop warning composition depends on.
func AssessFeasibility(goal *types.Goal, weeksToGoal int, rules FeasibilityRules) FeasibilityAssessment {
	category := types.GoalCategory(goal.Category)

	if category == types.GoalCategoryEnduranceEvent && weeksToGoal < rules.MinEnduranceWeeks {
		return FeasibilityAssessment{
			IsFeasible: false,
			RiskLevel:  RiskHigh,
			RecommendedAdjustments: []string{
				fmt.Sprintf("Extend the timeline to at least %d weeks to prepare for an endurance event safely.", rules.MinEnduranceWeeks),
			},
		}
	}

	if category == types.GoalCategoryBodyComp && goal.TargetWeightChangeKg != nil {
		change := math.Abs(*goal.TargetWeightChangeKg)
		required := int(math.Ceil(change / rules.SafeWeeklyRateKg))
		if weeksToGoal < required {
			return FeasibilityAssessment{
				IsFeasible: false,
				RiskLevel:  RiskHigh,
				RecommendedAdjustments: []string{
					fmt.Sprintf("Extend the timeline to at least %d weeks to keep weight change at or under %.1f kg per week.", required, rules.SafeWeeklyRateKg),
				},
			}
		}
	}

	return FeasibilityAssessment{IsFeasible: true, RiskLevel: RiskLow}
}
