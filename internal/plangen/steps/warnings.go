package steps

import (
	types "github.com/strivekit/strivekit-backend/internal/domain"
)

var baseWarnings = []string{
	"This plan is informational only and does not constitute medical advice.",
	"Consult a qualified health professional before starting a new training or nutrition program.",
}

var categoryCautions = map[types.GoalCategory]string{
	types.GoalCategoryEnduranceEvent: "Watch for overtraining signs: persistent fatigue, elevated resting heart rate, or declining performance. Back off when they appear.",
	types.GoalCategoryHealthMarker:   "Monitor this biomarker with your clinician; do not adjust medication based on this plan.",
	types.GoalCategoryStrength:       "Prioritize lifting form over load; pain during a lift is a stop signal, not something to push through.",
	types.GoalCategoryBodyComp:       "Sustainable change stays at or under about 0.5 kg per week; faster loss tends to rebound.",
}

// ComposeWarnings builds the final warning list: static disclaimers, a
// timeline concern when the verdict is infeasible, then the category caution.
// The result is never empty.
func ComposeWarnings(category types.GoalCategory, feas FeasibilityAssessment) []string {
	warnings := make([]string, 0, 4)
	warnings = append(warnings, baseWarnings...)
	if !feas.IsFeasible {
		warnings = append(warnings, "The requested timeline raises safety concerns; see the recommended adjustments before starting.")
	}
	if caution, ok := categoryCautions[category]; ok {
		warnings = append(warnings, caution)
	}
	return warnings
}

// DefaultWarnings is the substitute list used if warning composition itself
// fails; it covers the same ground without category targeting.
func DefaultWarnings() []string {
	return []string{
		baseWarnings[0],
		baseWarnings[1],
		"Stop and seek professional guidance if you experience pain, dizziness, or unusual fatigue.",
		"Progress gradually; avoid sudden large increases in training load or sudden dietary restriction.",
	}
}
