package steps

import (
	types "github.com/strivekit/strivekit-backend/internal/domain"
)

const supplementPlanVersion = 1

type SupplementContent struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	Disclaimer      string   `json:"disclaimer"`
}

// BuildSupplementPlan is a deliberate static stub: no recommendations are
// generated until the evidence review for supplement guidance lands. The
// envelope matches the other plan types so callers need no special case.
func BuildSupplementPlan(goal *types.Goal) *types.Plan {
	content := &SupplementContent{
		Summary:         "No supplement recommendations at this time.",
		Recommendations: []string{},
		Disclaimer:      "Supplements are not required to reach this goal. Discuss any supplement use with a physician or pharmacist, especially alongside medication.",
	}
	return wrapPlan(goal.ID, types.PlanTypeSupplements, content, supplementPlanVersion)
}
