package prompts

type PromptName string

const (
	// Standards catalog
	PromptStandardDiscovery PromptName = "standard_discovery"

	// Plan generation
	PromptMilestones    PromptName = "milestones"
	PromptTrainingPlan  PromptName = "training_plan"
	PromptNutritionPlan PromptName = "nutrition_plan"
)
