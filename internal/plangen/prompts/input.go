package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Goal context
	GoalTitle       string
	GoalDescription string
	GoalCategory    string
	TargetDate      string
	WeeksToTarget   int

	// Metrics: one line per metric with current -> target, unit, source
	MetricsSummary string
	// First weeks of each metric's checkpoint sequence
	ProgressionPreview string

	// User profile
	ProfileSummary string

	// Milestones
	MilestoneCount int

	// Standards discovery
	MetricKey     string
	MetricContext string
}
