package prompts

// register_all.go registers every prompt in the registry using RegisterSpec(Spec{...}).

func RegisterAll() {
	// ---------- Standards catalog ----------

	RegisterSpec(Spec{
		Name:       PromptStandardDiscovery,
		Version:    1,
		SchemaName: "standard_discovery",
		Schema:     StandardDiscoverySchema,
		System: `
You are a sports-science research assistant maintaining a catalog of fitness and health reference standards.
Only report standards you can attribute to a real, named source (a standards body, professional organization, indexed journal, or established expert resource).
Never invent a source. If you cannot attribute a standard, set found=false.
Return JSON only.`,
		User: `
Metric key: {{.MetricKey}}
Context: {{.MetricContext}}

Task:
- Find published reference standards for this metric (normative tables, recommended ranges, percentile data).
- For each standard report the population stratum it covers (age_min/age_max, gender) and the value as either a range (value_min/value_max) or a single value (value_single); leave unused value fields null.
- source_name must be the organization or publication that produced the standard; source_url may be null.
- evidence_level: peer_reviewed for journal-published data, professional_org for standards bodies, community otherwise.
- confidence in [0,1] reflecting how well-established the standard is.
- If nothing trustworthy exists for this metric, return found=false and an empty standards array.`,
		Validators: []Validator{
			RequireNonEmpty("MetricKey", func(in Input) string { return in.MetricKey }),
		},
	})

	// ---------- Plan generation ----------

	RegisterSpec(Spec{
		Name:       PromptMilestones,
		Version:    1,
		SchemaName: "milestones",
		Schema:     MilestonesSchema,
		System: `
You are a certified fitness coach breaking a long-term goal into progressive milestones.
Milestones must be concrete, measurable where possible, and evenly spaced across the timeline.
Return JSON only.`,
		User: `
Goal: {{.GoalTitle}}
Category: {{.GoalCategory}}
Description: {{.GoalDescription}}
Target date: {{.TargetDate}} ({{.WeeksToTarget}} weeks from now)

Tracked metrics (current -> target):
{{.MetricsSummary}}

Early progression checkpoints:
{{.ProgressionPreview}}

Task:
- Produce exactly {{.MilestoneCount}} progressive milestones.
- due_date: ISO date (YYYY-MM-DD), strictly increasing, all within the timeline, the last at or before the target date.
- Where a milestone corresponds to reaching a checkpoint value on a tracked metric, set has_completion_rule=true and fill completion_rule with type="metric_threshold", the metric key, operator gte (increase) or lte (decrease), and the checkpoint value.
- Otherwise set has_completion_rule=false and fill completion_rule with empty strings, operator gte and value 0.`,
		Validators: []Validator{
			RequireNonEmpty("GoalTitle", func(in Input) string { return in.GoalTitle }),
			RequirePositive("MilestoneCount", func(in Input) int { return in.MilestoneCount }),
			RequireISODate("TargetDate", func(in Input) string { return in.TargetDate }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptTrainingPlan,
		Version:    1,
		SchemaName: "training_plan",
		Schema:     TrainingPlanSchema,
		System: `
You are a certified strength and conditioning coach writing a periodized weekly training plan.
Apply progressive-overload and periodization principles: a foundation phase, a progressive build, and a taper/consolidation phase.
Sessions must be specific enough to follow without further explanation.
Return JSON only.`,
		User: `
Goal: {{.GoalTitle}}
Category: {{.GoalCategory}}
Description: {{.GoalDescription}}
Timeline: {{.WeeksToTarget}} weeks, target date {{.TargetDate}}

Athlete profile:
{{.ProfileSummary}}

Tracked metrics (current -> target):
{{.MetricsSummary}}

Task:
- Split the {{.WeeksToTarget}} weeks into named phases whose week counts sum to the full timeline.
- Each phase lists a representative week of sessions (day, title, description, duration_minutes).
- weekly_frequency: sessions per week.
- progression_principle: one sentence describing how load/volume advances week to week.
- notes: any scheduling or recovery guidance.`,
		Validators: []Validator{
			RequireNonEmpty("GoalTitle", func(in Input) string { return in.GoalTitle }),
			RequirePositive("WeeksToTarget", func(in Input) int { return in.WeeksToTarget }),
			RequireISODate("TargetDate", func(in Input) string { return in.TargetDate }),
		},
	})

	RegisterSpec(Spec{
		Name:       PromptNutritionPlan,
		Version:    1,
		SchemaName: "nutrition_plan",
		Schema:     NutritionPlanSchema,
		System: `
You are a sports nutritionist writing a weekly nutrition plan to support a training goal.
You are not providing medical advice; the disclaimer field must say so explicitly.
Return JSON only.`,
		User: `
Goal: {{.GoalTitle}}
Category: {{.GoalCategory}}
Description: {{.GoalDescription}}
Timeline: {{.WeeksToTarget}} weeks

Profile:
{{.ProfileSummary}}

Tracked metrics (current -> target):
{{.MetricsSummary}}

Task:
- daily_calories plus protein_g/carbs_g/fat_g macro targets appropriate to the goal and profile.
- meal_timing: 3-6 entries describing when to eat relative to training.
- food_guidance: 4-8 concrete food choices or rules.
- hydration: one-sentence daily fluid guidance.
- disclaimer: state this is general guidance, not medical or dietetic advice.`,
		Validators: []Validator{
			RequireNonEmpty("GoalTitle", func(in Input) string { return in.GoalTitle }),
		},
	})
}
