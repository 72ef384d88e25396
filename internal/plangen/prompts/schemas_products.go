package prompts

// ---------- standards discovery ----------

func DiscoveredStandardSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"metric_key":    map[string]any{"type": "string"},
			"standard_type": map[string]any{"type": "string"},
			"category":      map[string]any{"type": "string"},
			"age_min":       IntSchema(),
			"age_max":       IntSchema(),
			"gender":        EnumSchema("male", "female", "all"),
			"value_min":     NumberOrNullSchema(),
			"value_max":     NumberOrNullSchema(),
			"value_single":  NumberOrNullSchema(),
			"unit":          map[string]any{"type": "string"},
			"percentile":    NumberOrNullSchema(),
			"level":         StringOrNullSchema(),
			"source_name":   map[string]any{"type": "string"},
			"source_url":    StringOrNullSchema(),
			"source_description": map[string]any{
				"type": "string",
			},
			"evidence_level": EnumSchema("peer_reviewed", "professional_org", "ai_discovered", "community"),
			"confidence":     NumberSchema(),
		},
		"required": []string{
			"metric_key", "standard_type", "category", "age_min", "age_max",
			"gender", "value_min", "value_max", "value_single", "unit",
			"percentile", "level", "source_name", "source_url",
			"source_description", "evidence_level", "confidence",
		},
		"additionalProperties": false,
	}
}

func StandardDiscoverySchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"found": BoolSchema(),
			"standards": map[string]any{
				"type":  "array",
				"items": DiscoveredStandardSchema(),
			},
		},
		"required":             []string{"found", "standards"},
		"additionalProperties": false,
	}
}

// ---------- milestones ----------

// Strict json_schema mode requires every property listed in required and
// additionalProperties false, so completion-rule fields are always present
// and gated by has_completion_rule instead of being nullable objects.
func MilestoneItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":               map[string]any{"type": "string"},
			"description":         map[string]any{"type": "string"},
			"due_date":            map[string]any{"type": "string"},
			"has_completion_rule": BoolSchema(),
			"completion_rule": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type":       EnumSchema("metric_threshold"),
					"metric_key": map[string]any{"type": "string"},
					"operator":   EnumSchema("gte", "lte"),
					"value":      NumberSchema(),
				},
				"required":             []string{"type", "metric_key", "operator", "value"},
				"additionalProperties": false,
			},
		},
		"required":             []string{"title", "description", "due_date", "has_completion_rule", "completion_rule"},
		"additionalProperties": false,
	}
}

func MilestonesSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"milestones": map[string]any{
				"type":  "array",
				"items": MilestoneItemSchema(),
			},
		},
		"required":             []string{"milestones"},
		"additionalProperties": false,
	}
}

// ---------- training plan ----------

func TrainingSessionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"day":              map[string]any{"type": "string"},
			"title":            map[string]any{"type": "string"},
			"description":      map[string]any{"type": "string"},
			"duration_minutes": IntSchema(),
		},
		"required":             []string{"day", "title", "description", "duration_minutes"},
		"additionalProperties": false,
	}
}

func TrainingPhaseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"weeks": IntSchema(),
			"focus": map[string]any{"type": "string"},
			"sessions": map[string]any{
				"type":  "array",
				"items": TrainingSessionSchema(),
			},
		},
		"required":             []string{"name", "weeks", "focus", "sessions"},
		"additionalProperties": false,
	}
}

func TrainingPlanSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":          map[string]any{"type": "string"},
			"weekly_frequency": IntSchema(),
			"phases": map[string]any{
				"type":  "array",
				"items": TrainingPhaseSchema(),
			},
			"progression_principle": map[string]any{"type": "string"},
			"notes":                 StringArraySchema(),
		},
		"required":             []string{"summary", "weekly_frequency", "phases", "progression_principle", "notes"},
		"additionalProperties": false,
	}
}

// ---------- nutrition plan ----------

func NutritionPlanSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"summary":        map[string]any{"type": "string"},
			"daily_calories": NumberSchema(),
			"protein_g":      NumberSchema(),
			"carbs_g":        NumberSchema(),
			"fat_g":          NumberSchema(),
			"meal_timing":    StringArraySchema(),
			"food_guidance":  StringArraySchema(),
			"hydration":      map[string]any{"type": "string"},
			"disclaimer":     map[string]any{"type": "string"},
		},
		"required": []string{
			"summary", "daily_calories", "protein_g", "carbs_g", "fat_g",
			"meal_timing", "food_guidance", "hydration", "disclaimer",
		},
		"additionalProperties": false,
	}
}
