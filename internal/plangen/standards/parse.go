package standards

import (
	"fmt"
	"strings"

	types "github.com/strivekit/strivekit-backend/internal/domain"
)

// parseCandidate maps one schema-validated discovery item into a
// DiscoveredStandard. The strict response schema guarantees field presence;
// this re-checks the handful of values the engine cannot tolerate missing.
func parseCandidate(metricKey string, raw any) (*DiscoveredStandard, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("candidate is not an object")
	}
	cand := &DiscoveredStandard{
		MetricKey:         metricKey,
		StandardType:      str(m, "standard_type"),
		Category:          str(m, "category"),
		AgeMin:            asInt(m["age_min"]),
		AgeMax:            asInt(m["age_max"]),
		Gender:            str(m, "gender"),
		ValueMin:          floatPtr(m["value_min"]),
		ValueMax:          floatPtr(m["value_max"]),
		ValueSingle:       floatPtr(m["value_single"]),
		Unit:              str(m, "unit"),
		Percentile:        floatPtr(m["percentile"]),
		Level:             strPtr(m["level"]),
		SourceName:        str(m, "source_name"),
		SourceURL:         strPtr(m["source_url"]),
		SourceDescription: str(m, "source_description"),
		EvidenceLevel:     str(m, "evidence_level"),
		Confidence:        asFloat(m["confidence"]),
	}
	if strings.TrimSpace(cand.SourceName) == "" {
		return nil, fmt.Errorf("candidate missing source_name")
	}
	if cand.ValueMin == nil && cand.ValueMax == nil && cand.ValueSingle == nil {
		return nil, fmt.Errorf("candidate has no value")
	}
	switch cand.Gender {
	case types.GenderMale, types.GenderFemale, types.GenderAll:
	default:
		cand.Gender = types.GenderAll
	}
	if cand.AgeMax <= 0 {
		cand.AgeMax = 120
	}
	if cand.Confidence < 0 {
		cand.Confidence = 0
	}
	if cand.Confidence > 1 {
		cand.Confidence = 1
	}
	return cand, nil
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func strPtr(v any) *string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func floatPtr(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	}
	return nil
}
