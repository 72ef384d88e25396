package steps

import (
	"fmt"
	"strings"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/plangen/progression"
)

// MilestoneCount maps a timeline length to how many milestones to generate:
// one per month, clamped into [3,6].
func MilestoneCount(weeks int) int {
	n := weeks / 4
	if n < 3 {
		n = 3
	}
	if n > 6 {
		n = 6
	}
	return n
}

// metricsSummary renders one line per metric for prompt embedding. Metrics
// without a target are listed as pending so the model does not invent one.
func metricsSummary(metrics []types.GoalMetric) string {
	var b strings.Builder
	for _, m := range metrics {
		cur := "unknown"
		if v := m.EffectiveCurrent(); v != nil {
			cur = fmt.Sprintf("%.2f", *v)
		}
		if m.TargetValue == nil {
			fmt.Fprintf(&b, "- %s (%s): current %s %s, target pending\n", m.Label, m.MetricKey, cur, m.Unit)
			continue
		}
		src := ""
		if m.TargetSource != nil {
			src = fmt.Sprintf(" [source: %s]", *m.TargetSource)
		}
		fmt.Fprintf(&b, "- %s (%s): current %s -> target %.2f %s, direction %s%s\n",
			m.Label, m.MetricKey, cur, *m.TargetValue, m.Unit, m.Direction, src)
	}
	return strings.TrimSpace(b.String())
}

// progressionPreview renders the first checkpoints of each targeted metric so
// milestone thresholds can be anchored to real values.
func progressionPreview(metrics []types.GoalMetric, weeks int) string {
	const previewWeeks = 4
	var b strings.Builder
	for _, m := range metrics {
		if m.TargetValue == nil {
			continue
		}
		cps := progression.Build(m.EffectiveCurrent(), *m.TargetValue, weeks)
		n := previewWeeks
		if n > len(cps) {
			n = len(cps)
		}
		parts := make([]string, 0, n)
		for _, c := range cps[:n] {
			parts = append(parts, fmt.Sprintf("w%d=%.2f", c.Week, c.Value))
		}
		fmt.Fprintf(&b, "- %s: %s\n", m.MetricKey, strings.Join(parts, ", "))
	}
	return strings.TrimSpace(b.String())
}

func profileSummary(p *types.UserProfile) string {
	if p == nil {
		return "no profile on record"
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("age %d", p.Age))
	if p.HasGender() {
		parts = append(parts, *p.Gender)
	}
	if p.BodyweightKg != nil {
		parts = append(parts, fmt.Sprintf("%.1f kg", *p.BodyweightKg))
	}
	if p.HeightCm != nil {
		parts = append(parts, fmt.Sprintf("%.0f cm", *p.HeightCm))
	}
	return strings.Join(parts, ", ")
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func asStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
