package domain

import (
	"time"

	"github.com/google/uuid"
)

type MetricDirection string

const (
	DirectionIncrease MetricDirection = "increase"
	DirectionDecrease MetricDirection = "decrease"
)

// Target provenance markers for metrics that were not resolved against the
// standards catalog.
const (
	TargetSourceEstimated        = "estimated"
	TargetSourcePendingDiscovery = "pending_discovery"
)

// MetricTargetState is the explicit enrichment state of a metric, replacing
// inference from which optional fields happen to be set.
type MetricTargetState string

const (
	MetricUnenriched       MetricTargetState = "unenriched"
	MetricEnriched         MetricTargetState = "enriched"
	MetricPendingDiscovery MetricTargetState = "pending_discovery"
)

type GoalMetric struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GoalID uuid.UUID `gorm:"type:uuid;not null;index" json:"goal_id"`

	MetricKey string `gorm:"column:metric_key;type:text;not null;index" json:"metric_key"`
	Label     string `gorm:"type:text;not null" json:"label"`
	Unit      string `gorm:"type:text;not null" json:"unit"`
	Direction string `gorm:"type:text;not null" json:"direction"`

	CurrentValue  *float64 `gorm:"column:current_value" json:"current_value,omitempty"`
	BaselineValue *float64 `gorm:"column:baseline_value" json:"baseline_value,omitempty"`

	// Stamped by enrichment. A nil TargetValue with TargetSource set to
	// pending_discovery means downstream generation must skip this metric.
	TargetValue       *float64 `gorm:"column:target_value" json:"target_value,omitempty"`
	Confidence        *float64 `gorm:"column:confidence" json:"confidence,omitempty"`
	TargetSource      *string  `gorm:"column:target_source;type:text" json:"target_source,omitempty"`
	TargetDescription *string  `gorm:"column:target_description;type:text" json:"target_description,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (GoalMetric) TableName() string { return "goal_metric" }

// EffectiveCurrent prefers the live value over the intake baseline.
func (m *GoalMetric) EffectiveCurrent() *float64 {
	if m.CurrentValue != nil {
		return m.CurrentValue
	}
	return m.BaselineValue
}

func (m *GoalMetric) TargetState() MetricTargetState {
	switch {
	case m.TargetSource != nil && *m.TargetSource == TargetSourcePendingDiscovery:
		return MetricPendingDiscovery
	case m.TargetValue != nil && m.TargetSource != nil:
		return MetricEnriched
	default:
		return MetricUnenriched
	}
}
