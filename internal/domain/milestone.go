package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	MilestoneStatusPending   = "pending"
	MilestoneStatusCompleted = "completed"
	MilestoneStatusMissed    = "missed"
)

// CompletionRule is an optional metric-gated completion check attached to a
// milestone. Operator is one of gte|lte.
type CompletionRule struct {
	Type      string  `json:"type"`
	MetricKey string  `json:"metric_key"`
	Operator  string  `json:"operator"`
	Value     float64 `json:"value"`
}

const CompletionRuleMetricThreshold = "metric_threshold"

type Milestone struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GoalID uuid.UUID `gorm:"type:uuid;not null;index" json:"goal_id"`

	Title       string  `gorm:"type:text;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	DueDate time.Time `gorm:"column:due_date;not null;index" json:"due_date"`

	CompletionRule datatypes.JSON `gorm:"type:jsonb;column:completion_rule" json:"completion_rule,omitempty"`

	Status      string  `gorm:"type:text;not null;default:'pending'" json:"status"`
	ProgressPct float64 `gorm:"column:progress_pct;not null;default:0" json:"progress_pct"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Milestone) TableName() string { return "milestone" }

// SetCompletionRule serializes the rule into the JSONB column. A nil rule
// clears it.
func (m *Milestone) SetCompletionRule(rule *CompletionRule) {
	if rule == nil {
		m.CompletionRule = nil
		return
	}
	b, _ := json.Marshal(rule)
	m.CompletionRule = datatypes.JSON(b)
}

// GetCompletionRule returns nil for milestones without a rule.
func (m *Milestone) GetCompletionRule() *CompletionRule {
	if len(m.CompletionRule) == 0 || string(m.CompletionRule) == "null" {
		return nil
	}
	var rule CompletionRule
	if err := json.Unmarshal(m.CompletionRule, &rule); err != nil {
		return nil
	}
	return &rule
}
