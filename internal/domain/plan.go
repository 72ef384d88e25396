package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type PlanType string

const (
	PlanTypeTraining    PlanType = "training"
	PlanTypeNutrition   PlanType = "nutrition"
	PlanTypeSupplements PlanType = "supplements"
)

const PlanPeriodWeekly = "weekly"

// Plan is a versioned, structured plan document attached to a goal. The
// content_json shape depends on plan_type; version increments on schema
// revision, not on regeneration.
type Plan struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GoalID uuid.UUID `gorm:"type:uuid;not null;index:idx_plan_goal_type,priority:1" json:"goal_id"`

	PlanType string `gorm:"column:plan_type;type:text;not null;index:idx_plan_goal_type,priority:2" json:"plan_type"`
	Period   string `gorm:"type:text;not null;default:'weekly'" json:"period"`

	ContentJSON datatypes.JSON `gorm:"type:jsonb;column:content_json;not null" json:"content_json"`

	Version  int  `gorm:"not null;default:1" json:"version"`
	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Plan) TableName() string { return "plan" }
