package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/strivekit/strivekit-backend/internal/pkg/errors"
)

type GoalCategory string

const (
	GoalCategoryEnduranceEvent GoalCategory = "endurance_event"
	GoalCategoryStrength       GoalCategory = "strength"
	GoalCategoryBodyComp       GoalCategory = "body_comp"
	GoalCategoryHealthMarker   GoalCategory = "health_marker"
	GoalCategoryHabit          GoalCategory = "habit"
	GoalCategoryHybrid         GoalCategory = "hybrid"
)

// ParseGoalCategory rejects unknown categories. This is the single fatal
// validation in plan generation; everything downstream degrades instead.
func ParseGoalCategory(s string) (GoalCategory, error) {
	switch GoalCategory(s) {
	case GoalCategoryEnduranceEvent, GoalCategoryStrength, GoalCategoryBodyComp,
		GoalCategoryHealthMarker, GoalCategoryHabit, GoalCategoryHybrid:
		return GoalCategory(s), nil
	}
	return "", fmt.Errorf("%w: %q", pkgerrors.ErrInvalidGoalCategory, s)
}

// NeedsTrainingPlan reports whether the category gets a structured training plan.
func (c GoalCategory) NeedsTrainingPlan() bool {
	switch c {
	case GoalCategoryEnduranceEvent, GoalCategoryStrength, GoalCategoryHybrid:
		return true
	}
	return false
}

type Goal struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"type:text;not null;index" json:"category"`
	Status      string `gorm:"type:text;not null;default:'active'" json:"status"`

	StartDate  time.Time `gorm:"not null" json:"start_date"`
	TargetDate time.Time `gorm:"not null" json:"target_date"`

	// Signed change for body-comp goals (negative = loss, kg). Nil otherwise.
	TargetWeightChangeKg *float64 `gorm:"column:target_weight_change_kg" json:"target_weight_change_kg,omitempty"`

	Metrics []GoalMetric `gorm:"foreignKey:GoalID" json:"metrics,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Goal) TableName() string { return "goal" }

// WeeksToTarget is the timeline length used by progression, milestones and
// feasibility. Never less than 1.
func (g *Goal) WeeksToTarget(now time.Time) int {
	days := g.TargetDate.Sub(now).Hours() / 24
	weeks := int(math.Ceil(days / 7))
	if weeks < 1 {
		weeks = 1
	}
	return weeks
}
