package goals

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

type MilestoneRepo interface {
	ReplaceForGoal(dbc dbctx.Context, goalID uuid.UUID, rows []*types.Milestone) error
	ListByGoal(dbc dbctx.Context, goalID uuid.UUID) ([]*types.Milestone, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type milestoneRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMilestoneRepo(db *gorm.DB, baseLog *logger.Logger) MilestoneRepo {
	return &milestoneRepo{db: db, log: baseLog.With("repo", "MilestoneRepo")}
}

// ReplaceForGoal swaps a goal's milestone set atomically. Regeneration always
// produces a complete set, so partial updates are never needed.
func (r *milestoneRepo) ReplaceForGoal(dbc dbctx.Context, goalID uuid.UUID, rows []*types.Milestone) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if goalID == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goalID).Delete(&types.Milestone{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		for _, row := range rows {
			if row.ID == uuid.Nil {
				row.ID = uuid.New()
			}
			row.GoalID = goalID
		}
		return tx.Create(&rows).Error
	})
}

func (r *milestoneRepo) ListByGoal(dbc dbctx.Context, goalID uuid.UUID) ([]*types.Milestone, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if goalID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Milestone
	if err := t.WithContext(dbc.Ctx).
		Where("goal_id = ?", goalID).
		Order("due_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *milestoneRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Milestone{}).
		Where("id = ?", id).
		Updates(updates).Error
}
