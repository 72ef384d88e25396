package goals

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

type PlanRepo interface {
	// ActivateNew deactivates any active plan of the same type before
	// inserting, so a goal has at most one active plan per type.
	ActivateNew(dbc dbctx.Context, row *types.Plan) error
	GetActive(dbc dbctx.Context, goalID uuid.UUID, planType string) (*types.Plan, error)
	ListActiveByGoal(dbc dbctx.Context, goalID uuid.UUID) ([]*types.Plan, error)
}

type planRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepo(db *gorm.DB, baseLog *logger.Logger) PlanRepo {
	return &planRepo{db: db, log: baseLog.With("repo", "PlanRepo")}
}

func (r *planRepo) ActivateNew(dbc dbctx.Context, row *types.Plan) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.GoalID == uuid.Nil || row.PlanType == "" {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.IsActive = true
	return t.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&types.Plan{}).
			Where("goal_id = ? AND plan_type = ? AND is_active = ?", row.GoalID, row.PlanType, true).
			Updates(map[string]interface{}{
				"is_active":  false,
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		return tx.Create(row).Error
	})
}

func (r *planRepo) GetActive(dbc dbctx.Context, goalID uuid.UUID, planType string) (*types.Plan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if goalID == uuid.Nil || planType == "" {
		return nil, nil
	}
	var out types.Plan
	if err := t.WithContext(dbc.Ctx).
		Where("goal_id = ? AND plan_type = ? AND is_active = ?", goalID, planType, true).
		Order("created_at DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *planRepo) ListActiveByGoal(dbc dbctx.Context, goalID uuid.UUID) ([]*types.Plan, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if goalID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Plan
	if err := t.WithContext(dbc.Ctx).
		Where("goal_id = ? AND is_active = ?", goalID, true).
		Order("plan_type ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
