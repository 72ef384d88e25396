package goals

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

type GoalMetricRepo interface {
	Create(dbc dbctx.Context, rows []*types.GoalMetric) error
	ListByGoal(dbc dbctx.Context, goalID uuid.UUID) ([]*types.GoalMetric, error)
	UpdateTarget(dbc dbctx.Context, id uuid.UUID, target *float64, confidence float64, source string, description *string) error
}

type goalMetricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalMetricRepo(db *gorm.DB, baseLog *logger.Logger) GoalMetricRepo {
	return &goalMetricRepo{db: db, log: baseLog.With("repo", "GoalMetricRepo")}
}

func (r *goalMetricRepo) Create(dbc dbctx.Context, rows []*types.GoalMetric) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	return t.WithContext(dbc.Ctx).Create(&rows).Error
}

func (r *goalMetricRepo) ListByGoal(dbc dbctx.Context, goalID uuid.UUID) ([]*types.GoalMetric, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if goalID == uuid.Nil {
		return nil, nil
	}
	var out []*types.GoalMetric
	if err := t.WithContext(dbc.Ctx).
		Where("goal_id = ?", goalID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateTarget stamps the enrichment result. A nil target with source
// pending_discovery is the explicit "no target yet" state.
func (r *goalMetricRepo) UpdateTarget(dbc dbctx.Context, id uuid.UUID, target *float64, confidence float64, source string, description *string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.GoalMetric{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"target_value":       target,
			"confidence":         confidence,
			"target_source":      source,
			"target_description": description,
			"updated_at":         time.Now().UTC(),
		}).Error
}
