package goals

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

type GoalRepo interface {
	Create(dbc dbctx.Context, row *types.Goal) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Goal, error)
	GetByIDWithMetrics(dbc dbctx.Context, id uuid.UUID) (*types.Goal, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Goal, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type goalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
	return &goalRepo{db: db, log: baseLog.With("repo", "GoalRepo")}
}

func (r *goalRepo) Create(dbc dbctx.Context, row *types.Goal) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *goalRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Goal, error) {
	return r.get(dbc, id, false)
}

func (r *goalRepo) GetByIDWithMetrics(dbc dbctx.Context, id uuid.UUID) (*types.Goal, error) {
	return r.get(dbc, id, true)
}

func (r *goalRepo) get(dbc dbctx.Context, id uuid.UUID, withMetrics bool) (*types.Goal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	q := t.WithContext(dbc.Ctx)
	if withMetrics {
		q = q.Preload("Metrics")
	}
	var out types.Goal
	if err := q.First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *goalRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Goal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Goal
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *goalRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Goal{}).
		Where("id = ?", id).
		Updates(updates).Error
}
