package standards

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

// ErrDuplicateStratum is returned when a standard for the same
// (metric_key, gender, age band) already exists. Discovery treats it as a
// benign lost race, not a failure.
var ErrDuplicateStratum = errors.New("standard stratum already exists")

type StandardRepo interface {
	Create(dbc dbctx.Context, row *types.Standard) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Standard, error)
	ListByMetricKey(dbc dbctx.Context, metricKey string) ([]*types.Standard, error)
	ExistsByMetricKey(dbc dbctx.Context, metricKey string) (bool, error)
	IncrementUsage(dbc dbctx.Context, id uuid.UUID) error
	SetVerified(dbc dbctx.Context, id uuid.UUID, verified bool) error
	List(dbc dbctx.Context, onlyUnverified bool, limit int) ([]*types.Standard, error)
}

type standardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStandardRepo(db *gorm.DB, baseLog *logger.Logger) StandardRepo {
	return &standardRepo{db: db, log: baseLog.With("repo", "StandardRepo")}
}

func (r *standardRepo) Create(dbc dbctx.Context, row *types.Standard) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.MetricKey == "" {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "metric_key"}, {Name: "gender"}, {Name: "age_min"}, {Name: "age_max"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateStratum
	}
	return err
}

func (r *standardRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Standard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Standard
	if err := t.WithContext(dbc.Ctx).First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// ListByMetricKey orders by trust: verified first, then confidence, then how
// often the row has actually been used.
func (r *standardRepo) ListByMetricKey(dbc dbctx.Context, metricKey string) ([]*types.Standard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if metricKey == "" {
		return nil, nil
	}
	var out []*types.Standard
	if err := t.WithContext(dbc.Ctx).
		Where("metric_key = ?", metricKey).
		Order("verified_by_admin DESC, confidence_score DESC, usage_count DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *standardRepo) ExistsByMetricKey(dbc dbctx.Context, metricKey string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if metricKey == "" {
		return false, nil
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Standard{}).
		Where("metric_key = ?", metricKey).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *standardRepo) IncrementUsage(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Standard{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *standardRepo) SetVerified(dbc dbctx.Context, id uuid.UUID, verified bool) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Standard{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verified_by_admin": verified,
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *standardRepo) List(dbc dbctx.Context, onlyUnverified bool, limit int) ([]*types.Standard, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Standard{}).Order("created_at DESC")
	if onlyUnverified {
		q = q.Where("verified_by_admin = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Standard
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
