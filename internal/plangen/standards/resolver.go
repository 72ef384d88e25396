package standards

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	repo "github.com/strivekit/strivekit-backend/internal/data/repos/standards"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

// DesiredLevel buckets a goal's ambition when selecting within a standard's
// value range.
type DesiredLevel string

const (
	LevelBeginner     DesiredLevel = "beginner"
	LevelIntermediate DesiredLevel = "intermediate"
	LevelAdvanced     DesiredLevel = "advanced"
)

// ResolvedTarget is the resolver's answer for one metric.
type ResolvedTarget struct {
	TargetValue float64
	Confidence  float64
	Source      string
	Description string
	StandardID  uuid.UUID
}

// Resolver turns a metric key plus user context into a calibrated target.
// CalculateTarget returns (nil, nil) when no applicable standard exists.
type Resolver interface {
	CalculateTarget(dbc dbctx.Context, metricKey string, currentValue *float64, goalDescription string, profile *types.UserProfile, desired DesiredLevel) (*ResolvedTarget, error)
	InferDesiredLevel(goalDescription string) DesiredLevel
	TrackStandardUsage(dbc dbctx.Context, standardID uuid.UUID) error
}

type catalogResolver struct {
	standards repo.StandardRepo
	log       *logger.Logger
}

func NewCatalogResolver(standards repo.StandardRepo, baseLog *logger.Logger) Resolver {
	return &catalogResolver{
		standards: standards,
		log:       baseLog.With("service", "StandardsResolver"),
	}
}

func (r *catalogResolver) CalculateTarget(dbc dbctx.Context, metricKey string, currentValue *float64, goalDescription string, profile *types.UserProfile, desired DesiredLevel) (*ResolvedTarget, error) {
	if metricKey == "" {
		return nil, nil
	}
	if profile == nil || !profile.HasGender() {
		return nil, fmt.Errorf("profile gender required to resolve %s", metricKey)
	}
	rows, err := r.standards.ListByMetricKey(dbc, metricKey)
	if err != nil {
		return nil, fmt.Errorf("list standards for %s: %w", metricKey, err)
	}
	best := r.selectStandard(rows, *profile.Gender, profile.Age)
	if best == nil {
		return nil, nil
	}
	value, ok := targetFromStandard(best, desired)
	if !ok {
		r.log.Warn("standard has no usable value", "metric_key", metricKey, "standard_id", best.ID)
		return nil, nil
	}
	desc := best.SourceDescription
	if desc == "" {
		desc = fmt.Sprintf("%s reference for %s", best.SourceName, metricKey)
	}
	return &ResolvedTarget{
		TargetValue: value,
		Confidence:  best.ConfidenceScore,
		Source:      best.ID.String(),
		Description: desc,
		StandardID:  best.ID,
	}, nil
}

// selectStandard takes the first row (already ordered by trust) whose
// stratum covers the user; gender "all" rows match either gender.
func (r *catalogResolver) selectStandard(rows []*types.Standard, gender string, age int) *types.Standard {
	for _, s := range rows {
		if s == nil {
			continue
		}
		if s.Gender != types.GenderAll && s.Gender != gender {
			continue
		}
		if !s.MatchesAge(age) {
			continue
		}
		return s
	}
	return nil
}

// targetFromStandard interprets a standard's value fields at a desired level:
// single values are taken as-is; ranges pick min/midpoint/max for
// beginner/intermediate/advanced.
func targetFromStandard(s *types.Standard, desired DesiredLevel) (float64, bool) {
	if s.ValueSingle != nil {
		return *s.ValueSingle, true
	}
	if s.ValueMin == nil || s.ValueMax == nil {
		if s.ValueMin != nil {
			return *s.ValueMin, true
		}
		if s.ValueMax != nil {
			return *s.ValueMax, true
		}
		return 0, false
	}
	switch desired {
	case LevelBeginner:
		return *s.ValueMin, true
	case LevelAdvanced:
		return *s.ValueMax, true
	default:
		return (*s.ValueMin + *s.ValueMax) / 2, true
	}
}

var advancedHints = []string{"compete", "competition", "race", "marathon", "elite", "advanced", "pr ", "personal record"}
var beginnerHints = []string{"start", "starting", "first time", "beginner", "new to", "get back", "couch"}

// InferDesiredLevel reads ambition cues from free-text goal descriptions.
func (r *catalogResolver) InferDesiredLevel(goalDescription string) DesiredLevel {
	d := strings.ToLower(goalDescription)
	for _, h := range advancedHints {
		if strings.Contains(d, h) {
			return LevelAdvanced
		}
	}
	for _, h := range beginnerHints {
		if strings.Contains(d, h) {
			return LevelBeginner
		}
	}
	return LevelIntermediate
}

func (r *catalogResolver) TrackStandardUsage(dbc dbctx.Context, standardID uuid.UUID) error {
	if standardID == uuid.Nil {
		return nil
	}
	return r.standards.IncrementUsage(dbc, standardID)
}
