package steps

import (
	"fmt"

	goalsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/goals"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
	"github.com/strivekit/strivekit-backend/internal/pkg/pointers"
	"github.com/strivekit/strivekit-backend/internal/plangen/standards"
)

// Estimated-target multipliers applied when no standard resolves but a
// current value exists.
const (
	estimateUpFactor   = 1.1
	estimateDownFactor = 0.9
	estimateConfidence = 0.5
)

// DiscoveryEnqueuer schedules a detached standards discovery for a metric.
// Enqueue failures are the enqueuer's to log; enrichment never waits on or
// reacts to discovery.
type DiscoveryEnqueuer interface {
	EnqueueDiscovery(dbc dbctx.Context, metricKey, context string)
}

// EnrichResult summarizes what enrichment did, for logging and response
// warnings.
type EnrichResult struct {
	Resolved  int
	Estimated int
	Pending   int
	Failed    int
	// SkippedInsufficientProfile is set when the user's gender is unknown and
	// the whole stage was skipped rather than resolving against a guess.
	SkippedInsufficientProfile bool
}

// EnrichMetrics stamps a target onto every metric of the goal, in place and
// through the repo when one is provided. Per-metric failures are isolated;
// one metric's error never blocks the rest.
func EnrichMetrics(
	dbc dbctx.Context,
	goal *types.Goal,
	profile *types.UserProfile,
	resolver standards.Resolver,
	discovery DiscoveryEnqueuer,
	metricRepo goalsrepo.GoalMetricRepo,
	log *logger.Logger,
) EnrichResult {
	var res EnrichResult
	if goal == nil || len(goal.Metrics) == 0 {
		return res
	}
	if profile == nil || !profile.HasGender() {
		// Standards are gender-stratified; resolving against a guessed gender
		// would silently bias every target.
		log.Warn("skipping metric enrichment: profile gender unknown", "goal_id", goal.ID)
		res.SkippedInsufficientProfile = true
		return res
	}
	desired := resolver.InferDesiredLevel(goal.Description)

	for i := range goal.Metrics {
		m := &goal.Metrics[i]
		if err := enrichOne(dbc, goal, m, profile, resolver, desired, discovery, metricRepo, &res, log); err != nil {
			res.Failed++
			log.Warn("metric enrichment failed", "goal_id", goal.ID, "metric_key", m.MetricKey, "error", err)
		}
	}
	return res
}

func enrichOne(
	dbc dbctx.Context,
	goal *types.Goal,
	m *types.GoalMetric,
	profile *types.UserProfile,
	resolver standards.Resolver,
	desired standards.DesiredLevel,
	discovery DiscoveryEnqueuer,
	metricRepo goalsrepo.GoalMetricRepo,
	res *EnrichResult,
	log *logger.Logger,
) error {
	current := m.EffectiveCurrent()

	resolved, err := resolver.CalculateTarget(dbc, m.MetricKey, current, goal.Description, profile, desired)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", m.MetricKey, err)
	}
	if resolved != nil {
		m.TargetValue = pointers.Float64(resolved.TargetValue)
		m.Confidence = pointers.Float64(resolved.Confidence)
		m.TargetSource = pointers.String(resolved.Source)
		m.TargetDescription = pointers.String(resolved.Description)
		if err := resolver.TrackStandardUsage(dbc, resolved.StandardID); err != nil {
			log.Warn("usage tracking failed", "standard_id", resolved.StandardID, "error", err)
		}
		res.Resolved++
		return persistTarget(dbc, m, metricRepo)
	}

	// No catalog standard: queue a discovery for future requests, then fall
	// back to an interim target for this one.
	if discovery != nil {
		discovery.EnqueueDiscovery(dbc, m.MetricKey, goal.Description)
	}

	if current != nil {
		factor := estimateUpFactor
		if m.Direction == string(types.DirectionDecrease) {
			factor = estimateDownFactor
		}
		m.TargetValue = pointers.Float64(*current * factor)
		m.Confidence = pointers.Float64(estimateConfidence)
		m.TargetSource = pointers.String(types.TargetSourceEstimated)
		m.TargetDescription = pointers.String(fmt.Sprintf("estimated from current %s", m.Label))
		res.Estimated++
		return persistTarget(dbc, m, metricRepo)
	}

	m.TargetValue = nil
	m.Confidence = pointers.Float64(0)
	m.TargetSource = pointers.String(types.TargetSourcePendingDiscovery)
	m.TargetDescription = nil
	res.Pending++
	return persistTarget(dbc, m, metricRepo)
}

func persistTarget(dbc dbctx.Context, m *types.GoalMetric, metricRepo goalsrepo.GoalMetricRepo) error {
	if metricRepo == nil {
		return nil
	}
	conf := 0.0
	if m.Confidence != nil {
		conf = *m.Confidence
	}
	src := ""
	if m.TargetSource != nil {
		src = *m.TargetSource
	}
	return metricRepo.UpdateTarget(dbc, m.ID, m.TargetValue, conf, src, m.TargetDescription)
}
