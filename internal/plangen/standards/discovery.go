package standards

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/strivekit/strivekit-backend/internal/clients/openai"
	repo "github.com/strivekit/strivekit-backend/internal/data/repos/standards"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
	"github.com/strivekit/strivekit-backend/internal/plangen/evidence"
	"github.com/strivekit/strivekit-backend/internal/plangen/prompts"
)

// DiscoveredStandard is the transient pre-persistence candidate produced by a
// generative search. It exists only until validated and stored, or discarded.
type DiscoveredStandard struct {
	MetricKey         string
	StandardType      string
	Category          string
	AgeMin            int
	AgeMax            int
	Gender            string
	ValueMin          *float64
	ValueMax          *float64
	ValueSingle       *float64
	Unit              string
	Percentile        *float64
	Level             *string
	SourceName        string
	SourceURL         *string
	SourceDescription string
	EvidenceLevel     string
	Confidence        float64
}

// DiscoveryService proposes catalog entries for metrics that have none.
// Every entry point is failure-absorbing: errors are logged and reported as
// "nothing found" so callers never have to handle discovery faults.
type DiscoveryService interface {
	// Discover returns a validated candidate, or nil when the catalog already
	// covers the metric, the search found nothing, or the source failed the
	// evidence gate.
	Discover(dbc dbctx.Context, metricKey, context string) (*DiscoveredStandard, error)
	// Store persists a candidate unverified and returns its id.
	Store(dbc dbctx.Context, cand *DiscoveredStandard) (uuid.UUID, error)
	// DiscoverAndStore runs both; nil when nothing was stored.
	DiscoverAndStore(dbc dbctx.Context, metricKey, context string) *uuid.UUID
}

type discoveryService struct {
	standards     repo.StandardRepo
	ai            openai.Client
	minConfidence float64
	group         singleflight.Group
	log           *logger.Logger
}

func NewDiscoveryService(standards repo.StandardRepo, ai openai.Client, minConfidence float64, baseLog *logger.Logger) DiscoveryService {
	if minConfidence <= 0 {
		minConfidence = 0.5
	}
	return &discoveryService{
		standards:     standards,
		ai:            ai,
		minConfidence: minConfidence,
		log:           baseLog.With("service", "StandardsDiscovery"),
	}
}

func (s *discoveryService) Discover(dbc dbctx.Context, metricKey, context string) (*DiscoveredStandard, error) {
	if metricKey == "" {
		return nil, nil
	}
	// Collapse concurrent discoveries for the same metric into one search.
	v, err, _ := s.group.Do(metricKey, func() (any, error) {
		return s.discoverOnce(dbc, metricKey, context)
	})
	if err != nil {
		return nil, err
	}
	cand, _ := v.(*DiscoveredStandard)
	return cand, nil
}

func (s *discoveryService) discoverOnce(dbc dbctx.Context, metricKey, context string) (*DiscoveredStandard, error) {
	exists, err := s.standards.ExistsByMetricKey(dbc, metricKey)
	if err != nil {
		return nil, fmt.Errorf("check catalog for %s: %w", metricKey, err)
	}
	if exists {
		return nil, nil
	}

	p, err := prompts.Build(prompts.PromptStandardDiscovery, prompts.Input{
		MetricKey:     metricKey,
		MetricContext: context,
	})
	if err != nil {
		return nil, fmt.Errorf("build discovery prompt: %w", err)
	}
	out, err := s.ai.GenerateJSON(dbc.Ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		return nil, fmt.Errorf("discovery search for %s: %w", metricKey, err)
	}

	found, _ := out["found"].(bool)
	cands, _ := out["standards"].([]any)
	if !found || len(cands) == 0 {
		return nil, nil
	}
	cand, err := parseCandidate(metricKey, cands[0])
	if err != nil {
		return nil, fmt.Errorf("parse discovery candidate for %s: %w", metricKey, err)
	}

	res := evidence.Validate(cand.SourceName, types.EvidenceLevel(cand.EvidenceLevel))
	if !res.Reputable {
		s.log.Info("discarding untrusted discovered standard",
			"metric_key", metricKey, "source", cand.SourceName, "reason", res.Reason)
		return nil, nil
	}
	cand.EvidenceLevel = string(res.EvidenceLevel)
	// Confidence can only be downgraded by validation, never upgraded.
	if res.ConfidenceScore < cand.Confidence {
		cand.Confidence = res.ConfidenceScore
	}
	if cand.Confidence < s.minConfidence {
		s.log.Info("discarding low-confidence discovered standard",
			"metric_key", metricKey, "source", cand.SourceName, "confidence", cand.Confidence)
		return nil, nil
	}
	return cand, nil
}

func (s *discoveryService) Store(dbc dbctx.Context, cand *DiscoveredStandard) (uuid.UUID, error) {
	if cand == nil {
		return uuid.Nil, fmt.Errorf("nil candidate")
	}
	row := &types.Standard{
		MetricKey:         cand.MetricKey,
		StandardType:      cand.StandardType,
		Category:          cand.Category,
		AgeMin:            cand.AgeMin,
		AgeMax:            cand.AgeMax,
		Gender:            cand.Gender,
		ValueMin:          cand.ValueMin,
		ValueMax:          cand.ValueMax,
		ValueSingle:       cand.ValueSingle,
		Unit:              cand.Unit,
		Percentile:        cand.Percentile,
		Level:             cand.Level,
		SourceName:        cand.SourceName,
		SourceURL:         cand.SourceURL,
		SourceDescription: cand.SourceDescription,
		ConfidenceScore:   cand.Confidence,
		EvidenceLevel:     cand.EvidenceLevel,
		VerifiedByAdmin:   false,
	}
	if err := s.standards.Create(dbc, row); err != nil {
		return uuid.Nil, err
	}
	return row.ID, nil
}

func (s *discoveryService) DiscoverAndStore(dbc dbctx.Context, metricKey, context string) *uuid.UUID {
	cand, err := s.Discover(dbc, metricKey, context)
	if err != nil {
		s.log.Warn("standard discovery failed", "metric_key", metricKey, "error", err)
		return nil
	}
	if cand == nil {
		return nil
	}
	id, err := s.Store(dbc, cand)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateStratum) {
			// Lost the race to a concurrent discovery; the catalog row exists.
			return nil
		}
		s.log.Warn("storing discovered standard failed", "metric_key", metricKey, "error", err)
		return nil
	}
	s.log.Info("stored discovered standard",
		"metric_key", metricKey, "standard_id", id, "source", cand.SourceName,
		"evidence_level", cand.EvidenceLevel, "confidence", cand.Confidence)
	return &id
}
