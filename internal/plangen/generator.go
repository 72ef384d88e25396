package plangen

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/strivekit/strivekit-backend/internal/clients/openai"
	redisclient "github.com/strivekit/strivekit-backend/internal/clients/redis"
	goalsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/goals"
	usersrepo "github.com/strivekit/strivekit-backend/internal/data/repos/users"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
	"github.com/strivekit/strivekit-backend/internal/plangen/standards"
	"github.com/strivekit/strivekit-backend/internal/plangen/steps"
)

// GeneratedPlan is the complete artifact returned to callers. Every field is
// populated for every successful request; fallbacks substitute, they never
// omit.
type GeneratedPlan struct {
	Milestones     []*types.Milestone          `json:"milestones"`
	TrainingPlan   *types.Plan                 `json:"training_plan,omitempty"`
	NutritionPlan  *types.Plan                 `json:"nutrition_plan,omitempty"`
	SupplementPlan *types.Plan                 `json:"supplement_plan,omitempty"`
	SafetyWarnings []string                    `json:"safety_warnings"`
	Feasibility    steps.FeasibilityAssessment `json:"feasibility_assessment"`
	// FallbackStages names each stage that degraded to deterministic output.
	FallbackStages []string `json:"fallback_stages,omitempty"`
}

// Generator sequences enrichment, milestone generation, plan assembly,
// feasibility and warning composition into one plan response.
type Generator struct {
	resolver  standards.Resolver
	discovery steps.DiscoveryEnqueuer
	ai        openai.Client

	goals      goalsrepo.GoalRepo
	metrics    goalsrepo.GoalMetricRepo
	milestones goalsrepo.MilestoneRepo
	plans      goalsrepo.PlanRepo
	profiles   usersrepo.ProfileRepo

	rules steps.FeasibilityRules
	bus   redisclient.EventBus
	now   func() time.Time
	log   *logger.Logger
}

type GeneratorOption func(*Generator)

// WithEventBus publishes stage-progress events while generating.
func WithEventBus(bus redisclient.EventBus) GeneratorOption {
	return func(g *Generator) { g.bus = bus }
}

// WithDiscovery enables detached standards discovery for unresolved metrics.
func WithDiscovery(d steps.DiscoveryEnqueuer) GeneratorOption {
	return func(g *Generator) { g.discovery = d }
}

func WithFeasibilityRules(rules steps.FeasibilityRules) GeneratorOption {
	return func(g *Generator) { g.rules = rules }
}

func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(
	resolver standards.Resolver,
	ai openai.Client,
	goals goalsrepo.GoalRepo,
	metrics goalsrepo.GoalMetricRepo,
	milestones goalsrepo.MilestoneRepo,
	plans goalsrepo.PlanRepo,
	profiles usersrepo.ProfileRepo,
	baseLog *logger.Logger,
	opts ...GeneratorOption,
) *Generator {
	g := &Generator{
		resolver:   resolver,
		ai:         ai,
		goals:      goals,
		metrics:    metrics,
		milestones: milestones,
		plans:      plans,
		profiles:   profiles,
		rules:      steps.DefaultFeasibilityRules(),
		now:        time.Now,
		log:        baseLog.With("service", "PlanGenerator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs the full pipeline for one goal. The only fatal failure is an
// unknown goal category; everything else degrades stage-locally.
func (g *Generator) Generate(dbc dbctx.Context, goal *types.Goal, profile *types.UserProfile) (*GeneratedPlan, error) {
	if goal == nil {
		return nil, fmt.Errorf("nil goal")
	}
	category, err := types.ParseGoalCategory(goal.Category)
	if err != nil {
		return nil, err
	}
	now := g.now()
	out := &GeneratedPlan{}

	g.emit(dbc, goal.ID, "enrichment", "started", "")
	enrich := steps.EnrichMetrics(dbc, goal, profile, g.resolver, g.discovery, g.metrics, g.log)
	g.emit(dbc, goal.ID, "enrichment", "finished",
		fmt.Sprintf("resolved=%d estimated=%d pending=%d", enrich.Resolved, enrich.Estimated, enrich.Pending))

	g.emit(dbc, goal.ID, "milestones", "started", "")
	ms, fellBack := steps.GenerateMilestones(dbc, goal, now, g.ai, g.log)
	out.Milestones = ms
	out.FallbackStages = appendFallback(out.FallbackStages, "milestones", fellBack)
	g.emitStage(dbc, goal.ID, "milestones", fellBack)

	if category.NeedsTrainingPlan() {
		g.emit(dbc, goal.ID, "training_plan", "started", "")
		plan, fellBack := steps.BuildTrainingPlan(dbc, goal, profile, now, g.ai, g.log)
		out.TrainingPlan = plan
		out.FallbackStages = appendFallback(out.FallbackStages, "training_plan", fellBack)
		g.emitStage(dbc, goal.ID, "training_plan", fellBack)
	}

	g.emit(dbc, goal.ID, "nutrition_plan", "started", "")
	nutrition, fellBack := steps.BuildNutritionPlan(dbc, goal, profile, now, g.ai, g.log)
	out.NutritionPlan = nutrition
	out.FallbackStages = appendFallback(out.FallbackStages, "nutrition_plan", fellBack)
	g.emitStage(dbc, goal.ID, "nutrition_plan", fellBack)

	out.SupplementPlan = steps.BuildSupplementPlan(goal)

	out.Feasibility = steps.AssessFeasibility(goal, goal.WeeksToTarget(now), g.rules)

	out.SafetyWarnings = g.composeWarnings(category, out.Feasibility)
	if enrich.SkippedInsufficientProfile {
		out.SafetyWarnings = append(out.SafetyWarnings,
			"Metric targets could not be calibrated: profile gender is missing. Complete your profile and regenerate for evidence-based targets.")
	}

	return out, nil
}

// GenerateAndPersist runs the pipeline then stores milestones and plans,
// replacing the goal's previous generation.
func (g *Generator) GenerateAndPersist(dbc dbctx.Context, goalID uuid.UUID) (*GeneratedPlan, error) {
	goal, err := g.goals.GetByIDWithMetrics(dbc, goalID)
	if err != nil {
		return nil, fmt.Errorf("load goal %s: %w", goalID, err)
	}
	if goal == nil {
		return nil, fmt.Errorf("goal %s not found", goalID)
	}
	var profile *types.UserProfile
	if g.profiles != nil {
		profile, err = g.profiles.GetByUserID(dbc, goal.UserID)
		if err != nil {
			return nil, fmt.Errorf("load profile for %s: %w", goal.UserID, err)
		}
	}

	out, err := g.Generate(dbc, goal, profile)
	if err != nil {
		return nil, err
	}

	if err := g.milestones.ReplaceForGoal(dbc, goal.ID, out.Milestones); err != nil {
		return nil, fmt.Errorf("persist milestones: %w", err)
	}
	for _, plan := range []*types.Plan{out.TrainingPlan, out.NutritionPlan, out.SupplementPlan} {
		if plan == nil {
			continue
		}
		if err := g.plans.ActivateNew(dbc, plan); err != nil {
			return nil, fmt.Errorf("persist %s plan: %w", plan.PlanType, err)
		}
	}
	return out, nil
}

// composeWarnings never lets composition failure reach the caller; warnings
// must never be empty.
func (g *Generator) composeWarnings(category types.GoalCategory, feas steps.FeasibilityAssessment) (warnings []string) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("warning composition panicked, substituting defaults", "panic", r)
			warnings = steps.DefaultWarnings()
		}
	}()
	warnings = steps.ComposeWarnings(category, feas)
	if len(warnings) == 0 {
		warnings = steps.DefaultWarnings()
	}
	return warnings
}

func appendFallback(stages []string, stage string, fellBack bool) []string {
	if !fellBack {
		return stages
	}
	return append(stages, stage)
}

func (g *Generator) emit(dbc dbctx.Context, goalID uuid.UUID, stage, status, detail string) {
	if g.bus == nil {
		return
	}
	ev := redisclient.PlanEvent{
		GoalID:    goalID,
		Stage:     stage,
		Status:    status,
		Detail:    detail,
		EmittedAt: g.now().UTC(),
	}
	if err := g.bus.Publish(dbc.Ctx, ev); err != nil {
		g.log.Debug("plan event publish failed", "stage", stage, "error", err)
	}
}

func (g *Generator) emitStage(dbc dbctx.Context, goalID uuid.UUID, stage string, fellBack bool) {
	status := "finished"
	if fellBack {
		status = "fallback"
	}
	g.emit(dbc, goalID, stage, status, "")
}
