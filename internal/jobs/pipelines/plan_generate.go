package pipelines

import (
	"fmt"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/jobs/runtime"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
	"github.com/strivekit/strivekit-backend/internal/plangen"
)

// PlanGenerate runs the full generation pipeline for one goal and persists
// the artifacts. The generator degrades stage-by-stage internally, so the
// only job-level failures are a missing goal or an invalid category.
type PlanGenerate struct {
	gen *plangen.Generator
	log *logger.Logger
}

func NewPlanGenerate(gen *plangen.Generator, baseLog *logger.Logger) *PlanGenerate {
	return &PlanGenerate{gen: gen, log: baseLog.With("pipeline", "PlanGenerate")}
}

func (p *PlanGenerate) Type() string { return types.JobTypePlanGenerate }

func (p *PlanGenerate) Run(jc *runtime.Context) error {
	goalID, ok := jc.PayloadUUID("goal_id")
	if !ok {
		jc.Fail("validate", fmt.Errorf("payload missing goal_id"))
		return nil
	}

	jc.Progress("generate", 10)
	jc.Emit(goalID, "plan", "started", "")

	out, err := p.gen.GenerateAndPersist(dbctx.Context{Ctx: jc.Ctx}, goalID)
	if err != nil {
		jc.Emit(goalID, "plan", "failed", err.Error())
		jc.Fail("generate", err)
		return nil
	}

	jc.Emit(goalID, "plan", "finished", "")
	jc.Succeed("done", map[string]any{
		"milestones":      len(out.Milestones),
		"fallback_stages": out.FallbackStages,
		"is_feasible":     out.Feasibility.IsFeasible,
	})
	return nil
}
