package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	jobsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/jobs"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

// Dispatcher enqueues background work. Enqueues are deduped on
// (job_type, dedupe_key) against still-runnable rows, so repeated requests
// for the same goal or metric collapse into one job.
type Dispatcher struct {
	repo jobsrepo.JobRunRepo
	log  *logger.Logger
}

func NewDispatcher(repo jobsrepo.JobRunRepo, baseLog *logger.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, log: baseLog.With("service", "JobDispatcher")}
}

// EnqueuePlanGenerate queues a full plan generation for a goal. Returns the
// new job, or nil when an equivalent job is already queued or running.
func (d *Dispatcher) EnqueuePlanGenerate(dbc dbctx.Context, userID, goalID uuid.UUID) (*types.JobRun, error) {
	if goalID == uuid.Nil {
		return nil, fmt.Errorf("goal id required")
	}
	dedupe := "plan_generate:" + goalID.String()
	exists, err := d.repo.ExistsRunnable(dbc, types.JobTypePlanGenerate, dedupe)
	if err != nil {
		return nil, fmt.Errorf("check runnable: %w", err)
	}
	if exists {
		return nil, nil
	}
	payload, _ := json.Marshal(map[string]string{"goal_id": goalID.String()})
	job := &types.JobRun{
		OwnerUserID: userID,
		JobType:     types.JobTypePlanGenerate,
		EntityType:  "goal",
		EntityID:    &goalID,
		DedupeKey:   dedupe,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON(payload),
	}
	created, err := d.repo.Create(dbc, []*types.JobRun{job})
	if err != nil {
		return nil, fmt.Errorf("enqueue plan generation: %w", err)
	}
	return created[0], nil
}

// EnqueueDiscovery satisfies the enrichment stage's fire-and-forget contract:
// it never returns an error, only logs. Discovery jobs have no owning user.
func (d *Dispatcher) EnqueueDiscovery(dbc dbctx.Context, metricKey, context string) {
	if metricKey == "" {
		return
	}
	dedupe := "standard_discover:" + metricKey
	exists, err := d.repo.ExistsRunnable(dbc, types.JobTypeStandardDiscover, dedupe)
	if err != nil {
		d.log.Warn("discovery dedupe check failed", "metric_key", metricKey, "error", err)
		return
	}
	if exists {
		return
	}
	payload, _ := json.Marshal(map[string]string{"metric_key": metricKey, "context": context})
	job := &types.JobRun{
		JobType:   types.JobTypeStandardDiscover,
		DedupeKey: dedupe,
		Status:    types.JobStatusQueued,
		Stage:     "queued",
		Payload:   datatypes.JSON(payload),
	}
	if _, err := d.repo.Create(dbc, []*types.JobRun{job}); err != nil {
		d.log.Warn("discovery enqueue failed", "metric_key", metricKey, "error", err)
	}
}
