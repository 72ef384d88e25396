package runtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/strivekit/strivekit-backend/internal/clients/redis"
	jobsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/jobs"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
)

// Context is the execution handle for one claimed job run. Pipelines never
// write job_run rows directly; Progress, Fail and Succeed are the only
// sanctioned lifecycle transitions.
type Context struct {
	Ctx  context.Context
	DB   *gorm.DB
	Job  *types.JobRun
	Repo jobsrepo.JobRunRepo
	Bus  redisclient.EventBus

	payload map[string]any
}

// NewContext eagerly decodes the payload; handlers validate required fields
// themselves, so a malformed payload surfaces as a missing field there.
func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo jobsrepo.JobRunRepo, bus redisclient.EventBus) *Context {
	c := &Context{Ctx: ctx, DB: db, Job: job, Repo: repo, Bus: bus}
	_ = c.decodePayload()
	return c
}

func (c *Context) decodePayload() error {
	if c.Job == nil || len(c.Job.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

// Payload never returns nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (c *Context) PayloadString(key string) string {
	s, _ := c.Payload()[key].(string)
	return s
}

func (c *Context) dbc() dbctx.Context {
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return dbctx.Context{Ctx: ctx}
}

// Progress records a non-terminal stage update with a fresh heartbeat.
func (c *Context) Progress(stage string, pct int) {
	if c == nil || c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	now := time.Now().UTC()
	_ = c.Repo.UpdateFields(c.dbc(), c.Job.ID, map[string]interface{}{
		"stage":        stage,
		"progress":     pct,
		"heartbeat_at": now,
		"updated_at":   now,
	})
	c.Job.Stage = stage
	c.Job.Progress = pct
	c.Job.HeartbeatAt = &now
}

// Fail marks the run terminally failed and releases the worker lock so retry
// eligibility is decided by the claim query, not the handler.
func (c *Context) Fail(stage string, err error) {
	if c == nil || c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	now := time.Now().UTC()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	_ = c.Repo.UpdateFields(c.dbc(), c.Job.ID, map[string]interface{}{
		"status":        types.JobStatusFailed,
		"stage":         stage,
		"error":         msg,
		"last_error_at": now,
		"locked_at":     nil,
		"updated_at":    now,
	})
	c.Job.Status = types.JobStatusFailed
	c.Job.Stage = stage
	c.Job.Error = msg
	c.Job.LastErrorAt = &now
	c.Job.LockedAt = nil
}

// Succeed marks the run done and stores the result document.
func (c *Context) Succeed(stage string, result any) {
	if c == nil || c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	now := time.Now().UTC()
	var raw datatypes.JSON
	if result != nil {
		if b, err := json.Marshal(result); err == nil {
			raw = datatypes.JSON(b)
		}
	}
	updates := map[string]interface{}{
		"status":     types.JobStatusSucceeded,
		"stage":      stage,
		"progress":   100,
		"error":      "",
		"locked_at":  nil,
		"updated_at": now,
	}
	if raw != nil {
		updates["result"] = raw
	}
	_ = c.Repo.UpdateFields(c.dbc(), c.Job.ID, updates)
	c.Job.Status = types.JobStatusSucceeded
	c.Job.Stage = stage
	c.Job.Progress = 100
	c.Job.Result = raw
	c.Job.LockedAt = nil
}

// Emit publishes a plan event when a bus is attached.
func (c *Context) Emit(goalID uuid.UUID, stage, status, detail string) {
	if c == nil || c.Bus == nil {
		return
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	jobID := uuid.Nil
	if c.Job != nil {
		jobID = c.Job.ID
	}
	_ = c.Bus.Publish(ctx, redisclient.PlanEvent{
		GoalID:    goalID,
		JobID:     jobID,
		Stage:     stage,
		Status:    status,
		Detail:    detail,
		EmittedAt: time.Now().UTC(),
	})
}
