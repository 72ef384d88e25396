package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
)

type recordingRepo struct {
	updates []map[string]interface{}
}

func (r *recordingRepo) Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	return jobs, nil
}

func (r *recordingRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	return nil, nil
}

func (r *recordingRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay, staleRunning time.Duration) (*types.JobRun, error) {
	return nil, nil
}

func (r *recordingRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.updates = append(r.updates, updates)
	return nil
}

func (r *recordingRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error { return nil }

func (r *recordingRepo) ExistsRunnable(dbc dbctx.Context, jobType, dedupeKey string) (bool, error) {
	return false, nil
}

func testJob(payload string) *types.JobRun {
	return &types.JobRun{
		ID:      uuid.New(),
		JobType: types.JobTypePlanGenerate,
		Status:  types.JobStatusRunning,
		Payload: datatypes.JSON([]byte(payload)),
	}
}

func TestPayloadDecoding(t *testing.T) {
	goalID := uuid.New()
	jc := NewContext(context.Background(), nil, testJob(`{"goal_id":"`+goalID.String()+`","context":"marathon"}`), &recordingRepo{}, nil)

	got, ok := jc.PayloadUUID("goal_id")
	if !ok || got != goalID {
		t.Fatalf("PayloadUUID = %v, %v; want %v, true", got, ok, goalID)
	}
	if s := jc.PayloadString("context"); s != "marathon" {
		t.Errorf("PayloadString = %q, want %q", s, "marathon")
	}
	if _, ok := jc.PayloadUUID("missing"); ok {
		t.Error("expected missing key to report false")
	}
}

func TestPayloadMalformedIsEmpty(t *testing.T) {
	jc := NewContext(context.Background(), nil, testJob(`not json`), &recordingRepo{}, nil)
	if len(jc.Payload()) != 0 {
		t.Errorf("Payload = %v, want empty", jc.Payload())
	}
	if _, ok := jc.PayloadUUID("goal_id"); ok {
		t.Error("expected no goal_id in malformed payload")
	}
}

func TestLifecycleTransitions(t *testing.T) {
	repo := &recordingRepo{}
	job := testJob(`{}`)
	jc := NewContext(context.Background(), nil, job, repo, nil)

	jc.Progress("generate", 10)
	if job.Stage != "generate" || job.Progress != 10 {
		t.Errorf("after Progress: stage=%q progress=%d", job.Stage, job.Progress)
	}

	jc.Fail("generate", errors.New("model unavailable"))
	if job.Status != types.JobStatusFailed {
		t.Errorf("after Fail: status=%q", job.Status)
	}
	if job.Error != "model unavailable" || job.LastErrorAt == nil {
		t.Errorf("after Fail: error=%q lastErrorAt=%v", job.Error, job.LastErrorAt)
	}
	if job.LockedAt != nil {
		t.Error("Fail should release the lock")
	}

	jc.Succeed("done", map[string]any{"milestones": 4})
	if job.Status != types.JobStatusSucceeded || job.Progress != 100 {
		t.Errorf("after Succeed: status=%q progress=%d", job.Status, job.Progress)
	}
	if len(job.Result) == 0 {
		t.Error("Succeed should store the result document")
	}

	if len(repo.updates) != 3 {
		t.Errorf("repo updates = %d, want 3", len(repo.updates))
	}
}
