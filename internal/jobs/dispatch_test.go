package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/strivekit/strivekit-backend/internal/data/repos/testutil"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
)

type fakeJobRunRepo struct {
	jobs []*types.JobRun
}

func (f *fakeJobRunRepo) Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	for _, j := range jobs {
		if j.ID == uuid.Nil {
			j.ID = uuid.New()
		}
		f.jobs = append(f.jobs, j)
	}
	return jobs, nil
}

func (f *fakeJobRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.JobRun, error) {
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, nil
}

func (f *fakeJobRunRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay, staleRunning time.Duration) (*types.JobRun, error) {
	for _, j := range f.jobs {
		if j.Status == types.JobStatusQueued {
			j.Status = types.JobStatusRunning
			j.Attempts++
			return j, nil
		}
	}
	return nil, nil
}

func (f *fakeJobRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (f *fakeJobRunRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error { return nil }

func (f *fakeJobRunRepo) ExistsRunnable(dbc dbctx.Context, jobType, dedupeKey string) (bool, error) {
	for _, j := range f.jobs {
		if j.JobType == jobType && j.DedupeKey == dedupeKey &&
			(j.Status == types.JobStatusQueued || j.Status == types.JobStatusRunning) {
			return true, nil
		}
	}
	return false, nil
}

func TestEnqueuePlanGenerateDedupes(t *testing.T) {
	repo := &fakeJobRunRepo{}
	d := NewDispatcher(repo, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	userID := uuid.New()
	goalID := uuid.New()

	job, err := d.EnqueuePlanGenerate(dbc, userID, goalID)
	if err != nil {
		t.Fatalf("EnqueuePlanGenerate: %v", err)
	}
	if job == nil {
		t.Fatal("expected a new job on first enqueue")
	}
	if job.JobType != types.JobTypePlanGenerate {
		t.Errorf("JobType = %q, want %q", job.JobType, types.JobTypePlanGenerate)
	}
	if job.OwnerUserID != userID {
		t.Errorf("OwnerUserID = %v, want %v", job.OwnerUserID, userID)
	}

	var payload map[string]string
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["goal_id"] != goalID.String() {
		t.Errorf("payload goal_id = %q, want %q", payload["goal_id"], goalID)
	}

	// Second enqueue while the first is still runnable is a no-op.
	dup, err := d.EnqueuePlanGenerate(dbc, userID, goalID)
	if err != nil {
		t.Fatalf("second EnqueuePlanGenerate: %v", err)
	}
	if dup != nil {
		t.Error("expected nil job while an equivalent one is queued")
	}
	if len(repo.jobs) != 1 {
		t.Errorf("stored jobs = %d, want 1", len(repo.jobs))
	}
}

func TestEnqueuePlanGenerateRequiresGoal(t *testing.T) {
	d := NewDispatcher(&fakeJobRunRepo{}, testutil.Logger(t))
	if _, err := d.EnqueuePlanGenerate(dbctx.Context{Ctx: context.Background()}, uuid.New(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil goal id")
	}
}

func TestEnqueueDiscoveryDedupesAndNeverFails(t *testing.T) {
	repo := &fakeJobRunRepo{}
	d := NewDispatcher(repo, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	d.EnqueueDiscovery(dbc, "deadlift_1rm_kg", "Deadlift 180kg")
	d.EnqueueDiscovery(dbc, "deadlift_1rm_kg", "Deadlift 180kg")
	d.EnqueueDiscovery(dbc, "", "ignored")

	if len(repo.jobs) != 1 {
		t.Fatalf("stored jobs = %d, want 1", len(repo.jobs))
	}
	job := repo.jobs[0]
	if job.JobType != types.JobTypeStandardDiscover {
		t.Errorf("JobType = %q, want %q", job.JobType, types.JobTypeStandardDiscover)
	}
	if job.DedupeKey != "standard_discover:deadlift_1rm_kg" {
		t.Errorf("DedupeKey = %q", job.DedupeKey)
	}
	if job.OwnerUserID != uuid.Nil {
		t.Error("discovery jobs should have no owning user")
	}
}
