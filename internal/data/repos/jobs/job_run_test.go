package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/strivekit/strivekit-backend/internal/data/repos/testutil"
	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
)

func queuedJob(dedupe string) *types.JobRun {
	return &types.JobRun{
		OwnerUserID: uuid.New(),
		JobType:     types.JobTypePlanGenerate,
		DedupeKey:   dedupe,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Payload:     datatypes.JSON([]byte(`{"goal_id":"` + uuid.NewString() + `"}`)),
	}
}

func TestClaimNextRunnable(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	repo := NewJobRunRepo(gdb, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.JobRun{queuedJob("plan_generate:claim-test")})
	if err != nil || len(created) != 1 {
		t.Fatalf("Create = %v, %v", created, err)
	}

	claimed, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 30*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != created[0].ID {
		t.Fatalf("claimed = %v, want the queued job", claimed)
	}
	if claimed.Status != types.JobStatusRunning || claimed.Attempts != 1 {
		t.Errorf("claimed status=%q attempts=%d, want running/1", claimed.Status, claimed.Attempts)
	}

	// The only job is now running with a fresh heartbeat; nothing left to claim.
	again, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 30*time.Minute)
	if err != nil {
		t.Fatalf("second ClaimNextRunnable: %v", err)
	}
	if again != nil {
		t.Errorf("claimed %v, want nil", again.ID)
	}
}

func TestFailedJobRetriesAfterDelay(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	repo := NewJobRunRepo(gdb, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.JobRun{queuedJob("plan_generate:retry-test")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	job := created[0]

	staleError := time.Now().UTC().Add(-time.Hour)
	if err := repo.UpdateFields(dbc, job.ID, map[string]interface{}{
		"status":        types.JobStatusFailed,
		"attempts":      1,
		"last_error_at": staleError,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	claimed, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 30*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if claimed == nil || claimed.ID != job.ID {
		t.Fatal("expected the failed job to be retried once the delay passed")
	}
	if claimed.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", claimed.Attempts)
	}

	// Exhausted attempts are never reclaimed.
	if err := repo.UpdateFields(dbc, job.ID, map[string]interface{}{
		"status":        types.JobStatusFailed,
		"attempts":      5,
		"last_error_at": staleError,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	exhausted, err := repo.ClaimNextRunnable(dbc, 5, 30*time.Second, 30*time.Minute)
	if err != nil {
		t.Fatalf("ClaimNextRunnable: %v", err)
	}
	if exhausted != nil {
		t.Error("job at max attempts should stay failed")
	}
}

func TestExistsRunnable(t *testing.T) {
	gdb := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
	repo := NewJobRunRepo(gdb, testutil.Logger(t))

	job := queuedJob("plan_generate:dedupe-test")
	if _, err := repo.Create(dbc, []*types.JobRun{job}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err := repo.ExistsRunnable(dbc, types.JobTypePlanGenerate, "plan_generate:dedupe-test")
	if err != nil || !exists {
		t.Fatalf("ExistsRunnable = %v, %v; want true", exists, err)
	}

	if err := repo.UpdateFields(dbc, job.ID, map[string]interface{}{
		"status": types.JobStatusSucceeded,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	exists, err = repo.ExistsRunnable(dbc, types.JobTypePlanGenerate, "plan_generate:dedupe-test")
	if err != nil {
		t.Fatalf("ExistsRunnable: %v", err)
	}
	if exists {
		t.Error("succeeded job should not block a new enqueue")
	}
}
