package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	goalsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/goals"
	jobsrepo "github.com/strivekit/strivekit-backend/internal/data/repos/jobs"
	"github.com/strivekit/strivekit-backend/internal/http/middleware"
	"github.com/strivekit/strivekit-backend/internal/http/response"
	"github.com/strivekit/strivekit-backend/internal/jobs"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
)

// PlanHandler enqueues plan generation and serves the persisted artifacts.
// Generation itself always runs on the worker, never inside a request.
type PlanHandler struct {
	goals      goalsrepo.GoalRepo
	milestones goalsrepo.MilestoneRepo
	plans      goalsrepo.PlanRepo
	jobRuns    jobsrepo.JobRunRepo
	dispatcher *jobs.Dispatcher
	log        *logger.Logger
}

func NewPlanHandler(
	goals goalsrepo.GoalRepo,
	milestones goalsrepo.MilestoneRepo,
	plans goalsrepo.PlanRepo,
	jobRuns jobsrepo.JobRunRepo,
	dispatcher *jobs.Dispatcher,
	baseLog *logger.Logger,
) *PlanHandler {
	return &PlanHandler{
		goals:      goals,
		milestones: milestones,
		plans:      plans,
		jobRuns:    jobRuns,
		dispatcher: dispatcher,
		log:        baseLog.With("handler", "PlanHandler"),
	}
}

// GeneratePlan enqueues a plan generation job for the goal. Repeat calls
// while a job is still runnable return the same 202 without a new job.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	goalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_goal_id", err)
		return
	}
	goal, err := h.goals.GetByID(dbc, goalID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "goal_lookup_failed", err)
		return
	}
	if goal == nil || goal.UserID != middleware.UserID(c) {
		response.RespondError(c, http.StatusNotFound, "goal_not_found", fmt.Errorf("goal not found"))
		return
	}

	job, err := h.dispatcher.EnqueuePlanGenerate(dbc, goal.UserID, goal.ID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "enqueue_failed", err)
		return
	}
	if job == nil {
		response.RespondAccepted(c, gin.H{"status": "already_queued", "goal_id": goal.ID})
		return
	}
	response.RespondAccepted(c, gin.H{"status": "queued", "goal_id": goal.ID, "job_id": job.ID})
}

// GetPlan returns the latest persisted generation artifacts for the goal.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	goalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_goal_id", err)
		return
	}
	goal, err := h.goals.GetByIDWithMetrics(dbc, goalID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "goal_lookup_failed", err)
		return
	}
	if goal == nil || goal.UserID != middleware.UserID(c) {
		response.RespondError(c, http.StatusNotFound, "goal_not_found", fmt.Errorf("goal not found"))
		return
	}

	milestones, err := h.milestones.ListByGoal(dbc, goal.ID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "milestones_lookup_failed", err)
		return
	}
	plans, err := h.plans.ListActiveByGoal(dbc, goal.ID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "plans_lookup_failed", err)
		return
	}
	response.RespondOK(c, gin.H{
		"goal":       goal,
		"milestones": milestones,
		"plans":      plans,
	})
}

// GetJob reports background job status for polling clients.
func (h *PlanHandler) GetJob(c *gin.Context) {
	dbc := dbctx.Context{Ctx: c.Request.Context()}
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobRuns.GetByID(dbc, jobID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "job_lookup_failed", err)
		return
	}
	if job == nil || job.OwnerUserID != middleware.UserID(c) {
		response.RespondError(c, http.StatusNotFound, "job_not_found", fmt.Errorf("job not found"))
		return
	}
	response.RespondOK(c, gin.H{
		"id":       job.ID,
		"job_type": job.JobType,
		"status":   job.Status,
		"stage":    job.Stage,
		"progress": job.Progress,
		"error":    job.Error,
		"result":   job.Result,
	})
}
