package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/solosphere-be/internal/api/auth"
	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/dto"
	"github.com/cuongbtq/solosphere-be/internal/events"
	"github.com/gin-gonic/gin"
)

// ListJobs handles GET /jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.store.ListJobs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to list jobs")
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTOs(jobs))
}

// GetJob handles GET /job/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := pathID(c)
	if !ok {
		return
	}

	job, err := h.store.GetJobByID(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get job")
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(*job))
}

// ListJobsByBuyer handles GET /jobs/:email
// Only the buyer themselves may list their postings
func (h *JobHandler) ListJobsByBuyer(c *gin.Context) {
	email := domain.NormalizeEmail(c.Param("email"))
	if err := auth.CheckOwner(c.Request.Context(), email); err != nil {
		respondError(c, h.logger, err, "Failed to list jobs")
		return
	}

	jobs, err := h.store.ListJobsByBuyer(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list jobs")
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTOs(jobs))
}

// CreateJob handles POST /job
func (h *JobHandler) CreateJob(c *gin.Context) {
	h.logger.Info("CreateJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, h.logger, err, "Invalid request body")
		return
	}

	job := req.ToModel("")
	if err := h.store.CreateJob(c.Request.Context(), &job); err != nil {
		respondError(c, h.logger, err, "Failed to create job")
		return
	}

	e := events.New(events.JobCreated)
	e.ActorEmail = actorEmail(c.Request.Context(), job.BuyerEmail)
	e.JobID = job.JobID
	e.Data = map[string]interface{}{"category": job.Category}
	publish(c.Request.Context(), h.publisher, h.logger, e)

	c.JSON(http.StatusOK, domain.Inserted(job.JobID))
}

// ReplaceJob handles PUT /job/:id
// Overwrites the job, creating it when absent
func (h *JobHandler) ReplaceJob(c *gin.Context) {
	jobID, ok := pathID(c)
	if !ok {
		return
	}

	h.logger.Info("ReplaceJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	var req dto.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, h.logger, err, "Invalid request body")
		return
	}

	job := req.ToModel(jobID)
	if h.enforceOwnership {
		if err := h.checkJobOwner(c, jobID, job.BuyerEmail); err != nil {
			respondError(c, h.logger, err, "Failed to update job")
			return
		}
	}

	result, err := h.store.ReplaceJob(c.Request.Context(), &job)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update job")
		return
	}

	e := events.New(events.JobReplaced)
	e.ActorEmail = actorEmail(c.Request.Context(), job.BuyerEmail)
	e.JobID = jobID
	e.Data = map[string]interface{}{"upserted": result.UpsertedCount > 0}
	publish(c.Request.Context(), h.publisher, h.logger, e)

	c.JSON(http.StatusOK, result)
}

// DeleteJob handles DELETE /job/:id
// Deleting an absent job succeeds with deletedCount 0
func (h *JobHandler) DeleteJob(c *gin.Context) {
	jobID, ok := pathID(c)
	if !ok {
		return
	}

	h.logger.Info("DeleteJob called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("job_id", jobID),
	)

	if h.enforceOwnership {
		if err := h.checkJobOwner(c, jobID, ""); err != nil {
			respondError(c, h.logger, err, "Failed to delete job")
			return
		}
	}

	result, err := h.store.DeleteJob(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete job")
		return
	}

	if result.DeletedCount > 0 {
		e := events.New(events.JobDeleted)
		e.ActorEmail = actorEmail(c.Request.Context(), "")
		e.JobID = jobID
		publish(c.Request.Context(), h.publisher, h.logger, e)
	}

	c.JSON(http.StatusOK, result)
}

// checkJobOwner requires the caller to be the buyer of the stored job. For a
// job that does not exist yet the claimed buyer is checked instead, and
// without a claim there is nothing to protect.
func (h *JobHandler) checkJobOwner(c *gin.Context, jobID, claimedBuyer string) error {
	ctx := c.Request.Context()

	job, err := h.store.GetJobByID(ctx, jobID)
	switch {
	case err == nil:
		if err := auth.CheckOwner(ctx, job.BuyerEmail); err != nil {
			return err
		}
		if claimedBuyer != "" {
			// the buyer of a job cannot be reassigned to someone else
			return auth.CheckOwner(ctx, claimedBuyer)
		}
		return nil
	case errors.Is(err, domain.ErrJobNotFound):
		if claimedBuyer == "" {
			return nil
		}
		return auth.CheckOwner(ctx, claimedBuyer)
	default:
		return err
	}
}
