package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/solosphere-be/internal/api/dto"
	"github.com/cuongbtq/solosphere-be/internal/api/storage"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// SearchJobs handles GET /all-jobs
// Returns one page of jobs filtered by category and title search, optionally
// sorted by deadline
func (h *JobHandler) SearchJobs(c *gin.Context) {
	var req dto.SearchJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Invalid query parameters", slog.String("error", err.Error()))
		badRequest(c, "Invalid query parameters: page and size must be positive integers")
		return
	}

	q := searchQuery(req)
	jobs, err := h.store.SearchJobs(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.logger, err, "Failed to search jobs")
		return
	}

	h.logger.Debug("Job search",
		slog.String("filter", q.Category),
		slog.String("search", q.Search),
		slog.String("sort", q.Sort),
		slog.Int("page", q.Page),
		slog.Int("size", q.Size),
		slog.Int("results", len(jobs)),
	)

	c.JSON(http.StatusOK, dto.NewJobDTOs(jobs))
}

// CountJobs handles GET /item-count
// Counts the jobs matching the same predicate as SearchJobs, ignoring paging
func (h *JobHandler) CountJobs(c *gin.Context) {
	var req dto.SearchJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Invalid query parameters", slog.String("error", err.Error()))
		badRequest(c, "Invalid query parameters")
		return
	}

	count, err := h.store.CountJobs(c.Request.Context(), req.Filter, req.Search)
	if err != nil {
		respondError(c, h.logger, err, "Failed to count jobs")
		return
	}

	c.JSON(http.StatusOK, dto.CountResponse{Count: count})
}

// searchQuery applies paging defaults: page 1, size 10, size capped at 100
func searchQuery(req dto.SearchJobsRequest) storage.JobQuery {
	q := storage.JobQuery{
		Category: req.Filter,
		Search:   req.Search,
		Sort:     req.Sort,
		Page:     1,
		Size:     defaultPageSize,
	}
	if req.Page != nil {
		q.Page = *req.Page
	}
	if req.Size != nil {
		q.Size = *req.Size
	}
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}
	return q
}
