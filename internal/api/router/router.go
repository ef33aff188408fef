package router

import (
	"net/http"

	"github.com/cuongbtq/solosphere-be/internal/api/auth"
	"github.com/cuongbtq/solosphere-be/internal/api/dto"
	"github.com/cuongbtq/solosphere-be/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, allowedOrigins []string) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(allowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "route not found"})
	})

	healthHandler := handler.NewHealthHandler(deps)
	authHandler := handler.NewAuthHandler(deps)
	jobHandler := handler.NewJobHandler(deps)
	bidHandler := handler.NewBidHandler(deps)

	requireToken := auth.RequireToken(deps.Tokens, deps.Cookies, deps.Logger)

	// job writes are open unless ownership enforcement is switched on
	ownerOnly := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if deps.EnforceJobOwnership {
			return []gin.HandlerFunc{requireToken, h}
		}
		return []gin.HandlerFunc{h}
	}

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)

	// POST /jwt - Issue the session cookie
	r.POST("/jwt", authHandler.IssueToken)
	// GET /logout - Clear the session cookie
	r.GET("/logout", authHandler.Logout)

	// GET /jobs - All jobs
	r.GET("/jobs", jobHandler.ListJobs)
	// GET /jobs/:email - Jobs posted by the caller
	r.GET("/jobs/:email", requireToken, jobHandler.ListJobsByBuyer)
	// GET /job/:id - One job
	r.GET("/job/:id", jobHandler.GetJob)
	// POST /job - Post a job
	r.POST("/job", jobHandler.CreateJob)
	// PUT /job/:id - Replace or create a job
	r.PUT("/job/:id", ownerOnly(jobHandler.ReplaceJob)...)
	// DELETE /job/:id - Delete a job
	r.DELETE("/job/:id", ownerOnly(jobHandler.DeleteJob)...)

	// GET /all-jobs - Paged, filtered and sorted search
	r.GET("/all-jobs", jobHandler.SearchJobs)
	// GET /item-count - Number of jobs matching the search
	r.GET("/item-count", jobHandler.CountJobs)

	// POST /bid - Place a bid
	r.POST("/bid", bidHandler.CreateBid)
	// GET /bid/:email - Bids placed by the caller
	r.GET("/bid/:email", requireToken, bidHandler.ListBidsByBidder)
	// GET /bid-request/:email - Bids received on the caller's jobs
	r.GET("/bid-request/:email", requireToken, bidHandler.ListBidRequests)
	// PATCH /bid/:id - Update bid status
	r.PATCH("/bid/:id", bidHandler.UpdateBid)

	return r
}
