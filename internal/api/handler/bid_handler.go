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

// CreateBid handles POST /bid
// One bid per bidder per job; a second attempt fails with 400 and leaves the
// job's bid_count untouched
func (h *BidHandler) CreateBid(c *gin.Context) {
	h.logger.Info("CreateBid called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
	)

	var req dto.CreateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	bid := req.ToModel("")

	// buyer and job details come from the job, not from the bidder
	job, err := h.store.GetJobByID(ctx, bid.JobID)
	switch {
	case err == nil:
		if domain.NormalizeEmail(job.BuyerEmail) == bid.Email {
			respondError(c, h.logger, domain.ErrOwnJobBid, "Failed to place bid")
			return
		}
		bid.JobTitle = job.Title
		bid.Category = job.Category
		bid.BuyerEmail = job.BuyerEmail
		bid.BuyerName = job.BuyerName
	case errors.Is(err, domain.ErrJobNotFound):
		h.logger.Warn("Bid references unknown job", slog.String("job_id", bid.JobID))
	default:
		respondError(c, h.logger, err, "Failed to place bid")
		return
	}

	if err := h.store.CreateBid(ctx, &bid); err != nil {
		respondError(c, h.logger, err, "Failed to place bid")
		return
	}

	e := events.New(events.BidPlaced)
	e.ActorEmail = actorEmail(ctx, bid.Email)
	e.JobID = bid.JobID
	e.BidID = bid.BidID
	e.Data = map[string]interface{}{"price": bid.Price, "buyer_email": bid.BuyerEmail}
	publish(ctx, h.publisher, h.logger, e)

	c.JSON(http.StatusOK, domain.Inserted(bid.BidID))
}

// ListBidsByBidder handles GET /bid/:email
// The bids a user has placed
func (h *BidHandler) ListBidsByBidder(c *gin.Context) {
	email := domain.NormalizeEmail(c.Param("email"))
	if err := auth.CheckOwner(c.Request.Context(), email); err != nil {
		respondError(c, h.logger, err, "Failed to list bids")
		return
	}

	bids, err := h.store.ListBidsByBidder(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list bids")
		return
	}

	c.JSON(http.StatusOK, dto.NewBidDTOs(bids))
}

// ListBidRequests handles GET /bid-request/:email
// The bids received on jobs the user posted
func (h *BidHandler) ListBidRequests(c *gin.Context) {
	email := domain.NormalizeEmail(c.Param("email"))
	if err := auth.CheckOwner(c.Request.Context(), email); err != nil {
		respondError(c, h.logger, err, "Failed to list bid requests")
		return
	}

	bids, err := h.store.ListBidsByBuyer(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list bid requests")
		return
	}

	c.JSON(http.StatusOK, dto.NewBidDTOs(bids))
}

// UpdateBid handles PATCH /bid/:id
// Merges the provided fields into the bid
func (h *BidHandler) UpdateBid(c *gin.Context) {
	bidID, ok := pathID(c)
	if !ok {
		return
	}

	h.logger.Info("UpdateBid called",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("bid_id", bidID),
	)

	var req dto.UpdateBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	patch := req.ToPatch()
	result, err := h.store.UpdateBid(c.Request.Context(), bidID, patch)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update bid")
		return
	}

	if result.MatchedCount > 0 {
		e := events.New(events.BidUpdated)
		e.ActorEmail = actorEmail(c.Request.Context(), "")
		e.BidID = bidID
		if patch.Status != nil {
			e.Data = map[string]interface{}{"status": *patch.Status}
		}
		publish(c.Request.Context(), h.publisher, h.logger, e)
	}

	c.JSON(http.StatusOK, result)
}
