package dto

import (
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/model"
)

type BidBuyer struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// CreateBidRequest is the body of POST /bid. Job title, category and buyer
// are overwritten from the job when it exists.
type CreateBidRequest struct {
	JobID    string      `json:"jobId" binding:"required,uuid"`
	Email    string      `json:"email" binding:"required,email"`
	Price    float64     `json:"price" binding:"gte=0"`
	Comment  string      `json:"comment"`
	Deadline domain.Date `json:"deadline"`
	Status   string      `json:"status"`
	JobTitle string      `json:"job_title"`
	Category string      `json:"category"`
	Buyer    BidBuyer    `json:"buyer"`
}

func (r *CreateBidRequest) ToModel(bidID string) model.Bid {
	status := r.Status
	if status == "" {
		status = domain.BidStatusPending
	}
	return model.Bid{
		BidID:      bidID,
		JobID:      r.JobID,
		JobTitle:   r.JobTitle,
		Category:   r.Category,
		Email:      domain.NormalizeEmail(r.Email),
		Price:      r.Price,
		Comment:    r.Comment,
		Deadline:   r.Deadline,
		Status:     status,
		BuyerEmail: domain.NormalizeEmail(r.Buyer.Email),
		BuyerName:  r.Buyer.Name,
	}
}

// UpdateBidRequest is the body of PATCH /bid/:id
type UpdateBidRequest struct {
	Status  *string  `json:"status"`
	Price   *float64 `json:"price" binding:"omitempty,gte=0"`
	Comment *string  `json:"comment"`
}

func (r *UpdateBidRequest) ToPatch() model.BidPatch {
	return model.BidPatch{
		Status:  r.Status,
		Price:   r.Price,
		Comment: r.Comment,
	}
}

type BidDTO struct {
	BidID     string      `json:"_id"`
	JobID     string      `json:"jobId"`
	JobTitle  string      `json:"job_title"`
	Category  string      `json:"category"`
	Email     string      `json:"email"`
	Price     float64     `json:"price"`
	Comment   string      `json:"comment"`
	Deadline  domain.Date `json:"deadline"`
	Status    string      `json:"status"`
	Buyer     BidBuyer    `json:"buyer"`
	CreatedAt string      `json:"created_at"`
}

func NewBidDTOs(bids []model.Bid) []BidDTO {
	out := make([]BidDTO, len(bids))
	for i, bid := range bids {
		out[i] = BidDTO{
			BidID:     bid.BidID,
			JobID:     bid.JobID,
			JobTitle:  bid.JobTitle,
			Category:  bid.Category,
			Email:     bid.Email,
			Price:     bid.Price,
			Comment:   bid.Comment,
			Deadline:  bid.Deadline,
			Status:    bid.Status,
			Buyer:     BidBuyer{Email: bid.BuyerEmail, Name: bid.BuyerName},
			CreatedAt: bid.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}
