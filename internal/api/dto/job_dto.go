package dto

import (
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/model"
)

type Buyer struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

// JobRequest is the body of POST /job and PUT /job/:id
type JobRequest struct {
	Title       string      `json:"job_title" binding:"required"`
	Description string      `json:"description"`
	Category    string      `json:"category" binding:"required"`
	MinPrice    float64     `json:"min_price" binding:"gte=0"`
	MaxPrice    float64     `json:"max_price" binding:"gte=0"`
	Deadline    domain.Date `json:"deadline"`
	Buyer       Buyer       `json:"buyer"`
}

// Validate checks the rules binding tags cannot express
func (r *JobRequest) Validate() error {
	if !domain.ValidCategory(r.Category) {
		return domain.ErrInvalidCategory
	}
	if r.MaxPrice < r.MinPrice {
		return domain.ErrInvalidPriceRange
	}
	return nil
}

func (r *JobRequest) ToModel(jobID string) model.Job {
	return model.Job{
		JobID:       jobID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
		Deadline:    r.Deadline,
		BuyerEmail:  domain.NormalizeEmail(r.Buyer.Email),
		BuyerName:   r.Buyer.Name,
		BuyerPhoto:  r.Buyer.Photo,
	}
}

type JobDTO struct {
	JobID       string      `json:"_id"`
	Title       string      `json:"job_title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	MinPrice    float64     `json:"min_price"`
	MaxPrice    float64     `json:"max_price"`
	Deadline    domain.Date `json:"deadline"`
	BidCount    int         `json:"bid_count"`
	Buyer       Buyer       `json:"buyer"`
	CreatedAt   string      `json:"created_at"`
}

func NewJobDTO(job model.Job) JobDTO {
	return JobDTO{
		JobID:       job.JobID,
		Title:       job.Title,
		Description: job.Description,
		Category:    job.Category,
		MinPrice:    job.MinPrice,
		MaxPrice:    job.MaxPrice,
		Deadline:    job.Deadline,
		BidCount:    job.BidCount,
		Buyer: Buyer{
			Email: job.BuyerEmail,
			Name:  job.BuyerName,
			Photo: job.BuyerPhoto,
		},
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
	}
}

func NewJobDTOs(jobs []model.Job) []JobDTO {
	out := make([]JobDTO, len(jobs))
	for i, job := range jobs {
		out[i] = NewJobDTO(job)
	}
	return out
}

// SearchJobsRequest is the query of GET /all-jobs and GET /item-count.
// Page and size are pointers so an explicit 0 fails min=1 instead of
// falling back to the default.
type SearchJobsRequest struct {
	Page   *int   `form:"page" binding:"omitempty,min=1"`
	Size   *int   `form:"size" binding:"omitempty,min=1"`
	Filter string `form:"filter"`
	Sort   string `form:"sort"`
	Search string `form:"search"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
