package model

import (
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
)

type Job struct {
	JobID       string      `db:"job_id"`
	Title       string      `db:"job_title"`
	Description string      `db:"description"`
	Category    string      `db:"category"`
	MinPrice    float64     `db:"min_price"`
	MaxPrice    float64     `db:"max_price"`
	Deadline    domain.Date `db:"deadline"`
	BidCount    int         `db:"bid_count"`
	BuyerEmail  string      `db:"buyer_email"`
	BuyerName   string      `db:"buyer_name"`
	BuyerPhoto  string      `db:"buyer_photo"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

type Bid struct {
	BidID      string      `db:"bid_id"`
	JobID      string      `db:"job_id"`
	JobTitle   string      `db:"job_title"`
	Category   string      `db:"category"`
	Email      string      `db:"email"`
	Price      float64     `db:"price"`
	Comment    string      `db:"comment"`
	Deadline   domain.Date `db:"deadline"`
	Status     string      `db:"status"`
	BuyerEmail string      `db:"buyer_email"`
	BuyerName  string      `db:"buyer_name"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
}

// BidPatch carries the mutable bid fields of a partial update. Nil fields
// are left untouched.
type BidPatch struct {
	Status  *string
	Price   *float64
	Comment *string
}

func (p BidPatch) Empty() bool {
	return p.Status == nil && p.Price == nil && p.Comment == nil
}
