package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/model"
)

// JobStore is the persistence contract for jobs
type JobStore interface {
	// ListJobs returns every job in store order
	ListJobs(ctx context.Context) ([]model.Job, error)
	// SearchJobs returns one page of jobs matching the query predicate
	SearchJobs(ctx context.Context, q JobQuery) ([]model.Job, error)
	// CountJobs counts jobs matching the predicate, ignoring paging
	CountJobs(ctx context.Context, category, search string) (int64, error)
	GetJobByID(ctx context.Context, jobID string) (*model.Job, error)
	ListJobsByBuyer(ctx context.Context, email string) ([]model.Job, error)
	// CreateJob assigns the id when empty, resets bid_count and inserts
	CreateJob(ctx context.Context, job *model.Job) error
	// ReplaceJob overwrites the mutable fields of the job, inserting it when
	// absent. bid_count survives replacement.
	ReplaceJob(ctx context.Context, job *model.Job) (domain.UpdateResult, error)
	// IncrementBidCount adds one to bid_count; unknown ids are not an error
	IncrementBidCount(ctx context.Context, jobID string) error
	// DeleteJob removes the job; deleting an absent job succeeds with 0
	DeleteJob(ctx context.Context, jobID string) (domain.DeleteResult, error)
}

// BidStore is the persistence contract for bids
type BidStore interface {
	// CreateBid inserts the bid and increments the parent job's bid_count as
	// one atomic step. A second bid with the same (email, job id) fails with
	// domain.ErrDuplicateBid and changes nothing.
	CreateBid(ctx context.Context, bid *model.Bid) error
	ListBidsByBidder(ctx context.Context, email string) ([]model.Bid, error)
	ListBidsByBuyer(ctx context.Context, email string) ([]model.Bid, error)
	UpdateBid(ctx context.Context, bidID string, patch model.BidPatch) (domain.UpdateResult, error)
}

// Store is the full backend used by the API handlers
type Store interface {
	JobStore
	BidStore
	Ping(ctx context.Context) error
}

// JobQuery describes a page of the job search
type JobQuery struct {
	Category string
	Search   string
	Sort     string
	Page     int // 1-based
	Size     int
}

// Offset converts the 1-based page into the number of records to skip
func (q JobQuery) Offset() int {
	return (q.Page - 1) * q.Size
}

// Validate rejects pages below 1 and pages whose offset does not fit in an int
func (q JobQuery) Validate() error {
	if q.Page < 1 || q.Size < 1 {
		return fmt.Errorf("%w: page and size must be at least 1", domain.ErrInvalidPage)
	}
	if q.Page-1 > math.MaxInt/q.Size {
		return fmt.Errorf("%w: page %d is out of range", domain.ErrInvalidPage, q.Page)
	}
	return nil
}
