// Package memory is an in-process Store for local development and tests.
// Every operation holds one mutex, so bid insertion and the counter
// increment are atomic with respect to each other.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/model"
	"github.com/cuongbtq/solosphere-be/internal/api/storage"
	"github.com/google/uuid"
)

type bidKey struct {
	email string
	jobID string
}

type Store struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	bids    map[string]*model.Bid
	bidKeys map[bidKey]string
	// insertion sequence, used as the store order
	jobSeq map[string]int64
	bidSeq map[string]int64
	seq    int64
	now    func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		jobs:    make(map[string]*model.Job),
		bids:    make(map[string]*model.Bid),
		bidKeys: make(map[bidKey]string),
		jobSeq:  make(map[string]int64),
		bidSeq:  make(map[string]int64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) ListJobs(ctx context.Context) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedJobs(func(*model.Job) bool { return true }, ""), nil
}

func (s *Store) SearchJobs(ctx context.Context, q storage.JobQuery) ([]model.Job, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.sortedJobs(matcher(q.Category, q.Search), q.Sort)

	start := q.Offset()
	if start >= len(matched) {
		return []model.Job{}, nil
	}
	end := start + q.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (s *Store) CountJobs(ctx context.Context, category, search string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match := matcher(category, search)
	var n int64
	for _, job := range s.jobs {
		if match(job) {
			n++
		}
	}
	return n, nil
}

func (s *Store) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	out := *job
	return &out, nil
}

func (s *Store) ListJobsByBuyer(ctx context.Context, email string) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedJobs(func(j *model.Job) bool { return j.BuyerEmail == email }, ""), nil
}

func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	now := s.now()
	job.BidCount = 0
	job.CreatedAt = now
	job.UpdatedAt = now

	s.putJob(job)
	return nil
}

func (s *Store) ReplaceJob(ctx context.Context, job *model.Job) (domain.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	existing, ok := s.jobs[job.JobID]
	if !ok {
		stored := *job
		stored.BidCount = 0
		stored.CreatedAt = now
		stored.UpdatedAt = now
		s.putJob(&stored)
		return domain.Upserted(job.JobID), nil
	}

	existing.Title = job.Title
	existing.Description = job.Description
	existing.Category = job.Category
	existing.MinPrice = job.MinPrice
	existing.MaxPrice = job.MaxPrice
	existing.Deadline = job.Deadline
	existing.BuyerEmail = job.BuyerEmail
	existing.BuyerName = job.BuyerName
	existing.BuyerPhoto = job.BuyerPhoto
	existing.UpdatedAt = now
	return domain.Updated(1, 1), nil
}

func (s *Store) IncrementBidCount(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.incrementLocked(jobID)
	return nil
}

func (s *Store) DeleteJob(ctx context.Context, jobID string) (domain.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[jobID]; !ok {
		return domain.Deleted(0), nil
	}
	delete(s.jobs, jobID)
	delete(s.jobSeq, jobID)
	return domain.Deleted(1), nil
}

func (s *Store) CreateBid(ctx context.Context, bid *model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bidKey{email: bid.Email, jobID: bid.JobID}
	if _, exists := s.bidKeys[key]; exists {
		return domain.ErrDuplicateBid
	}

	if bid.BidID == "" {
		bid.BidID = uuid.New().String()
	}
	now := s.now()
	bid.CreatedAt = now
	bid.UpdatedAt = now

	stored := *bid
	s.seq++
	s.bids[stored.BidID] = &stored
	s.bidSeq[stored.BidID] = s.seq
	s.bidKeys[key] = stored.BidID

	s.incrementLocked(bid.JobID)
	return nil
}

func (s *Store) ListBidsByBidder(ctx context.Context, email string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedBids(func(b *model.Bid) bool { return b.Email == email }), nil
}

func (s *Store) ListBidsByBuyer(ctx context.Context, email string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedBids(func(b *model.Bid) bool { return b.BuyerEmail == email }), nil
}

func (s *Store) UpdateBid(ctx context.Context, bidID string, patch model.BidPatch) (domain.UpdateResult, error) {
	if patch.Empty() {
		return domain.UpdateResult{}, domain.ErrEmptyUpdate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bid, ok := s.bids[bidID]
	if !ok {
		return domain.Updated(0, 0), nil
	}

	if patch.Status != nil {
		bid.Status = *patch.Status
	}
	if patch.Price != nil {
		bid.Price = *patch.Price
	}
	if patch.Comment != nil {
		bid.Comment = *patch.Comment
	}
	bid.UpdatedAt = s.now()
	return domain.Updated(1, 1), nil
}

func (s *Store) putJob(job *model.Job) {
	s.seq++
	stored := *job
	s.jobs[job.JobID] = &stored
	s.jobSeq[job.JobID] = s.seq
}

func (s *Store) incrementLocked(jobID string) {
	if job, ok := s.jobs[jobID]; ok {
		job.BidCount++
		job.UpdatedAt = s.now()
	}
}

func (s *Store) sortedJobs(keep func(*model.Job) bool, sortDir string) []model.Job {
	out := []model.Job{}
	for _, job := range s.jobs {
		if keep(job) {
			out = append(out, *job)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if sortDir != "" && !a.Deadline.Equal(b.Deadline.Time) {
			// jobs without a deadline go last either way
			if a.Deadline.IsZero() != b.Deadline.IsZero() {
				return b.Deadline.IsZero()
			}
			if domain.SortsAscending(sortDir) {
				return a.Deadline.Before(b.Deadline.Time)
			}
			return a.Deadline.After(b.Deadline.Time)
		}
		return s.jobSeq[a.JobID] < s.jobSeq[b.JobID]
	})
	return out
}

func (s *Store) sortedBids(keep func(*model.Bid) bool) []model.Bid {
	out := []model.Bid{}
	for _, bid := range s.bids {
		if keep(bid) {
			out = append(out, *bid)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return s.bidSeq[out[i].BidID] < s.bidSeq[out[j].BidID]
	})
	return out
}

// matcher mirrors the SQL predicate: case-insensitive substring on the
// title plus exact category
func matcher(category, search string) func(*model.Job) bool {
	needle := strings.ToLower(search)
	return func(job *model.Job) bool {
		if category != "" && job.Category != category {
			return false
		}
		return strings.Contains(strings.ToLower(job.Title), needle)
	}
}
