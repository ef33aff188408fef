package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/model"
	"github.com/cuongbtq/solosphere-be/internal/api/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(title, category string, deadline domain.Date) *model.Job {
	return &model.Job{
		Title:      title,
		Category:   category,
		MinPrice:   50,
		MaxPrice:   200,
		Deadline:   deadline,
		BuyerEmail: "buyer@x.com",
		BuyerName:  "Buyer",
	}
}

func seedJobs(t *testing.T, s *Store, n int) []string {
	t.Helper()

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		job := newJob(fmt.Sprintf("Job %02d", i), domain.CategoryWebDevelopment, domain.NewDate(2025, time.January, 1+i))
		require.NoError(t, s.CreateJob(context.Background(), job))
		ids = append(ids, job.JobID)
	}
	return ids
}

func jobIDs(jobs []model.Job) []string {
	ids := make([]string, len(jobs))
	for i, j := range jobs {
		ids[i] = j.JobID
	}
	return ids
}

func TestStore_CreateThenGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	in := newJob("Logo Design", domain.CategoryGraphicsDesign, domain.NewDate(2025, time.January, 1))
	in.Description = "vector logo for a bakery"
	require.NoError(t, s.CreateJob(ctx, in))
	require.NotEmpty(t, in.JobID)

	got, err := s.GetJobByID(ctx, in.JobID)
	require.NoError(t, err)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, in.Category, got.Category)
	assert.Equal(t, in.MinPrice, got.MinPrice)
	assert.Equal(t, in.MaxPrice, got.MaxPrice)
	assert.Equal(t, "2025-01-01", got.Deadline.String())
	assert.Equal(t, in.BuyerEmail, got.BuyerEmail)
	assert.Zero(t, got.BidCount)

	_, err = s.GetJobByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestStore_BidCountFollowsDistinctBidders(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedJobs(t, s, 1)

	const bidders = 5
	for i := 0; i < bidders; i++ {
		bid := &model.Bid{JobID: ids[0], Email: fmt.Sprintf("u%d@x.com", i), Status: domain.BidStatusPending}
		require.NoError(t, s.CreateBid(ctx, bid))
	}

	job, err := s.GetJobByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, bidders, job.BidCount)
}

func TestStore_DuplicateBidLeavesCountUnchanged(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedJobs(t, s, 1)

	require.NoError(t, s.CreateBid(ctx, &model.Bid{JobID: ids[0], Email: "u1@x.com"}))
	err := s.CreateBid(ctx, &model.Bid{JobID: ids[0], Email: "u1@x.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateBid)

	job, err := s.GetJobByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1, job.BidCount)

	bids, err := s.ListBidsByBidder(ctx, "u1@x.com")
	require.NoError(t, err)
	assert.Len(t, bids, 1)
}

func TestStore_ConcurrentDuplicateBids(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedJobs(t, s, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.CreateBid(ctx, &model.Bid{JobID: ids[0], Email: "racer@x.com"})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrDuplicateBid)
		}
	}
	assert.Equal(t, 1, succeeded)

	job, err := s.GetJobByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1, job.BidCount)
}

func TestStore_BidOnUnknownJob(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateBid(ctx, &model.Bid{JobID: "ghost", Email: "u1@x.com"}))
	assert.NoError(t, s.IncrementBidCount(ctx, "ghost"))

	count, err := s.CountJobs(ctx, "", "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_SearchPagination(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedJobs(t, s, 12)

	for _, sortDir := range []string{"", "asc", "dsc"} {
		t.Run("sort="+sortDir, func(t *testing.T) {
			wide, err := s.SearchJobs(ctx, storage.JobQuery{Sort: sortDir, Page: 1, Size: 10})
			require.NoError(t, err)
			require.Len(t, wide, 10)

			narrow, err := s.SearchJobs(ctx, storage.JobQuery{Sort: sortDir, Page: 2, Size: 5})
			require.NoError(t, err)

			assert.Equal(t, jobIDs(wide[5:]), jobIDs(narrow))
		})
	}

	past, err := s.SearchJobs(ctx, storage.JobQuery{Page: 4, Size: 5})
	require.NoError(t, err)
	assert.Empty(t, past)

	_, err = s.SearchJobs(ctx, storage.JobQuery{Page: 0, Size: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidPage)
}

func TestStore_SearchOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()

	late := newJob("Late", domain.CategoryWebDevelopment, domain.NewDate(2025, time.March, 1))
	early := newJob("Early", domain.CategoryWebDevelopment, domain.NewDate(2025, time.January, 1))
	undated := newJob("Undated", domain.CategoryWebDevelopment, domain.Date{})
	for _, j := range []*model.Job{late, undated, early} {
		require.NoError(t, s.CreateJob(ctx, j))
	}

	asc, err := s.SearchJobs(ctx, storage.JobQuery{Sort: "asc", Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{early.JobID, late.JobID, undated.JobID}, jobIDs(asc))

	desc, err := s.SearchJobs(ctx, storage.JobQuery{Sort: "dsc", Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{late.JobID, early.JobID, undated.JobID}, jobIDs(desc))

	natural, err := s.SearchJobs(ctx, storage.JobQuery{Page: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{late.JobID, undated.JobID, early.JobID}, jobIDs(natural))
}

func TestStore_SearchFilterAndCount(t *testing.T) {
	s := New()
	ctx := context.Background()

	jobs := []*model.Job{
		newJob("Landing Page", domain.CategoryWebDevelopment, domain.NewDate(2025, time.January, 1)),
		newJob("Product landing copy", domain.CategoryDigitalMarketing, domain.NewDate(2025, time.January, 2)),
		newJob("Logo Design", domain.CategoryGraphicsDesign, domain.NewDate(2025, time.January, 3)),
	}
	for _, j := range jobs {
		require.NoError(t, s.CreateJob(ctx, j))
	}

	tests := []struct {
		name     string
		category string
		search   string
		want     []string
	}{
		{name: "case-insensitive substring", search: "landing", want: []string{jobs[0].JobID, jobs[1].JobID}},
		{name: "upper-case term", search: "LOGO", want: []string{jobs[2].JobID}},
		{name: "empty search matches all", want: []string{jobs[0].JobID, jobs[1].JobID, jobs[2].JobID}},
		{name: "category narrows", category: domain.CategoryDigitalMarketing, search: "landing", want: []string{jobs[1].JobID}},
		{name: "regex metacharacters are literal", search: ".*", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchJobs(ctx, storage.JobQuery{Category: tt.category, Search: tt.search, Page: 1, Size: 10})
			require.NoError(t, err)
			assert.Equal(t, tt.want, jobIDs(got))

			count, err := s.CountJobs(ctx, tt.category, tt.search)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), count)
		})
	}
}

func TestStore_ReplaceJob(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedJobs(t, s, 1)

	require.NoError(t, s.CreateBid(ctx, &model.Bid{JobID: ids[0], Email: "u1@x.com"}))

	update := newJob("Renamed", domain.CategoryDigitalMarketing, domain.NewDate(2026, time.February, 2))
	update.JobID = ids[0]
	res, err := s.ReplaceJob(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, domain.Updated(1, 1), res)

	got, err := s.GetJobByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, domain.CategoryDigitalMarketing, got.Category)
	assert.Equal(t, 1, got.BidCount, "bid_count survives replacement")

	fresh := newJob("Recreated", domain.CategoryWebDevelopment, domain.Date{})
	fresh.JobID = "recreated-id"
	res, err = s.ReplaceJob(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, domain.Upserted("recreated-id"), res)

	got, err = s.GetJobByID(ctx, "recreated-id")
	require.NoError(t, err)
	assert.Equal(t, "Recreated", got.Title)
}

func TestStore_DeleteJobIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := seedJobs(t, s, 1)

	res, err := s.DeleteJob(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.Deleted(1), res)

	res, err = s.DeleteJob(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.Deleted(0), res)
}

func TestStore_BidListingsAndPatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.CreateBid(ctx, &model.Bid{JobID: "j1", Email: "u1@x.com", BuyerEmail: "alice@x.com", Status: domain.BidStatusPending, Comment: "hi"}))
	require.NoError(t, s.CreateBid(ctx, &model.Bid{JobID: "j2", Email: "u1@x.com", BuyerEmail: "bob@x.com", Status: domain.BidStatusPending}))
	require.NoError(t, s.CreateBid(ctx, &model.Bid{JobID: "j1", Email: "u2@x.com", BuyerEmail: "alice@x.com", Status: domain.BidStatusPending}))

	mine, err := s.ListBidsByBidder(ctx, "u1@x.com")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	received, err := s.ListBidsByBuyer(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Len(t, received, 2)

	status := domain.BidStatusInProgress
	res, err := s.UpdateBid(ctx, received[0].BidID, model.BidPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.Updated(1, 1), res)

	received, err = s.ListBidsByBuyer(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.BidStatusInProgress, received[0].Status)
	assert.Equal(t, "hi", received[0].Comment, "untouched fields keep their value")

	res, err = s.UpdateBid(ctx, "missing", model.BidPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.Updated(0, 0), res)

	_, err = s.UpdateBid(ctx, received[0].BidID, model.BidPatch{})
	assert.ErrorIs(t, err, domain.ErrEmptyUpdate)
}
