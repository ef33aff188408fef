package mongostore

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestJobFilter(t *testing.T) {
	tests := []struct {
		name     string
		category string
		search   string
		want     bson.M
	}{
		{
			name: "no filters",
			want: bson.M{},
		},
		{
			name:   "search is case-insensitive",
			search: "logo",
			want: bson.M{
				"job_title": bson.M{"$regex": "logo", "$options": "i"},
			},
		},
		{
			name:     "category and search",
			category: domain.CategoryWebDevelopment,
			search:   "page",
			want: bson.M{
				"job_title": bson.M{"$regex": "page", "$options": "i"},
				"category":  domain.CategoryWebDevelopment,
			},
		},
		{
			name:   "regex metacharacters are literal",
			search: "c++ (senior)",
			want: bson.M{
				"job_title": bson.M{"$regex": `c\+\+ \(senior\)`, "$options": "i"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jobFilter(tt.category, tt.search))
		})
	}
}

func TestJobSort(t *testing.T) {
	undatedLast := bson.E{Key: "has_deadline", Value: -1}

	assert.Equal(t, bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}, jobSort(""))

	asc := jobSort("asc")
	assert.Equal(t, undatedLast, asc[0])
	assert.Equal(t, bson.E{Key: "deadline", Value: 1}, asc[1])

	for _, sort := range []string{"dsc", "newest"} {
		desc := jobSort(sort)
		assert.Equal(t, undatedLast, desc[0])
		assert.Equal(t, bson.E{Key: "deadline", Value: -1}, desc[1])
	}
}

func TestJobDocument_HasDeadline(t *testing.T) {
	assert.True(t, newJobDocument(&model.Job{Deadline: domain.NewDate(2025, time.January, 1)}).HasDeadline)
	assert.False(t, newJobDocument(&model.Job{}).HasDeadline)
}

func TestStore_CreateBid(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key maps to duplicate bid", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: solosphere.bids index: uq_bids_email_job",
		}))

		err := New(mt.DB, logger).CreateBid(context.Background(), &model.Bid{JobID: "job-1", Email: "u1@x.com"})
		assert.ErrorIs(mt, err, domain.ErrDuplicateBid)
	})

	mt.Run("other insert failures are wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		err := New(mt.DB, logger).CreateBid(context.Background(), &model.Bid{JobID: "job-1", Email: "u1@x.com"})
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, domain.ErrDuplicateBid)
		assert.Contains(mt, err.Error(), "failed to create bid")
	})

	mt.Run("stored bid succeeds when the counter update fails", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    2,
				Name:    "BadValue",
				Message: "bad value",
			}),
		)

		bid := &model.Bid{JobID: "job-1", Email: "u1@x.com"}
		require.NoError(mt, New(mt.DB, logger).CreateBid(context.Background(), bid))
		assert.NotEmpty(mt, bid.BidID)
	})

	mt.Run("insert and increment", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		require.NoError(mt, New(mt.DB, logger).CreateBid(context.Background(), &model.Bid{JobID: "job-1", Email: "u1@x.com"}))
	})
}

func TestBidPatchSet(t *testing.T) {
	assert.Nil(t, bidPatchSet(model.BidPatch{}))

	status := domain.BidStatusRejected
	price := 120.0
	assert.Equal(t, bson.M{"status": status, "price": price}, bidPatchSet(model.BidPatch{Status: &status, Price: &price}))
}

func TestJobDocumentRoundTrip(t *testing.T) {
	created := time.Date(2024, time.June, 1, 8, 30, 0, 0, time.UTC)
	job := &model.Job{
		JobID:      "job-1",
		Title:      "Logo Design",
		Category:   domain.CategoryGraphicsDesign,
		MinPrice:   50,
		MaxPrice:   200,
		Deadline:   domain.NewDate(2025, time.January, 1),
		BidCount:   2,
		BuyerEmail: "bob@x.com",
		BuyerName:  "Bob",
		CreatedAt:  created,
		UpdatedAt:  created,
	}

	doc := newJobDocument(job)
	assert.Equal(t, "bob@x.com", doc.Buyer.Email)
	if assert.NotNil(t, doc.Deadline) {
		assert.Equal(t, "2025-01-01", doc.Deadline.Format(time.DateOnly))
	}
	assert.Equal(t, *job, doc.toModel())
}

func TestZeroDeadlineIsOmitted(t *testing.T) {
	doc := newBidDocument(&model.Bid{BidID: "bid-1", JobID: "job-1", Email: "u1@x.com"})
	assert.Nil(t, doc.Deadline)
	assert.True(t, doc.toModel().Deadline.IsZero())
}
