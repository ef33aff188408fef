// Package mongostore implements storage.Store on MongoDB. Documents keep the
// field names the web client already reads (job_title, bid_count, buyer.email).
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/model"
	"github.com/cuongbtq/solosphere-be/internal/api/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	jobsCollection = "jobs"
	bidsCollection = "bids"
)

type buyerDocument struct {
	Email string `bson:"email"`
	Name  string `bson:"name,omitempty"`
	Photo string `bson:"photo,omitempty"`
}

type jobDocument struct {
	ID          string        `bson:"_id"`
	Title       string        `bson:"job_title"`
	Description string        `bson:"description"`
	Category    string        `bson:"category"`
	MinPrice    float64       `bson:"min_price"`
	MaxPrice    float64       `bson:"max_price"`
	Deadline    *time.Time    `bson:"deadline,omitempty"`
	HasDeadline bool          `bson:"has_deadline"`
	BidCount    int           `bson:"bid_count"`
	Buyer       buyerDocument `bson:"buyer"`
	CreatedAt   time.Time     `bson:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at"`
}

type bidDocument struct {
	ID        string        `bson:"_id"`
	JobID     string        `bson:"jobId"`
	JobTitle  string        `bson:"job_title"`
	Category  string        `bson:"category"`
	Email     string        `bson:"email"`
	Price     float64       `bson:"price"`
	Comment   string        `bson:"comment"`
	Deadline  *time.Time    `bson:"deadline,omitempty"`
	Status    string        `bson:"status"`
	Buyer     buyerDocument `bson:"buyer"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

type Store struct {
	db     *mongo.Database
	jobs   *mongo.Collection
	bids   *mongo.Collection
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

func New(db *mongo.Database, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		jobs:   db.Collection(jobsCollection),
		bids:   db.Collection(bidsCollection),
		logger: logger,
	}
}

// EnsureIndexes creates the unique bid index the duplicate guard relies on,
// plus the lookup indexes of the listing endpoints
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.bids.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "jobId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_bids_email_job"),
		},
		{
			Keys:    bson.D{{Key: "buyer.email", Value: 1}},
			Options: options.Index().SetName("idx_bids_buyer_email"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bid indexes: %w", err)
	}

	_, err = s.jobs.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "buyer.email", Value: 1}},
			Options: options.Index().SetName("idx_jobs_buyer_email"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "has_deadline", Value: -1}, {Key: "deadline", Value: 1}},
			Options: options.Index().SetName("idx_jobs_category_deadline"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create job indexes: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func (s *Store) ListJobs(ctx context.Context) ([]model.Job, error) {
	return s.findJobs(ctx, bson.M{}, options.Find().SetSort(jobSort("")))
}

func (s *Store) SearchJobs(ctx context.Context, q storage.JobQuery) ([]model.Job, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(jobSort(q.Sort)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Size))
	return s.findJobs(ctx, jobFilter(q.Category, q.Search), opts)
}

func (s *Store) CountJobs(ctx context.Context, category, search string) (int64, error) {
	count, err := s.jobs.CountDocuments(ctx, jobFilter(category, search))
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

func (s *Store) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var doc jobDocument
	err := s.jobs.FindOne(ctx, bson.M{"_id": jobID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	job := doc.toModel()
	return &job, nil
}

func (s *Store) ListJobsByBuyer(ctx context.Context, email string) ([]model.Job, error) {
	return s.findJobs(ctx, bson.M{"buyer.email": email}, options.Find().SetSort(jobSort("")))
}

func (s *Store) CreateJob(ctx context.Context, job *model.Job) error {
	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	now := time.Now().UTC()
	job.BidCount = 0
	job.CreatedAt = now
	job.UpdatedAt = now

	if _, err := s.jobs.InsertOne(ctx, newJobDocument(job)); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *Store) ReplaceJob(ctx context.Context, job *model.Job) (domain.UpdateResult, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"job_title":    job.Title,
			"description":  job.Description,
			"category":     job.Category,
			"min_price":    job.MinPrice,
			"max_price":    job.MaxPrice,
			"deadline":     toTimePtr(job.Deadline),
			"has_deadline": !job.Deadline.IsZero(),
			"buyer":        buyerDocument{Email: job.BuyerEmail, Name: job.BuyerName, Photo: job.BuyerPhoto},
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"bid_count":  0,
			"created_at": now,
		},
	}

	res, err := s.jobs.UpdateOne(ctx, bson.M{"_id": job.JobID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to replace job: %w", err)
	}

	if res.UpsertedCount > 0 {
		return domain.Upserted(job.JobID), nil
	}
	return domain.Updated(res.MatchedCount, res.ModifiedCount), nil
}

func (s *Store) IncrementBidCount(ctx context.Context, jobID string) error {
	update := bson.M{
		"$inc": bson.M{"bid_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	if _, err := s.jobs.UpdateOne(ctx, bson.M{"_id": jobID}, update); err != nil {
		return fmt.Errorf("failed to increment bid count: %w", err)
	}
	return nil
}

func (s *Store) DeleteJob(ctx context.Context, jobID string) (domain.DeleteResult, error) {
	res, err := s.jobs.DeleteOne(ctx, bson.M{"_id": jobID})
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("failed to delete job: %w", err)
	}
	return domain.Deleted(res.DeletedCount), nil
}

// CreateBid relies on the unique (email, jobId) index: the insert either
// wins or reports a duplicate key, so the counter is bumped at most once per
// bidder and job. Insert and increment are two writes; standalone servers
// have no multi-document transactions.
func (s *Store) CreateBid(ctx context.Context, bid *model.Bid) error {
	if bid.BidID == "" {
		bid.BidID = uuid.New().String()
	}
	now := time.Now().UTC()
	bid.CreatedAt = now
	bid.UpdatedAt = now

	if _, err := s.bids.InsertOne(ctx, newBidDocument(bid)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateBid
		}
		return fmt.Errorf("failed to create bid: %w", err)
	}

	if err := s.IncrementBidCount(ctx, bid.JobID); err != nil {
		// The bid is stored, so report success: failing here would make the
		// caller's retry hit the duplicate guard. bid_count stays one short.
		s.logger.Error("Failed to increment bid count after insert",
			slog.String("bid_id", bid.BidID),
			slog.String("job_id", bid.JobID),
			slog.Any("error", err),
		)
	}
	return nil
}

func (s *Store) ListBidsByBidder(ctx context.Context, email string) ([]model.Bid, error) {
	return s.findBids(ctx, bson.M{"email": email})
}

func (s *Store) ListBidsByBuyer(ctx context.Context, email string) ([]model.Bid, error) {
	return s.findBids(ctx, bson.M{"buyer.email": email})
}

func (s *Store) UpdateBid(ctx context.Context, bidID string, patch model.BidPatch) (domain.UpdateResult, error) {
	set := bidPatchSet(patch)
	if set == nil {
		return domain.UpdateResult{}, domain.ErrEmptyUpdate
	}
	set["updated_at"] = time.Now().UTC()

	res, err := s.bids.UpdateOne(ctx, bson.M{"_id": bidID}, bson.M{"$set": set})
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update bid: %w", err)
	}
	return domain.Updated(res.MatchedCount, res.ModifiedCount), nil
}

func (s *Store) findJobs(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Job, error) {
	cursor, err := s.jobs.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobs: %w", err)
	}

	var docs []jobDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode jobs: %w", err)
	}

	jobs := make([]model.Job, len(docs))
	for i, doc := range docs {
		jobs[i] = doc.toModel()
	}
	return jobs, nil
}

func (s *Store) findBids(ctx context.Context, filter bson.M) ([]model.Bid, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.bids.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bids: %w", err)
	}

	var docs []bidDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bids: %w", err)
	}

	bids := make([]model.Bid, len(docs))
	for i, doc := range docs {
		bids[i] = doc.toModel()
	}
	return bids, nil
}

// jobFilter is the search/count predicate. The search text is quoted so it
// matches literally, case-insensitively, anywhere in the title.
func jobFilter(category, search string) bson.M {
	filter := bson.M{}
	if search != "" {
		filter["job_title"] = bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
	}
	if category != "" {
		filter["category"] = category
	}
	return filter
}

// jobSort orders by deadline with undated jobs last in both directions.
// Mongo ranks a missing deadline below every date, so has_deadline leads.
func jobSort(sort string) bson.D {
	switch {
	case sort == "":
		return bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortsAscending(sort):
		return bson.D{{Key: "has_deadline", Value: -1}, {Key: "deadline", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "has_deadline", Value: -1}, {Key: "deadline", Value: -1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	}
}

func bidPatchSet(patch model.BidPatch) bson.M {
	if patch.Empty() {
		return nil
	}
	set := bson.M{}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Comment != nil {
		set["comment"] = *patch.Comment
	}
	return set
}

func newJobDocument(job *model.Job) jobDocument {
	return jobDocument{
		ID:          job.JobID,
		Title:       job.Title,
		Description: job.Description,
		Category:    job.Category,
		MinPrice:    job.MinPrice,
		MaxPrice:    job.MaxPrice,
		Deadline:    toTimePtr(job.Deadline),
		HasDeadline: !job.Deadline.IsZero(),
		BidCount:    job.BidCount,
		Buyer:       buyerDocument{Email: job.BuyerEmail, Name: job.BuyerName, Photo: job.BuyerPhoto},
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
}

func (d jobDocument) toModel() model.Job {
	return model.Job{
		JobID:       d.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		MinPrice:    d.MinPrice,
		MaxPrice:    d.MaxPrice,
		Deadline:    fromTimePtr(d.Deadline),
		BidCount:    d.BidCount,
		BuyerEmail:  d.Buyer.Email,
		BuyerName:   d.Buyer.Name,
		BuyerPhoto:  d.Buyer.Photo,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func newBidDocument(bid *model.Bid) bidDocument {
	return bidDocument{
		ID:        bid.BidID,
		JobID:     bid.JobID,
		JobTitle:  bid.JobTitle,
		Category:  bid.Category,
		Email:     bid.Email,
		Price:     bid.Price,
		Comment:   bid.Comment,
		Deadline:  toTimePtr(bid.Deadline),
		Status:    bid.Status,
		Buyer:     buyerDocument{Email: bid.BuyerEmail, Name: bid.BuyerName},
		CreatedAt: bid.CreatedAt,
		UpdatedAt: bid.UpdatedAt,
	}
}

func (d bidDocument) toModel() model.Bid {
	return model.Bid{
		BidID:      d.ID,
		JobID:      d.JobID,
		JobTitle:   d.JobTitle,
		Category:   d.Category,
		Email:      d.Email,
		Price:      d.Price,
		Comment:    d.Comment,
		Deadline:   fromTimePtr(d.Deadline),
		Status:     d.Status,
		BuyerEmail: d.Buyer.Email,
		BuyerName:  d.Buyer.Name,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func toTimePtr(d domain.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func fromTimePtr(t *time.Time) domain.Date {
	if t == nil {
		return domain.Date{}
	}
	return domain.NewDate(t.UTC().Date())
}
