package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const jobColumns = `
	job_id, job_title, description, category, min_price, max_price,
	deadline, bid_count, buyer_email, buyer_name, buyer_photo,
	created_at, updated_at`

const bidColumns = `
	bid_id, job_id, job_title, category, email, price, comment,
	deadline, status, buyer_email, buyer_name, created_at, updated_at`

// Storage is the PostgreSQL implementation of Store
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ Store = (*Storage)(nil)

func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) ListJobs(ctx context.Context) ([]model.Job, error) {
	query := `SELECT` + jobColumns + ` FROM jobs ORDER BY created_at ASC, job_id ASC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (s *Storage) SearchJobs(ctx context.Context, q JobQuery) ([]model.Job, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	where, args := jobPredicate(q.Category, q.Search)
	query := `SELECT` + jobColumns + ` FROM jobs` + where + jobOrder(q.Sort)

	args = append(args, q.Size, q.Offset())
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search jobs: %w", err)
	}
	return jobs, nil
}

func (s *Storage) CountJobs(ctx context.Context, category, search string) (int64, error) {
	where, args := jobPredicate(category, search)

	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM jobs`+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	query := `SELECT` + jobColumns + ` FROM jobs WHERE job_id = $1`

	var job model.Job
	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *Storage) ListJobsByBuyer(ctx context.Context, email string) ([]model.Job, error) {
	query := `SELECT` + jobColumns + ` FROM jobs WHERE buyer_email = $1 ORDER BY created_at ASC, job_id ASC`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, email); err != nil {
		return nil, fmt.Errorf("failed to list jobs by buyer: %w", err)
	}
	return jobs, nil
}

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	if job.JobID == "" {
		job.JobID = uuid.New().String()
	}
	now := time.Now().UTC()
	job.BidCount = 0
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `
		INSERT INTO jobs (
			job_id, job_title, description, category, min_price, max_price,
			deadline, bid_count, buyer_email, buyer_name, buyer_photo,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.Title,
		job.Description,
		job.Category,
		job.MinPrice,
		job.MaxPrice,
		job.Deadline,
		job.BidCount,
		job.BuyerEmail,
		job.BuyerName,
		job.BuyerPhoto,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *Storage) ReplaceJob(ctx context.Context, job *model.Job) (domain.UpdateResult, error) {
	query := `
		INSERT INTO jobs (
			job_id, job_title, description, category, min_price, max_price,
			deadline, bid_count, buyer_email, buyer_name, buyer_photo,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, 0, $8, $9, $10,
			NOW(), NOW()
		)
		ON CONFLICT (job_id) DO UPDATE SET
			job_title   = EXCLUDED.job_title,
			description = EXCLUDED.description,
			category    = EXCLUDED.category,
			min_price   = EXCLUDED.min_price,
			max_price   = EXCLUDED.max_price,
			deadline    = EXCLUDED.deadline,
			buyer_email = EXCLUDED.buyer_email,
			buyer_name  = EXCLUDED.buyer_name,
			buyer_photo = EXCLUDED.buyer_photo,
			updated_at  = NOW()
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := s.db.GetContext(
		ctx,
		&inserted,
		query,
		job.JobID,
		job.Title,
		job.Description,
		job.Category,
		job.MinPrice,
		job.MaxPrice,
		job.Deadline,
		job.BuyerEmail,
		job.BuyerName,
		job.BuyerPhoto,
	)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to replace job: %w", err)
	}

	if inserted {
		return domain.Upserted(job.JobID), nil
	}
	return domain.Updated(1, 1), nil
}

func (s *Storage) IncrementBidCount(ctx context.Context, jobID string) error {
	query := `UPDATE jobs SET bid_count = bid_count + 1, updated_at = NOW() WHERE job_id = $1`

	if _, err := s.db.ExecContext(ctx, query, jobID); err != nil {
		return fmt.Errorf("failed to increment bid count: %w", err)
	}
	return nil
}

func (s *Storage) DeleteJob(ctx context.Context, jobID string) (domain.DeleteResult, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE job_id = $1`, jobID)
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("failed to delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.DeleteResult{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return domain.Deleted(rowsAffected), nil
}

// CreateBid inserts the bid and bumps the job counter in a single statement.
// The unique index on (email, job_id) arbitrates concurrent duplicates, and
// the counter only moves for a row that was actually inserted.
func (s *Storage) CreateBid(ctx context.Context, bid *model.Bid) error {
	if bid.BidID == "" {
		bid.BidID = uuid.New().String()
	}
	now := time.Now().UTC()
	bid.CreatedAt = now
	bid.UpdatedAt = now

	query := `
		WITH inserted AS (
			INSERT INTO bids (
				bid_id, job_id, job_title, category, email, price, comment,
				deadline, status, buyer_email, buyer_name, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7,
				$8, $9, $10, $11, $12, $13
			)
			ON CONFLICT (email, job_id) DO NOTHING
			RETURNING bid_id, job_id
		), bumped AS (
			UPDATE jobs
			SET bid_count = bid_count + 1,
			    updated_at = NOW()
			WHERE job_id IN (SELECT job_id FROM inserted)
			RETURNING job_id
		)
		SELECT inserted.bid_id, (SELECT COUNT(*) FROM bumped) AS bumped
		FROM inserted
	`

	var row struct {
		BidID  string `db:"bid_id"`
		Bumped int    `db:"bumped"`
	}
	err := s.db.GetContext(
		ctx,
		&row,
		query,
		bid.BidID,
		bid.JobID,
		bid.JobTitle,
		bid.Category,
		bid.Email,
		bid.Price,
		bid.Comment,
		bid.Deadline,
		bid.Status,
		bid.BuyerEmail,
		bid.BuyerName,
		bid.CreatedAt,
		bid.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrDuplicateBid
		}
		return fmt.Errorf("failed to create bid: %w", err)
	}

	if row.Bumped == 0 {
		s.logger.Warn("Bid placed on unknown job",
			slog.String("bid_id", row.BidID),
			slog.String("job_id", bid.JobID),
		)
	}
	return nil
}

func (s *Storage) ListBidsByBidder(ctx context.Context, email string) ([]model.Bid, error) {
	query := `SELECT` + bidColumns + ` FROM bids WHERE email = $1 ORDER BY created_at ASC, bid_id ASC`

	bids := []model.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, email); err != nil {
		return nil, fmt.Errorf("failed to list bids by bidder: %w", err)
	}
	return bids, nil
}

func (s *Storage) ListBidsByBuyer(ctx context.Context, email string) ([]model.Bid, error) {
	query := `SELECT` + bidColumns + ` FROM bids WHERE buyer_email = $1 ORDER BY created_at ASC, bid_id ASC`

	bids := []model.Bid{}
	if err := s.db.SelectContext(ctx, &bids, query, email); err != nil {
		return nil, fmt.Errorf("failed to list bids by buyer: %w", err)
	}
	return bids, nil
}

func (s *Storage) UpdateBid(ctx context.Context, bidID string, patch model.BidPatch) (domain.UpdateResult, error) {
	if patch.Empty() {
		return domain.UpdateResult{}, domain.ErrEmptyUpdate
	}

	query := `
		UPDATE bids
		SET status     = COALESCE($2, status),
		    price      = COALESCE($3, price),
		    comment    = COALESCE($4, comment),
		    updated_at = NOW()
		WHERE bid_id = $1
	`

	result, err := s.db.ExecContext(ctx, query, bidID, patch.Status, patch.Price, patch.Comment)
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to update bid: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.UpdateResult{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return domain.Updated(rowsAffected, rowsAffected), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// jobPredicate builds the WHERE clause shared by search and count
func jobPredicate(category, search string) (string, []interface{}) {
	clause := " WHERE 1=1"
	args := []interface{}{}

	if search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		clause += fmt.Sprintf(` AND job_title ILIKE $%d ESCAPE '\'`, len(args))
	}

	if category != "" {
		args = append(args, category)
		clause += fmt.Sprintf(" AND category = $%d", len(args))
	}

	return clause, args
}

func jobOrder(sort string) string {
	switch {
	case sort == "":
		return " ORDER BY created_at ASC, job_id ASC"
	case domain.SortsAscending(sort):
		return " ORDER BY deadline ASC NULLS LAST, created_at ASC, job_id ASC"
	default:
		return " ORDER BY deadline DESC NULLS LAST, created_at ASC, job_id ASC"
	}
}
