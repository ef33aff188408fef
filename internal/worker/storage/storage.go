package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/events"
	"github.com/cuongbtq/solosphere-be/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Schema creates the activity log. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS activity_log (
		event_id    UUID PRIMARY KEY,
		event_type  TEXT NOT NULL,
		actor_email TEXT NOT NULL DEFAULT '',
		job_id      TEXT NOT NULL DEFAULT '',
		bid_id      TEXT NOT NULL DEFAULT '',
		data        JSONB,
		occurred_at TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_log_actor ON activity_log (actor_email, occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_log_job ON activity_log (job_id)`,
}

// Activity is one row of the activity log
type Activity struct {
	EventID    string    `db:"event_id"`
	EventType  string    `db:"event_type"`
	ActorEmail string    `db:"actor_email"`
	JobID      string    `db:"job_id"`
	BidID      string    `db:"bid_id"`
	Data       []byte    `db:"data"`
	OccurredAt time.Time `db:"occurred_at"`
	RecordedAt time.Time `db:"recorded_at"`
}

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// RecordActivity inserts the event once. Replays of the same event id are
// reported as domain.OutcomeDuplicate and change nothing.
func (s *Storage) RecordActivity(ctx context.Context, e events.Event) (string, error) {
	var data []byte
	if len(e.Data) > 0 {
		var err error
		data, err = json.Marshal(e.Data)
		if err != nil {
			return "", fmt.Errorf("failed to marshal event data: %w", err)
		}
	}

	query := `
		INSERT INTO activity_log (
			event_id, event_type, actor_email, job_id, bid_id, data, occurred_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		e.EventID,
		string(e.Type),
		e.ActorEmail,
		e.JobID,
		e.BidID,
		data,
		e.OccurredAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record activity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Info("Activity already recorded",
			slog.String("event_id", e.EventID),
		)
		return domain.OutcomeDuplicate, nil
	}
	return domain.OutcomeRecorded, nil
}

// RecentActivity lists the newest entries, optionally for one actor
func (s *Storage) RecentActivity(ctx context.Context, actorEmail string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT event_id, event_type, actor_email, job_id, bid_id, data, occurred_at, recorded_at
		FROM activity_log
		WHERE 1=1
	`
	args := []interface{}{}
	if actorEmail != "" {
		args = append(args, actorEmail)
		query += fmt.Sprintf(" AND actor_email = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY occurred_at DESC, event_id ASC LIMIT $%d", len(args))

	activity := []Activity{}
	if err := s.db.SelectContext(ctx, &activity, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return activity, nil
}
