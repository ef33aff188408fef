package storage

// Schema creates the job and bid tables. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		job_id      TEXT PRIMARY KEY,
		job_title   TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL,
		min_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
		deadline    DATE,
		bid_count   INTEGER NOT NULL DEFAULT 0 CHECK (bid_count >= 0),
		buyer_email TEXT NOT NULL,
		buyer_name  TEXT NOT NULL DEFAULT '',
		buyer_photo TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_buyer_email ON jobs (buyer_email)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_category_deadline ON jobs (category, deadline)`,
	`CREATE TABLE IF NOT EXISTS bids (
		bid_id      TEXT PRIMARY KEY,
		job_id      TEXT NOT NULL,
		job_title   TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL,
		price       DOUBLE PRECISION NOT NULL DEFAULT 0,
		comment     TEXT NOT NULL DEFAULT '',
		deadline    DATE,
		status      TEXT NOT NULL,
		buyer_email TEXT NOT NULL DEFAULT '',
		buyer_name  TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// one bid per bidder per job
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bids_email_job ON bids (email, job_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bids_buyer_email ON bids (buyer_email)`,
}
