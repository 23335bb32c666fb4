package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied idempotently at startup. Every statement must be safe to
// re-run against an existing database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id                UUID PRIMARY KEY,
		email             TEXT NOT NULL UNIQUE,
		password_hash     TEXT NOT NULL,
		user_type         TEXT NOT NULL,
		first_name        TEXT NOT NULL DEFAULT '',
		last_name         TEXT NOT NULL DEFAULT '',
		phone             TEXT,
		company_name      TEXT,
		email_verified    BOOLEAN NOT NULL DEFAULT FALSE,
		profile_completed BOOLEAN NOT NULL DEFAULT FALSE,
		kyc               JSONB,
		verification      JSONB,
		created_at        TIMESTAMPTZ NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS accounts_review_queue_idx
		ON accounts ((verification->>'status')) WHERE user_type = 'employee'`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id             UUID PRIMARY KEY,
		employer_id    UUID NOT NULL,
		title          TEXT NOT NULL,
		location       TEXT NOT NULL DEFAULT '',
		experience_min INT NOT NULL DEFAULT 0,
		experience_max INT NOT NULL DEFAULT 0,
		salary_min     BIGINT NOT NULL DEFAULT 0,
		salary_max     BIGINT NOT NULL DEFAULT 0,
		skills         JSONB,
		description    TEXT NOT NULL DEFAULT '',
		screening      JSONB,
		status         TEXT NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_employer_idx ON jobs (employer_id)`,
	`CREATE INDEX IF NOT EXISTS jobs_status_idx ON jobs (status)`,

	`CREATE TABLE IF NOT EXISTS candidates (
		id                 UUID PRIMARY KEY,
		account_id         UUID,
		full_name          TEXT NOT NULL,
		email              TEXT NOT NULL UNIQUE,
		phone              TEXT NOT NULL DEFAULT '',
		education          JSONB,
		experience         JSONB,
		certifications     JSONB,
		skills             JSONB,
		current_location   TEXT NOT NULL DEFAULT '',
		preferred_location TEXT NOT NULL DEFAULT '',
		current_company    TEXT NOT NULL DEFAULT '',
		current_role       TEXT NOT NULL DEFAULT '',
		expected_salary    TEXT NOT NULL DEFAULT '',
		notice_period      TEXT NOT NULL DEFAULT '',
		resume_url         TEXT NOT NULL DEFAULT '',
		video_resume_url   TEXT NOT NULL DEFAULT '',
		audio_biodata_url  TEXT NOT NULL DEFAULT '',
		photograph_url     TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL,
		notes              TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS applications (
		id           UUID PRIMARY KEY,
		job_id       UUID NOT NULL,
		candidate_id UUID NOT NULL,
		status       TEXT NOT NULL,
		applied_date TIMESTAMPTZ NOT NULL,
		history      JSONB NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS applications_job_idx ON applications (job_id)`,
	`CREATE INDEX IF NOT EXISTS applications_candidate_idx ON applications (candidate_id)`,

	`CREATE TABLE IF NOT EXISTS pending_applications (
		id           UUID PRIMARY KEY,
		email        TEXT NOT NULL,
		candidate_id UUID NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		expires_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS pending_applications_email_idx ON pending_applications (email)`,

	`CREATE TABLE IF NOT EXISTS interviews (
		id               UUID PRIMARY KEY,
		employer_id      UUID NOT NULL,
		candidate_id     UUID NOT NULL,
		job_id           UUID,
		scheduled_at     TIMESTAMPTZ NOT NULL,
		duration_seconds BIGINT NOT NULL,
		interviewers     JSONB,
		meeting_link     TEXT NOT NULL DEFAULT '',
		notes            TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS interviews_employer_idx ON interviews (employer_id, scheduled_at)`,
	`CREATE INDEX IF NOT EXISTS interviews_candidate_idx ON interviews (candidate_id, scheduled_at)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
