package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stafflink/internal/interviews/models"
	"stafflink/pkg/platform/sentinel"
)

// Postgres is the production interview store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const interviewColumns = `id, employer_id, candidate_id, job_id, scheduled_at, duration_seconds, interviewers, meeting_link, notes, status, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, interview *models.Interview) error {
	interviewers, err := json.Marshal(interview.Interviewers)
	if err != nil {
		return fmt.Errorf("encode interviewers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interviews (`+interviewColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		interview.ID, interview.EmployerID, interview.CandidateID, interview.JobID,
		interview.ScheduledAt, int64(interview.Duration.Seconds()), interviewers,
		interview.MeetingLink, interview.Notes, interview.Status,
		interview.CreatedAt, interview.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id)
	return scanInterview(row)
}

func (s *Postgres) Update(ctx context.Context, interview *models.Interview) error {
	return s.update(ctx, s.db, interview)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Postgres) update(ctx context.Context, db execer, interview *models.Interview) error {
	interviewers, err := json.Marshal(interview.Interviewers)
	if err != nil {
		return fmt.Errorf("encode interviewers: %w", err)
	}
	res, err := db.ExecContext(ctx, `
		UPDATE interviews
		SET scheduled_at = $2, duration_seconds = $3, interviewers = $4,
		    meeting_link = $5, notes = $6, status = $7, updated_at = $8
		WHERE id = $1
	`,
		interview.ID, interview.ScheduledAt, int64(interview.Duration.Seconds()),
		interviewers, interview.MeetingLink, interview.Notes, interview.Status,
		interview.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM interviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Interview, error) {
	return s.list(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE employer_id = $1 ORDER BY scheduled_at`, employerID)
}

func (s *Postgres) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*models.Interview, error) {
	return s.list(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE candidate_id = $1 ORDER BY scheduled_at`, candidateID)
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Interview, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interviews: %w", err)
	}
	defer rows.Close()

	var out []*models.Interview
	for rows.Next() {
		interview, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, interview)
	}
	return out, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, id uuid.UUID, validate func(*models.Interview) error, mutate func(*models.Interview)) (*models.Interview, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+interviewColumns+` FROM interviews WHERE id = $1 FOR UPDATE`, id)
	interview, err := scanInterview(row)
	if err != nil {
		return nil, err
	}

	if err := validate(interview); err != nil {
		return nil, err
	}
	mutate(interview)

	if err := s.update(ctx, tx, interview); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return interview, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (*models.Interview, error) {
	var (
		interview    models.Interview
		jobID        uuid.NullUUID
		durationSecs int64
		interviewers []byte
	)
	err := row.Scan(&interview.ID, &interview.EmployerID, &interview.CandidateID, &jobID,
		&interview.ScheduledAt, &durationSecs, &interviewers,
		&interview.MeetingLink, &interview.Notes, &interview.Status,
		&interview.CreatedAt, &interview.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan interview: %w", err)
	}
	if jobID.Valid {
		id := jobID.UUID
		interview.JobID = &id
	}
	interview.Duration = time.Duration(durationSecs) * time.Second
	if len(interviewers) > 0 {
		if err := json.Unmarshal(interviewers, &interview.Interviewers); err != nil {
			return nil, fmt.Errorf("decode interviewers: %w", err)
		}
	}
	return &interview, nil
}
