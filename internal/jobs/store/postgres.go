package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"stafflink/internal/jobs/models"
	"stafflink/pkg/platform/sentinel"
)

// Postgres is the production job store. Skills and screening questions are
// stored as JSONB.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const jobColumns = `id, employer_id, title, location, experience_min, experience_max,
	salary_min, salary_max, skills, description, screening, status, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, job *models.Job) error {
	skills, screening, err := marshalJobJSON(job)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		job.ID, job.EmployerID, job.Title, job.Location,
		job.ExperienceMin, job.ExperienceMax, job.SalaryMin, job.SalaryMax,
		skills, job.Description, screening, job.Status, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (s *Postgres) Update(ctx context.Context, job *models.Job) error {
	skills, screening, err := marshalJobJSON(job)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET
			title = $2, location = $3, experience_min = $4, experience_max = $5,
			salary_min = $6, salary_max = $7, skills = $8, description = $9,
			screening = $10, status = $11, updated_at = $12
		WHERE id = $1
	`,
		job.ID, job.Title, job.Location, job.ExperienceMin, job.ExperienceMax,
		job.SalaryMin, job.SalaryMax, skills, job.Description, screening,
		job.Status, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
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

func (s *Postgres) ListByEmployer(ctx context.Context, employerID uuid.UUID) ([]*models.Job, error) {
	return s.list(ctx, `SELECT `+jobColumns+` FROM jobs WHERE employer_id = $1 ORDER BY created_at DESC`, employerID)
}

func (s *Postgres) ListOpen(ctx context.Context) ([]*models.Job, error) {
	return s.list(ctx, `SELECT `+jobColumns+` FROM jobs WHERE status = 'open' ORDER BY created_at DESC`)
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		job          models.Job
		skillsRaw    []byte
		screeningRaw []byte
	)
	err := row.Scan(
		&job.ID, &job.EmployerID, &job.Title, &job.Location,
		&job.ExperienceMin, &job.ExperienceMax, &job.SalaryMin, &job.SalaryMax,
		&skillsRaw, &job.Description, &screeningRaw, &job.Status,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &job.Skills); err != nil {
			return nil, fmt.Errorf("decode skills: %w", err)
		}
	}
	if len(screeningRaw) > 0 {
		if err := json.Unmarshal(screeningRaw, &job.Screening); err != nil {
			return nil, fmt.Errorf("decode screening: %w", err)
		}
	}
	return &job, nil
}

func marshalJobJSON(job *models.Job) (skills, screening []byte, err error) {
	if skills, err = json.Marshal(job.Skills); err != nil {
		return nil, nil, fmt.Errorf("encode skills: %w", err)
	}
	if screening, err = json.Marshal(job.Screening); err != nil {
		return nil, nil, fmt.Errorf("encode screening: %w", err)
	}
	return skills, screening, nil
}
