package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"stafflink/internal/candidates/models"
	"stafflink/pkg/platform/sentinel"
)

// Postgres is the production candidate store. The flexible-shape fields and
// skills are stored as JSONB; FlexList normalization happens in the model's
// UnmarshalJSON, so legacy shapes in existing rows load cleanly.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const candidateColumns = `id, account_id, full_name, email, phone,
	education, experience, certifications, skills,
	current_location, preferred_location, current_company, current_role,
	expected_salary, notice_period,
	resume_url, video_resume_url, audio_biodata_url, photograph_url,
	status, notes, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, c *models.Candidate) error {
	education, experience, certifications, skills, err := marshalCandidateJSON(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES ($1, $2, $3, lower($4), $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`,
		c.ID, c.AccountID, c.FullName, c.Email, c.Phone,
		education, experience, certifications, skills,
		c.CurrentLocation, c.PreferredLocation, c.CurrentCompany, c.CurrentRole,
		c.ExpectedSalary, c.NoticePeriod,
		c.ResumeURL, c.VideoResumeURL, c.AudioBiodataURL, c.PhotographURL,
		c.Status, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return scanCandidate(row)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE email = lower($1)`, email)
	return scanCandidate(row)
}

func (s *Postgres) Update(ctx context.Context, c *models.Candidate) error {
	education, experience, certifications, skills, err := marshalCandidateJSON(c)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidates SET
			account_id = $2, full_name = $3, phone = $4,
			education = $5, experience = $6, certifications = $7, skills = $8,
			current_location = $9, preferred_location = $10, current_company = $11,
			current_role = $12, expected_salary = $13, notice_period = $14,
			resume_url = $15, video_resume_url = $16, audio_biodata_url = $17,
			photograph_url = $18, status = $19, notes = $20, updated_at = $21
		WHERE id = $1
	`,
		c.ID, c.AccountID, c.FullName, c.Phone,
		education, experience, certifications, skills,
		c.CurrentLocation, c.PreferredLocation, c.CurrentCompany, c.CurrentRole,
		c.ExpectedSalary, c.NoticePeriod,
		c.ResumeURL, c.VideoResumeURL, c.AudioBiodataURL, c.PhotographURL,
		c.Status, c.Notes, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
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

func (s *Postgres) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Candidate, error) {
	byID := make(map[uuid.UUID]*models.Candidate, len(ids))
	for _, id := range ids {
		c, err := s.FindByID(ctx, id)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		byID[id] = c
	}
	out := make([]*models.Candidate, 0, len(byID))
	seen := make(map[uuid.UUID]bool, len(byID))
	for _, id := range ids {
		if c, ok := byID[id]; ok && !seen[id] {
			out = append(out, c)
			seen[id] = true
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var (
		c              models.Candidate
		accountID      *uuid.UUID
		education      []byte
		experience     []byte
		certifications []byte
		skills         []byte
	)
	err := row.Scan(
		&c.ID, &accountID, &c.FullName, &c.Email, &c.Phone,
		&education, &experience, &certifications, &skills,
		&c.CurrentLocation, &c.PreferredLocation, &c.CurrentCompany, &c.CurrentRole,
		&c.ExpectedSalary, &c.NoticePeriod,
		&c.ResumeURL, &c.VideoResumeURL, &c.AudioBiodataURL, &c.PhotographURL,
		&c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	c.AccountID = accountID
	for raw, dst := range map[*[]byte]any{
		&education:      &c.Education,
		&experience:     &c.Experience,
		&certifications: &c.Certifications,
		&skills:         &c.Skills,
	} {
		if len(*raw) > 0 {
			if err := json.Unmarshal(*raw, dst); err != nil {
				return nil, fmt.Errorf("decode candidate field: %w", err)
			}
		}
	}
	return &c, nil
}

func marshalCandidateJSON(c *models.Candidate) (education, experience, certifications, skills []byte, err error) {
	if education, err = json.Marshal(c.Education); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode education: %w", err)
	}
	if experience, err = json.Marshal(c.Experience); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode experience: %w", err)
	}
	if certifications, err = json.Marshal(c.Certifications); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode certifications: %w", err)
	}
	if skills, err = json.Marshal(c.Skills); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode skills: %w", err)
	}
	return education, experience, certifications, skills, nil
}
