package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stafflink/internal/applications/models"
	"stafflink/pkg/platform/sentinel"
)

// Postgres is the production application store. History is a JSONB column;
// transitions rewrite the whole array, and Execute's row lock keeps two
// concurrent transitions from losing entries.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const applicationColumns = `id, job_id, candidate_id, status, applied_date, history, updated_at`

func (s *Postgres) Create(ctx context.Context, app *models.Application) error {
	history, err := json.Marshal(app.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		app.ID, app.JobID, app.CandidateID, app.Status, app.AppliedDate, history, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (s *Postgres) Update(ctx context.Context, app *models.Application) error {
	history, err := json.Marshal(app.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications SET status = $2, history = $3, updated_at = $4 WHERE id = $1
	`, app.ID, app.Status, history, app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
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

func (s *Postgres) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*models.Application, error) {
	return s.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY applied_date DESC`, jobID)
}

func (s *Postgres) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]*models.Application, error) {
	return s.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE candidate_id = $1 ORDER BY applied_date DESC`, candidateID)
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Execute runs validate-then-mutate under SELECT FOR UPDATE so concurrent
// status changes serialize and history never loses an entry.
func (s *Postgres) Execute(ctx context.Context, id uuid.UUID, validate func(*models.Application) error, mutate func(*models.Application)) (*models.Application, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}

	if err := validate(app); err != nil {
		return nil, err
	}
	mutate(app)

	history, err := json.Marshal(app.History)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE applications SET status = $2, history = $3, updated_at = $4 WHERE id = $1
	`, app.ID, app.Status, history, app.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return app, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app     models.Application
		history []byte
	)
	err := row.Scan(&app.ID, &app.JobID, &app.CandidateID, &app.Status,
		&app.AppliedDate, &history, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &app.History); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	return &app, nil
}

// PostgresPendingLinks is the production pending-link store.
type PostgresPendingLinks struct {
	db *sql.DB
}

func NewPostgresPendingLinks(db *sql.DB) *PostgresPendingLinks {
	return &PostgresPendingLinks{db: db}
}

func (s *PostgresPendingLinks) Create(ctx context.Context, link *models.PendingLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_applications (id, email, candidate_id, created_at, expires_at)
		VALUES ($1, lower($2), $3, $4, $5)
	`, link.ID, link.Email, link.CandidateID, link.CreatedAt, link.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert pending link: %w", err)
	}
	return nil
}

func (s *PostgresPendingLinks) TakeByEmail(ctx context.Context, email string, now time.Time) ([]*models.PendingLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		DELETE FROM pending_applications
		WHERE email = lower($1)
		RETURNING id, email, candidate_id, created_at, expires_at
	`, email)
	if err != nil {
		return nil, fmt.Errorf("take pending links: %w", err)
	}
	defer rows.Close()

	var out []*models.PendingLink
	for rows.Next() {
		var link models.PendingLink
		if err := rows.Scan(&link.ID, &link.Email, &link.CandidateID, &link.CreatedAt, &link.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan pending link: %w", err)
		}
		if now.After(link.ExpiresAt) {
			continue
		}
		out = append(out, &link)
	}
	return out, rows.Err()
}
