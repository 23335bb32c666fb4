package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"stafflink/internal/identity/models"
	"stafflink/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres is the production account store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const accountColumns = `id, email, password_hash, user_type, first_name, last_name,
	phone, company_name, email_verified, profile_completed, kyc, verification,
	created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, account *models.Account) error {
	kyc, verification, err := marshalAccountJSON(account)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		account.ID, account.Email, account.PasswordHash, account.UserType,
		account.FirstName, account.LastName, account.Phone, account.CompanyName,
		account.EmailVerified, account.ProfileCompleted, kyc, verification,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = lower($1)`, email)
	return scanAccount(row)
}

func (s *Postgres) Update(ctx context.Context, account *models.Account) error {
	kyc, verification, err := marshalAccountJSON(account)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET
			password_hash = $2, first_name = $3, last_name = $4, phone = $5,
			company_name = $6, email_verified = $7, profile_completed = $8,
			kyc = $9, verification = $10, updated_at = $11
		WHERE id = $1
	`,
		account.ID, account.PasswordHash, account.FirstName, account.LastName,
		account.Phone, account.CompanyName, account.EmailVerified,
		account.ProfileCompleted, kyc, verification, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) ListReviewQueue(ctx context.Context) ([]*models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE user_type = 'employee' AND verification->>'status' = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query review queue: %w", err)
	}
	defer rows.Close()

	var queue []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		queue = append(queue, account)
	}
	return queue, rows.Err()
}

// Execute runs validate-then-mutate under SELECT FOR UPDATE so two admins
// deciding on the same account serialize at the row.
func (s *Postgres) Execute(ctx context.Context, id uuid.UUID, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	account, err := scanAccount(row)
	if err != nil {
		return nil, err
	}

	if err := validate(account); err != nil {
		return nil, err
	}
	mutate(account)

	kyc, verification, err := marshalAccountJSON(account)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE accounts SET
			password_hash = $2, first_name = $3, last_name = $4, phone = $5,
			company_name = $6, email_verified = $7, profile_completed = $8,
			kyc = $9, verification = $10, updated_at = $11
		WHERE id = $1
	`,
		account.ID, account.PasswordHash, account.FirstName, account.LastName,
		account.Phone, account.CompanyName, account.EmailVerified,
		account.ProfileCompleted, kyc, verification, account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return account, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account         models.Account
		kycRaw          []byte
		verificationRaw []byte
		phone, company  sql.NullString
	)
	err := row.Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.UserType,
		&account.FirstName, &account.LastName, &phone, &company,
		&account.EmailVerified, &account.ProfileCompleted, &kycRaw, &verificationRaw,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	account.Phone = phone.String
	account.CompanyName = company.String
	if len(kycRaw) > 0 {
		account.KYC = &models.KYCDocument{}
		if err := json.Unmarshal(kycRaw, account.KYC); err != nil {
			return nil, fmt.Errorf("decode kyc: %w", err)
		}
	}
	if len(verificationRaw) > 0 {
		account.Verification = &models.VerificationState{}
		if err := json.Unmarshal(verificationRaw, account.Verification); err != nil {
			return nil, fmt.Errorf("decode verification: %w", err)
		}
	}
	return &account, nil
}

func marshalAccountJSON(account *models.Account) (kyc, verification []byte, err error) {
	if account.KYC != nil {
		if kyc, err = json.Marshal(account.KYC); err != nil {
			return nil, nil, fmt.Errorf("encode kyc: %w", err)
		}
	}
	if account.Verification != nil {
		if verification, err = json.Marshal(account.Verification); err != nil {
			return nil, nil, fmt.Errorf("encode verification: %w", err)
		}
	}
	return kyc, verification, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
