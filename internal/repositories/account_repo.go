package repositories

import (
	"context"
	"fmt"
	"time"

	"apartmani/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByPasswordResetToken(ctx context.Context, token string) (*models.Account, error)
	Activate(ctx context.Context, activationToken string) (*models.Account, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, resetToken, passwordHash string, changedAt time.Time) error
	SetPasswordReset(ctx context.Context, id uuid.UUID, resetToken string, expiresAt time.Time) error
	ClearExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error)
}

type accountRepo struct {
	db Database
}

func NewAccountRepository(db Database) AccountRepository {
	return &accountRepo{db: db}
}

const accountColumns = `id, email, username, password_hash, activation_token, password_reset_token,
		password_reset_expires_at, password_changed_at, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID, &account.Email, &account.Username, &account.PasswordHash,
		&account.ActivationToken, &account.PasswordResetToken, &account.PasswordResetExpiresAt,
		&account.PasswordChangedAt, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *accountRepo) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, username, password_hash, activation_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`
	_, err := r.db.Exec(ctx, query, account.ID, account.Email, account.Username, account.PasswordHash,
		account.ActivationToken, account.CreatedAt)
	if err != nil {
		if isUniqueViolationOn(err, emailUniqueIndex) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRow(ctx, query, email))
}

func (r *accountRepo) GetByPasswordResetToken(ctx context.Context, token string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE password_reset_token = $1`
	return scanAccount(r.db.QueryRow(ctx, query, token))
}

// Activate clears the matching activation token in one statement so a token
// can be consumed at most once.
func (r *accountRepo) Activate(ctx context.Context, activationToken string) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET activation_token = NULL, updated_at = NOW()
		WHERE activation_token = $1
		RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRow(ctx, query, activationToken))
}

func (r *accountRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	query := `UPDATE accounts SET username = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, username, id)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE accounts
		SET password_hash = $1, password_changed_at = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, passwordHash, changedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetPassword replaces the password and clears the reset token pair, but
// only while resetToken is still the stored token.
func (r *accountRepo) ResetPassword(ctx context.Context, id uuid.UUID, resetToken, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE accounts
		SET password_hash = $1, password_changed_at = $2,
			password_reset_token = NULL, password_reset_expires_at = NULL, updated_at = NOW()
		WHERE id = $3 AND password_reset_token = $4
	`
	tag, err := r.db.Exec(ctx, query, passwordHash, changedAt, id, resetToken)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepo) SetPasswordReset(ctx context.Context, id uuid.UUID, resetToken string, expiresAt time.Time) error {
	query := `
		UPDATE accounts
		SET password_reset_token = $1, password_reset_expires_at = $2, updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, resetToken, expiresAt, id)
	if err != nil {
		return fmt.Errorf("failed to store password reset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearExpiredPasswordResets drops reset token pairs whose expiry has passed.
func (r *accountRepo) ClearExpiredPasswordResets(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE accounts
		SET password_reset_token = NULL, password_reset_expires_at = NULL, updated_at = NOW()
		WHERE password_reset_expires_at IS NOT NULL AND password_reset_expires_at < $1
	`
	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired password resets: %w", err)
	}
	return tag.RowsAffected(), nil
}
