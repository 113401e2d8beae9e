package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the repositories use. pgxmock pools
// satisfy it in tests.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrReservationOverlap = errors.New("reservation overlaps an existing reservation")
)

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// emailUniqueIndex is the unique index on lower(email).
const emailUniqueIndex = "accounts_email_key"

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolationOn reports a unique violation raised by the named constraint or index.
func isUniqueViolationOn(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == constraint
}

func isExclusionViolation(err error) bool {
	return pgErrorCode(err) == pgerrcode.ExclusionViolation
}
