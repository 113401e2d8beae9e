package testhelpers

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"apartmani/internal/models"
	"apartmani/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestDB migrates and truncates the database named by TEST_DATABASE_URL.
// The test is skipped in short mode or when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := DiscardLogger()
	if err := database.Migrate(ctx, connString, logger); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	pool, err := database.NewPool(ctx, connString, logger)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if _, err := pool.Exec(ctx, `TRUNCATE reservations, units, accounts`); err != nil {
		pool.Close()
		t.Fatalf("Failed to truncate test database: %v", err)
	}

	return &TestDB{Pool: pool, Cleanup: pool.Close}
}

// SetupTestAccount inserts an active account.
func SetupTestAccount(t *testing.T, db *TestDB, email string) *models.Account {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	account := &models.Account{
		ID:           uuid.New(),
		Email:        email,
		Username:     "test-user",
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderpl",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO accounts (id, email, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`
	if _, err := db.Pool.Exec(context.Background(), query,
		account.ID, account.Email, account.Username, account.PasswordHash, account.CreatedAt); err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}
	return account
}

// SetupTestUnit inserts a unit owned by ownerID.
func SetupTestUnit(t *testing.T, db *TestDB, ownerID uuid.UUID) *models.Unit {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Microsecond)
	unit := &models.Unit{ID: uuid.New(), OwnerID: ownerID, Name: "Test Apartment", CreatedAt: now, UpdatedAt: now}

	query := `INSERT INTO units (id, owner_id, name, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`
	if _, err := db.Pool.Exec(context.Background(), query, unit.ID, unit.OwnerID, unit.Name, unit.CreatedAt); err != nil {
		t.Fatalf("Failed to create test unit: %v", err)
	}
	return unit
}

func IntPtr(i int) *int { return &i }

func Float64Ptr(f float64) *float64 { return &f }

func TimePtr(t time.Time) *time.Time { return &t }

func StringPtr(s string) *string { return &s }
