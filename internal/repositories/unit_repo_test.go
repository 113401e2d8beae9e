package repositories

import (
	"context"
	"testing"
	"time"

	"apartmani/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitColumnNames = []string{"id", "owner_id", "name", "created_at", "updated_at"}

func TestUnitRepo_CreateAndGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewUnitRepository(mock)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	unit := &models.Unit{ID: uuid.New(), OwnerID: uuid.New(), Name: "Sea View", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`INSERT INTO units`).
		WithArgs(unit.ID, unit.OwnerID, unit.Name, unit.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`FROM units`).
		WithArgs(unit.ID).
		WillReturnRows(pgxmock.NewRows(unitColumnNames).AddRow(unit.ID, unit.OwnerID, unit.Name, unit.CreatedAt, unit.UpdatedAt))

	require.NoError(t, repo.Create(context.Background(), unit))
	got, err := repo.GetByID(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Equal(t, unit, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`FROM units`).WithArgs(id).WillReturnRows(pgxmock.NewRows(unitColumnNames))

	_, err = NewUnitRepository(mock).GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
