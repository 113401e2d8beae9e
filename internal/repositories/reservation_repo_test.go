package repositories

import (
	"context"
	"testing"
	"time"

	"apartmani/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReservation(unitID uuid.UUID, from, to time.Time) *models.Reservation {
	return &models.Reservation{
		ID:             uuid.New(),
		UnitID:         unitID,
		AccountID:      uuid.New(),
		DateFrom:       from,
		DateTo:         to,
		GuestName:      "John Doe",
		NumberOfGuests: 2,
		Price:          120,
		Agency:         models.AgencyAirbnb,
		CreatedAt:      time.Date(2019, 11, 1, 0, 0, 0, 0, time.UTC),
	}
}

func day(d int) time.Time {
	return time.Date(2019, 11, d, 0, 0, 0, 0, time.UTC)
}

func TestReservationRepo_Create(t *testing.T) {
	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "inserted"},
		{name: "exclusion violation", execErr: &pgconn.PgError{Code: pgerrcode.ExclusionViolation}, wantErr: ErrReservationOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			r := newReservation(uuid.New(), day(24), day(27))
			exec := mock.ExpectExec(`INSERT INTO reservations`).
				WithArgs(r.ID, r.UnitID, r.AccountID, r.DateFrom, r.DateTo, r.GuestName,
					r.NumberOfGuests, r.Price, string(r.Agency), r.CreatedAt)
			if tt.execErr != nil {
				exec.WillReturnError(tt.execErr)
			} else {
				exec.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err = NewReservationRepository(mock).Create(context.Background(), r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReservationRepo_ListByUnit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	unitID := uuid.New()
	first := newReservation(unitID, day(1), day(3))
	second := newReservation(unitID, day(24), day(27))

	rows := pgxmock.NewRows([]string{
		"id", "unit_id", "account_id", "date_from", "date_to", "guest_name", "number_of_guests", "price", "agency", "created_at",
	})
	for _, r := range []*models.Reservation{first, second} {
		rows.AddRow(r.ID, r.UnitID, r.AccountID, r.DateFrom, r.DateTo, r.GuestName, r.NumberOfGuests, r.Price, string(r.Agency), r.CreatedAt)
	}
	mock.ExpectQuery(`FROM reservations`).WithArgs(unitID).WillReturnRows(rows)

	list, err := NewReservationRepository(mock).ListByUnit(context.Background(), unitID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0])
	assert.Equal(t, second, list[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}
