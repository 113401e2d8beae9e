package repositories

import (
	"context"
	"fmt"

	"apartmani/internal/models"

	"github.com/google/uuid"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.Reservation, error)
}

type reservationRepo struct {
	db Database
}

func NewReservationRepository(db Database) ReservationRepository {
	return &reservationRepo{db: db}
}

// Create inserts the reservation. The reservations table carries an exclusion
// constraint on (unit_id, daterange), reported as ErrReservationOverlap.
func (r *reservationRepo) Create(ctx context.Context, reservation *models.Reservation) error {
	query := `
		INSERT INTO reservations (id, unit_id, account_id, date_from, date_to, guest_name, number_of_guests, price, agency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		reservation.ID, reservation.UnitID, reservation.AccountID, reservation.DateFrom, reservation.DateTo,
		reservation.GuestName, reservation.NumberOfGuests, reservation.Price, string(reservation.Agency),
		reservation.CreatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return ErrReservationOverlap
		}
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (r *reservationRepo) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.Reservation, error) {
	query := `
		SELECT id, unit_id, account_id, date_from, date_to, guest_name, number_of_guests, price, agency, created_at
		FROM reservations
		WHERE unit_id = $1
		ORDER BY date_from
	`
	rows, err := r.db.Query(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	reservations := []*models.Reservation{}
	for rows.Next() {
		reservation := &models.Reservation{}
		var agency string
		if err := rows.Scan(&reservation.ID, &reservation.UnitID, &reservation.AccountID, &reservation.DateFrom,
			&reservation.DateTo, &reservation.GuestName, &reservation.NumberOfGuests, &reservation.Price,
			&agency, &reservation.CreatedAt); err != nil {
			return nil, err
		}
		reservation.Agency = models.Agency(agency)
		reservations = append(reservations, reservation)
	}
	return reservations, rows.Err()
}
