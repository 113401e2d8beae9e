package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"apartmani/internal/caching"
	"apartmani/internal/common"
	"apartmani/internal/metrics"
	"apartmani/internal/models"
	"apartmani/internal/repositories"

	"github.com/google/uuid"
)

// CreateReservationRequest carries the candidate booking. Pointer fields
// distinguish "absent" from zero values.
type CreateReservationRequest struct {
	UnitID         uuid.UUID
	DateFrom       *time.Time
	DateTo         *time.Time
	GuestName      string
	NumberOfGuests *int
	Price          *float64
	Agency         models.Agency
}

// ReservationService creates bookings that never overlap on the same unit.
type ReservationService interface {
	Create(ctx context.Context, accountID uuid.UUID, req *CreateReservationRequest) (*models.Reservation, error)
	ListForUnit(ctx context.Context, accountID, unitID uuid.UUID) ([]*models.Reservation, error)
}

type reservationService struct {
	reservationRepo repositories.ReservationRepository
	units           UnitService
	locker          caching.Locker
	clock           Clock
	logger          *slog.Logger
}

func NewReservationService(
	reservationRepo repositories.ReservationRepository,
	units UnitService,
	locker caching.Locker,
	clock Clock,
	logger *slog.Logger,
) ReservationService {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &reservationService{
		reservationRepo: reservationRepo,
		units:           units,
		locker:          locker,
		clock:           clock,
		logger:          logger,
	}
}

func validateReservationRequest(req *CreateReservationRequest) error {
	if req.UnitID == uuid.Nil {
		return common.MalformedRequestError("Please provide unit")
	}
	if req.DateFrom == nil || req.DateTo == nil || req.GuestName == "" ||
		req.NumberOfGuests == nil || req.Price == nil || req.Agency == "" {
		return common.ValidationError("Please fill all required fields")
	}
	if req.DateTo.Before(*req.DateFrom) {
		return common.ValidationError("Reservation can not end before it started")
	}
	if *req.NumberOfGuests < 1 {
		return common.ValidationError("Number of guests must be at least 1")
	}
	if *req.Price < 0 {
		return common.ValidationError("Price can not be negative")
	}
	if !req.Agency.Valid() {
		return common.ValidationError("Agency must be one of booking, airbnb, expedia, private, other")
	}
	return nil
}

func (s *reservationService) Create(ctx context.Context, accountID uuid.UUID, req *CreateReservationRequest) (reservation *models.Reservation, err error) {
	defer func() { metrics.ObserveReservationAttempt(err) }()

	if err := validateReservationRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.units.GetOwned(ctx, accountID, req.UnitID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, "unit:"+req.UnitID.String())
	if err != nil {
		if errors.Is(err, caching.ErrLockNotAcquired) {
			return nil, common.ConflictError("Unit is being booked, please try again")
		}
		return nil, common.InternalError("lock unit", err)
	}
	defer unlock()

	existing, err := s.reservationRepo.ListByUnit(ctx, req.UnitID)
	if err != nil {
		return nil, common.InternalError("list reservations", err)
	}

	from, to := *req.DateFrom, *req.DateTo
	for _, r := range existing {
		if r.Overlaps(from, to) {
			return nil, common.ConflictError("Existing reservation is overlapping!")
		}
	}

	reservation = &models.Reservation{
		ID:             uuid.New(),
		UnitID:         req.UnitID,
		AccountID:      accountID,
		DateFrom:       from,
		DateTo:         to,
		GuestName:      req.GuestName,
		NumberOfGuests: *req.NumberOfGuests,
		Price:          *req.Price,
		Agency:         req.Agency,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		if errors.Is(err, repositories.ErrReservationOverlap) {
			return nil, common.ConflictError("Existing reservation is overlapping!")
		}
		return nil, common.InternalError("create reservation", err)
	}

	s.logger.InfoContext(ctx, "reservation created",
		"reservation_id", reservation.ID, "unit_id", reservation.UnitID)
	return reservation, nil
}

func (s *reservationService) ListForUnit(ctx context.Context, accountID, unitID uuid.UUID) ([]*models.Reservation, error) {
	if _, err := s.units.GetOwned(ctx, accountID, unitID); err != nil {
		return nil, err
	}
	reservations, err := s.reservationRepo.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, common.InternalError("list reservations", err)
	}
	return reservations, nil
}
