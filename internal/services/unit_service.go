package services

import (
	"context"
	"errors"
	"strings"

	"apartmani/internal/common"
	"apartmani/internal/models"
	"apartmani/internal/repositories"

	"github.com/google/uuid"
)

const minUnitNameLength = 3

// UnitService exposes units to their owners only.
type UnitService interface {
	Create(ctx context.Context, ownerID uuid.UUID, name string) (*models.Unit, error)
	// GetOwned returns the unit when accountID owns it: NotFound when the
	// unit is absent, Forbidden when it belongs to someone else.
	GetOwned(ctx context.Context, accountID, unitID uuid.UUID) (*models.Unit, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]*models.Unit, error)
}

type unitService struct {
	unitRepo repositories.UnitRepository
	clock    Clock
}

func NewUnitService(unitRepo repositories.UnitRepository, clock Clock) UnitService {
	if clock == nil {
		clock = SystemClock
	}
	return &unitService{unitRepo: unitRepo, clock: clock}
}

func (s *unitService) Create(ctx context.Context, ownerID uuid.UUID, name string) (*models.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ValidationError("Please provide unit name")
	}
	if len(name) < minUnitNameLength {
		return nil, common.ValidationError("Unit name must be at least 3 characters long")
	}

	now := s.clock.Now()
	unit := &models.Unit{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, common.InternalError("create unit", err)
	}
	return unit, nil
}

func (s *unitService) GetOwned(ctx context.Context, accountID, unitID uuid.UUID) (*models.Unit, error) {
	unit, err := s.unitRepo.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, common.NotFoundError("Unit does not exist")
		}
		return nil, common.InternalError("find unit", err)
	}
	if !unit.OwnedBy(accountID) {
		return nil, common.ForbiddenError("You do not own this unit")
	}
	return unit, nil
}

func (s *unitService) List(ctx context.Context, ownerID uuid.UUID) ([]*models.Unit, error) {
	units, err := s.unitRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, common.InternalError("list units", err)
	}
	return units, nil
}
