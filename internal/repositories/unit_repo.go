package repositories

import (
	"context"
	"fmt"

	"apartmani/internal/models"

	"github.com/google/uuid"
)

type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Unit, error)
}

type unitRepo struct {
	db Database
}

func NewUnitRepository(db Database) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) Create(ctx context.Context, unit *models.Unit) error {
	query := `
		INSERT INTO units (id, owner_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
	`
	_, err := r.db.Exec(ctx, query, unit.ID, unit.OwnerID, unit.Name, unit.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create unit: %w", err)
	}
	return nil
}

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	unit := &models.Unit{}
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM units
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&unit.ID, &unit.OwnerID, &unit.Name, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return unit, nil
}

func (r *unitRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Unit, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM units
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	units := []*models.Unit{}
	for rows.Next() {
		unit := &models.Unit{}
		if err := rows.Scan(&unit.ID, &unit.OwnerID, &unit.Name, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}
