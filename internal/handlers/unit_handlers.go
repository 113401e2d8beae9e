package handlers

import (
	"net/http"

	"apartmani/internal/common"
	"apartmani/internal/models"
	"apartmani/internal/services"

	"github.com/labstack/echo/v4"
)

// UnitHandlers handles unit HTTP requests
type UnitHandlers struct {
	unitService        services.UnitService
	reservationService services.ReservationService
}

// NewUnitHandlers creates a new unit handlers instance
func NewUnitHandlers(unitService services.UnitService, reservationService services.ReservationService) *UnitHandlers {
	return &UnitHandlers{
		unitService:        unitService,
		reservationService: reservationService,
	}
}

// CreateUnitRequest represents the unit creation payload
type CreateUnitRequest struct {
	Name string `json:"name"`
}

// CreateUnit registers a unit owned by the caller
func (h *UnitHandlers) CreateUnit(c echo.Context) error {
	accountID, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req CreateUnitRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	unit, err := h.unitService.Create(c.Request().Context(), accountID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, unit)
}

// ListUnits lists the caller's units
func (h *UnitHandlers) ListUnits(c echo.Context) error {
	accountID, err := currentAccount(c)
	if err != nil {
		return err
	}

	units, err := h.unitService.List(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	if units == nil {
		units = []*models.Unit{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"units": units, "count": len(units)})
}

// GetUnit returns one of the caller's units
func (h *UnitHandlers) GetUnit(c echo.Context) error {
	accountID, err := currentAccount(c)
	if err != nil {
		return err
	}

	unitID, err := common.ValidateUUID(c.Param("id"), "unit id")
	if err != nil {
		return common.ValidationError(err.Error())
	}

	unit, err := h.unitService.GetOwned(c.Request().Context(), accountID, unitID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unit)
}

// ListUnitReservations lists the bookings of one of the caller's units
func (h *UnitHandlers) ListUnitReservations(c echo.Context) error {
	accountID, err := currentAccount(c)
	if err != nil {
		return err
	}

	unitID, err := common.ValidateUUID(c.Param("id"), "unit id")
	if err != nil {
		return common.ValidationError(err.Error())
	}

	reservations, err := h.reservationService.ListForUnit(c.Request().Context(), accountID, unitID)
	if err != nil {
		return err
	}
	if reservations == nil {
		reservations = []*models.Reservation{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"reservations": reservations, "count": len(reservations)})
}
