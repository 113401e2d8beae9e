package handlers

import (
	"net/http"
	"strings"
	"time"

	"apartmani/internal/common"
	"apartmani/internal/models"
	"apartmani/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReservationHandlers handles reservation HTTP requests
type ReservationHandlers struct {
	reservationService services.ReservationService
}

// NewReservationHandlers creates a new reservation handlers instance
func NewReservationHandlers(reservationService services.ReservationService) *ReservationHandlers {
	return &ReservationHandlers{reservationService: reservationService}
}

// CreateReservationRequest represents the reservation creation payload
type CreateReservationRequest struct {
	UnitID         string   `json:"unitId"`
	DateFrom       string   `json:"dateFrom"`
	DateTo         string   `json:"dateTo"`
	GuestName      string   `json:"guestName"`
	NumberOfGuests *int     `json:"numberOfGuests"`
	Price          *float64 `json:"price"`
	Agency         string   `json:"agency"`
}

func optionalDate(value, field string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	date, err := common.ParseDate(value, field)
	if err != nil {
		return nil, common.ValidationError(err.Error())
	}
	return &date, nil
}

func (r *CreateReservationRequest) toServiceRequest() (*services.CreateReservationRequest, error) {
	req := &services.CreateReservationRequest{
		GuestName:      strings.TrimSpace(r.GuestName),
		NumberOfGuests: r.NumberOfGuests,
		Price:          r.Price,
		Agency:         models.Agency(strings.ToLower(strings.TrimSpace(r.Agency))),
	}

	if strings.TrimSpace(r.UnitID) == "" {
		return nil, common.MalformedRequestError("Please provide unit")
	}
	unitID, err := uuid.Parse(strings.TrimSpace(r.UnitID))
	if err != nil || unitID == uuid.Nil {
		return nil, common.MalformedRequestError("Unit id is not valid")
	}
	req.UnitID = unitID

	if req.DateFrom, err = optionalDate(r.DateFrom, "dateFrom"); err != nil {
		return nil, err
	}
	if req.DateTo, err = optionalDate(r.DateTo, "dateTo"); err != nil {
		return nil, err
	}
	return req, nil
}

// CreateReservation books a date range on one of the caller's units
func (h *ReservationHandlers) CreateReservation(c echo.Context) error {
	accountID, err := currentAccount(c)
	if err != nil {
		return err
	}

	var body CreateReservationRequest
	if err := c.Bind(&body); err != nil {
		return bindError()
	}

	req, err := body.toServiceRequest()
	if err != nil {
		return err
	}

	reservation, err := h.reservationService.Create(c.Request().Context(), accountID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, reservation)
}

// NotImplemented answers the reservation read, update and delete routes.
func (h *ReservationHandlers) NotImplemented(c echo.Context) error {
	return echo.NewHTTPError(http.StatusNotImplemented, "This route is not yet defined!")
}
