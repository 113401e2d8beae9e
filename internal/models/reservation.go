package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format used for reservation ranges.
const DateLayout = "2006-01-02"

type Agency string

const (
	AgencyBooking Agency = "booking"
	AgencyAirbnb  Agency = "airbnb"
	AgencyExpedia Agency = "expedia"
	AgencyPrivate Agency = "private"
	AgencyOther   Agency = "other"
)

var agencies = map[Agency]bool{
	AgencyBooking: true, AgencyAirbnb: true, AgencyExpedia: true,
	AgencyPrivate: true, AgencyOther: true,
}

func (a Agency) Valid() bool {
	return agencies[a]
}

// Reservation is a booked [DateFrom, DateTo) range against a unit.
type Reservation struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UnitID         uuid.UUID `json:"unit_id" db:"unit_id"`
	AccountID      uuid.UUID `json:"account_id" db:"account_id"`
	DateFrom       time.Time `json:"date_from" db:"date_from"`
	DateTo         time.Time `json:"date_to" db:"date_to"`
	GuestName      string    `json:"guest_name" db:"guest_name"`
	NumberOfGuests int       `json:"number_of_guests" db:"number_of_guests"`
	Price          float64   `json:"price" db:"price"`
	Agency         Agency    `json:"agency" db:"agency"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Overlaps reports whether r and the half-open range [from, to) share any day.
// Ranges that only touch (r.DateTo == from) do not overlap, and an empty
// range overlaps nothing.
func (r *Reservation) Overlaps(from, to time.Time) bool {
	if !from.Before(to) || !r.DateFrom.Before(r.DateTo) {
		return false
	}
	return r.DateFrom.Before(to) && from.Before(r.DateTo)
}
