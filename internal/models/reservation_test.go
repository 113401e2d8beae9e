package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(day int) time.Time {
	return time.Date(2019, time.November, day, 0, 0, 0, 0, time.UTC)
}

func TestReservation_Overlaps(t *testing.T) {
	existing := &Reservation{DateFrom: d(24), DateTo: d(27)}

	tests := []struct {
		name     string
		from, to time.Time
		want     bool
	}{
		{"tail overlap", d(25), d(28), true},
		{"head overlap", d(22), d(25), true},
		{"inside", d(25), d(26), true},
		{"around", d(20), d(30), true},
		{"same range", d(24), d(27), true},
		{"touches check-out", d(27), d(30), false},
		{"touches check-in", d(20), d(24), false},
		{"before", d(1), d(5), false},
		{"after", d(28), d(30), false},
		{"empty inside", d(25), d(25), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, existing.Overlaps(tt.from, tt.to))
		})
	}
}

func TestReservation_OverlapsIsSymmetric(t *testing.T) {
	ranges := [][2]time.Time{
		{d(1), d(3)}, {d(2), d(5)}, {d(3), d(4)}, {d(5), d(5)}, {d(1), d(10)},
	}
	for _, a := range ranges {
		for _, b := range ranges {
			ra := &Reservation{DateFrom: a[0], DateTo: a[1]}
			rb := &Reservation{DateFrom: b[0], DateTo: b[1]}
			assert.Equal(t, ra.Overlaps(b[0], b[1]), rb.Overlaps(a[0], a[1]))
		}
	}
}

func TestAgency_Valid(t *testing.T) {
	for _, a := range []Agency{AgencyBooking, AgencyAirbnb, AgencyExpedia, AgencyPrivate, AgencyOther} {
		assert.True(t, a.Valid(), string(a))
	}
	assert.False(t, Agency("hostelworld").Valid())
	assert.False(t, Agency("").Valid())
}
