package services

import (
	"crypto/rand"
	"io"
	"time"
)

// Clock supplies the current time. Expiry logic reads time only through it.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// RandomSource is a cryptographically secure byte source for one-shot tokens.
type RandomSource = io.Reader

// SecureRandom is the process CSPRNG.
var SecureRandom RandomSource = rand.Reader
