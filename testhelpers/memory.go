package testhelpers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"apartmani/internal/models"
	"apartmani/internal/repositories"

	"github.com/google/uuid"
)

func copyAccount(a *models.Account) *models.Account {
	c := *a
	return &c
}

// MemoryAccountRepository is an in-memory repositories.AccountRepository.
type MemoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: map[uuid.UUID]*models.Account{}}
}

func (r *MemoryAccountRepository) find(match func(*models.Account) bool) *models.Account {
	for _, a := range r.accounts {
		if match(a) {
			return a
		}
	}
	return nil
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(func(a *models.Account) bool { return strings.EqualFold(a.Email, account.Email) }) != nil {
		return repositories.ErrDuplicateEmail
	}
	r.accounts[account.ID] = copyAccount(account)
	return nil
}

func (r *MemoryAccountRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyAccount(a), nil
}

func (r *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.find(func(a *models.Account) bool { return a.Email == email })
	if a == nil {
		return nil, repositories.ErrNotFound
	}
	return copyAccount(a), nil
}

func (r *MemoryAccountRepository) GetByPasswordResetToken(_ context.Context, token string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.find(func(a *models.Account) bool {
		return a.PasswordResetToken != nil && *a.PasswordResetToken == token
	})
	if a == nil {
		return nil, repositories.ErrNotFound
	}
	return copyAccount(a), nil
}

func (r *MemoryAccountRepository) Activate(_ context.Context, activationToken string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.find(func(a *models.Account) bool {
		return a.ActivationToken != nil && *a.ActivationToken == activationToken
	})
	if a == nil {
		return nil, repositories.ErrNotFound
	}
	a.Activate()
	return copyAccount(a), nil
}

func (r *MemoryAccountRepository) update(id uuid.UUID, fn func(*models.Account) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || !fn(a) {
		return repositories.ErrNotFound
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryAccountRepository) UpdateUsername(_ context.Context, id uuid.UUID, username string) error {
	return r.update(id, func(a *models.Account) bool {
		a.Username = username
		return true
	})
}

func (r *MemoryAccountRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	return r.update(id, func(a *models.Account) bool {
		a.PasswordHash = passwordHash
		a.PasswordChangedAt = &changedAt
		return true
	})
}

func (r *MemoryAccountRepository) ResetPassword(_ context.Context, id uuid.UUID, resetToken, passwordHash string, changedAt time.Time) error {
	return r.update(id, func(a *models.Account) bool {
		if a.PasswordResetToken == nil || *a.PasswordResetToken != resetToken {
			return false
		}
		a.PasswordHash = passwordHash
		a.PasswordChangedAt = &changedAt
		a.ClearPasswordReset()
		return true
	})
}

func (r *MemoryAccountRepository) SetPasswordReset(_ context.Context, id uuid.UUID, resetToken string, expiresAt time.Time) error {
	return r.update(id, func(a *models.Account) bool {
		a.SetPasswordReset(resetToken, expiresAt)
		return true
	})
}

func (r *MemoryAccountRepository) ClearExpiredPasswordResets(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.accounts {
		if a.PasswordResetExpiresAt != nil && a.PasswordResetExpiresAt.Before(now) {
			a.ClearPasswordReset()
			n++
		}
	}
	return n, nil
}

// Put stores account as-is, bypassing Create.
func (r *MemoryAccountRepository) Put(account *models.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = copyAccount(account)
}

// Delete removes an account, as if it had been deleted by another process.
func (r *MemoryAccountRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
}

// MemoryUnitRepository is an in-memory repositories.UnitRepository.
type MemoryUnitRepository struct {
	mu    sync.Mutex
	units map[uuid.UUID]*models.Unit
}

func NewMemoryUnitRepository() *MemoryUnitRepository {
	return &MemoryUnitRepository{units: map[uuid.UUID]*models.Unit{}}
}

func (r *MemoryUnitRepository) Create(_ context.Context, unit *models.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *unit
	r.units[unit.ID] = &u
	return nil
}

func (r *MemoryUnitRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r *MemoryUnitRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	units := []*models.Unit{}
	for _, u := range r.units {
		if u.OwnerID == ownerID {
			c := *u
			units = append(units, &c)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].CreatedAt.After(units[j].CreatedAt) })
	return units, nil
}

// MemoryReservationRepository is an in-memory repositories.ReservationRepository.
// Unlike the Postgres schema it does not reject overlapping inserts unless
// EnforceExclusion is set, so callers can observe check-then-insert races.
type MemoryReservationRepository struct {
	EnforceExclusion bool
	// ListDelay widens the window between reading and inserting.
	ListDelay time.Duration

	mu           sync.Mutex
	reservations []*models.Reservation
}

func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{}
}

func (r *MemoryReservationRepository) Create(_ context.Context, reservation *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.EnforceExclusion {
		for _, existing := range r.reservations {
			if existing.UnitID == reservation.UnitID && existing.Overlaps(reservation.DateFrom, reservation.DateTo) {
				return repositories.ErrReservationOverlap
			}
		}
	}
	c := *reservation
	r.reservations = append(r.reservations, &c)
	return nil
}

func (r *MemoryReservationRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]*models.Reservation, error) {
	r.mu.Lock()
	list := []*models.Reservation{}
	for _, res := range r.reservations {
		if res.UnitID == unitID {
			c := *res
			list = append(list, &c)
		}
	}
	r.mu.Unlock()

	if r.ListDelay > 0 {
		select {
		case <-time.After(r.ListDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	sort.Slice(list, func(i, j int) bool { return list[i].DateFrom.Before(list[j].DateFrom) })
	return list, nil
}

// Count returns how many reservations are stored for unitID.
func (r *MemoryReservationRepository) Count(unitID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.reservations {
		if res.UnitID == unitID {
			n++
		}
	}
	return n
}

// SentMail is one notification captured by RecordingNotifier.
type SentMail struct {
	Kind  string
	Email string
	Token string
}

// RecordingNotifier captures account notifications instead of mailing them.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []SentMail
}

func (n *RecordingNotifier) SendAccountActivation(email, token string) {
	n.record("activation", email, token)
}

func (n *RecordingNotifier) SendPasswordReset(email, token string) {
	n.record("password_reset", email, token)
}

func (n *RecordingNotifier) record(kind, email, token string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, SentMail{Kind: kind, Email: email, Token: token})
}

// Sent returns the captured notifications in order.
func (n *RecordingNotifier) Sent() []SentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]SentMail(nil), n.sent...)
}

// Last returns the most recent notification of kind.
func (n *RecordingNotifier) Last(kind string) (SentMail, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].Kind == kind {
			return n.sent[i], true
		}
	}
	return SentMail{}, false
}

// ManualClock is a settable clock for expiry tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
