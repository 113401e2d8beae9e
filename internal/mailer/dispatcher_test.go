package mailer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeMailer struct {
	mu       sync.Mutex
	failures int
	calls    int
	sent     []*Message
	block    chan struct{}
}

func (f *fakeMailer) Send(ctx context.Context, msg *Message) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) messages() []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Message(nil), f.sent...)
}

func newTestDispatcher(m Mailer) *Dispatcher {
	return NewDispatcher(m, "http://localhost:3000/", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDispatcher_ActivationEmail(t *testing.T) {
	fake := &fakeMailer{}
	d := newTestDispatcher(fake)

	d.SendAccountActivation("ana@example.com", "abc123")
	require.NoError(t, d.Close(context.Background()))

	sent := fake.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ana@example.com", sent[0].To)
	assert.Equal(t, "Account Activation", sent[0].Subject)
	assert.Contains(t, sent[0].HTMLBody, `href="http://localhost:3000/activate?token=abc123"`)
}

func TestDispatcher_PasswordResetEmail(t *testing.T) {
	fake := &fakeMailer{}
	d := newTestDispatcher(fake)

	d.SendPasswordReset("ana@example.com", "a b&c")
	require.NoError(t, d.Close(context.Background()))

	sent := fake.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Password Reset", sent[0].Subject)
	assert.Contains(t, sent[0].HTMLBody, "http://localhost:3000/passwordreset?token=")
	assert.Contains(t, sent[0].HTMLBody, "b%26c")
}

func TestDispatcher_RetriesTransientFailures(t *testing.T) {
	fake := &fakeMailer{failures: 2}
	d := newTestDispatcher(fake)

	d.SendAccountActivation("ana@example.com", "tok")
	require.NoError(t, d.Close(context.Background()))

	assert.Len(t, fake.messages(), 1)
	assert.Equal(t, 3, fake.calls)
}

func TestDispatcher_GivesUpAfterRetryBudget(t *testing.T) {
	fake := &fakeMailer{failures: 100}
	d := newTestDispatcher(fake)
	d.maxRetries = 1

	d.SendAccountActivation("ana@example.com", "tok")
	require.NoError(t, d.Close(context.Background()))

	assert.Empty(t, fake.messages())
	assert.Equal(t, 2, fake.calls)
}

func TestDispatcher_DropsAfterClose(t *testing.T) {
	fake := &fakeMailer{}
	d := newTestDispatcher(fake)
	require.NoError(t, d.Close(context.Background()))

	d.SendAccountActivation("ana@example.com", "tok")

	assert.Empty(t, fake.messages())
}

func TestDispatcher_CloseHonoursContext(t *testing.T) {
	fake := &fakeMailer{block: make(chan struct{})}
	d := newTestDispatcher(fake)
	d.SendAccountActivation("ana@example.com", "tok")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(fake.block)
	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, fake.messages(), 1)
}
