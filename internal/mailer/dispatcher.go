package mailer

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	activationSubject    = "Account Activation"
	passwordResetSubject = "Password Reset"
)

var (
	activationTemplate = template.Must(template.New("activation").Parse(`<div>
  <b>Please click below link to activate your account</b>
</div>
<br />
<div>
  <a href="{{.Link}}">Activate</a>
</div>`))

	passwordResetTemplate = template.Must(template.New("reset").Parse(`<div>
  <b>Please click below link to change your password</b>
</div>
<br />
<div>
  <a href="{{.Link}}">Reset your password</a>
</div>`))
)

// Dispatcher sends account emails in the background. Send calls never block
// the caller and never report failure to it; failures are retried a few times
// and then logged.
type Dispatcher struct {
	mailer     Mailer
	baseURL    string
	logger     *slog.Logger
	timeout    time.Duration
	maxRetries uint64

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewDispatcher(mailer Mailer, baseURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		mailer:     mailer,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		timeout:    30 * time.Second,
		maxRetries: 3,
	}
}

func (d *Dispatcher) SendAccountActivation(email, token string) {
	d.dispatch(email, activationSubject, activationTemplate, d.link("/activate", token))
}

func (d *Dispatcher) SendPasswordReset(email, token string) {
	d.dispatch(email, passwordResetSubject, passwordResetTemplate, d.link("/passwordreset", token))
}

func (d *Dispatcher) link(path, token string) string {
	return d.baseURL + path + "?token=" + url.QueryEscape(token)
}

func (d *Dispatcher) dispatch(to, subject string, tmpl *template.Template, link string) {
	var body strings.Builder
	if err := tmpl.Execute(&body, struct{ Link string }{Link: link}); err != nil {
		d.logger.Error("failed to render email", "subject", subject, "error", err)
		return
	}
	msg := &Message{To: to, Subject: subject, HTMLBody: body.String()}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("mail dispatcher closed, dropping email", "subject", subject)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.deliver(msg)
	}()
}

func (d *Dispatcher) deliver(msg *Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	backoff := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := d.mailer.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		// TODO: persist undelivered activation emails so a resend endpoint can replay them.
		d.logger.Error("email delivery failed", "subject", msg.Subject, "error", err)
		return
	}
	d.logger.Debug("email delivered", "subject", msg.Subject)
}

// Close stops accepting new emails and waits for in-flight deliveries or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("mail dispatcher: %w", ctx.Err())
	}
}
