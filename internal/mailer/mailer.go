// Package mailer delivers account emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 15 * time.Second

// Message is a single outbound HTML email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Mailer sends one message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Timeout bounds a whole SMTP session, from dial to QUIT.
	Timeout time.Duration
}

type smtpMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}
	return &smtpMailer{cfg: cfg}
}

// Send delivers msg within ctx. STARTTLS is used when the relay offers it.
func (m *smtpMailer) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message, err := m.compose(msg)
	if err != nil {
		return err
	}

	options := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(m.cfg.Timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(deadlineDialer(m.cfg.Timeout)),
	}
	if m.cfg.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, options...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("smtp send to %s: %w", net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port)), err)
	}
	return nil
}

func (m *smtpMailer) compose(msg *Message) (*mail.Msg, error) {
	message := mail.NewMsg()
	if err := message.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.cfg.From, err)
	}
	if err := message.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetDate()
	message.SetMessageID()
	message.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return message, nil
}

// deadlineDialer dials with ctx and puts an absolute deadline on the
// connection, so a relay that stops answering cannot hold the session open
// past ctx or timeout.
func deadlineDialer(timeout time.Duration) mail.DialContextFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		var dialer net.Dialer
		conn, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		deadline := time.Now().Add(timeout)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
