package mailer

import (
	"bytes"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_Compose(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{From: "Apartmani <no-reply@apartmani.local>"}).(*smtpMailer)

	message, err := m.compose(&Message{To: "ana@example.com", Subject: "Aktivacija računa", HTMLBody: "<b>hi</b>"})
	require.NoError(t, err)

	var raw bytes.Buffer
	_, err = message.WriteTo(&raw)
	require.NoError(t, err)

	head, _, ok := strings.Cut(raw.String(), "\r\n\r\n")
	require.True(t, ok)
	assert.Contains(t, head, "no-reply@apartmani.local")
	assert.Contains(t, head, "To: <ana@example.com>")
	assert.Regexp(t, `(?i)Subject: =\?UTF-8\?[qb]\?`, head)
	assert.NotContains(t, head, "računa")
	assert.Contains(t, head, "Message-ID: <")
	assert.Contains(t, raw.String(), "text/html")
}

func TestSMTPMailer_RejectsInvalidAddresses(t *testing.T) {
	bad := NewSMTPMailer(SMTPConfig{Host: "mail.local", Port: 25, From: "not an address"})
	assert.Error(t, bad.Send(context.Background(), &Message{To: "x@y.z"}))

	good := NewSMTPMailer(SMTPConfig{Host: "mail.local", Port: 25, From: "a@b.c"})
	assert.Error(t, good.Send(context.Background(), &Message{To: "nobody"}))
}

func TestSMTPMailer_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "mail.local", Port: 25, From: "a@b.c"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.Send(ctx, &Message{To: "x@y.z"}), context.Canceled)
}

// silentRelay accepts SMTP connections and never sends a greeting.
func silentRelay(t *testing.T) *net.TCPAddr {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
		done  = make(chan struct{})
	)
	go func() {
		defer close(done)
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		<-done
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			_ = conn.Close()
		}
	})
	return ln.Addr().(*net.TCPAddr)
}

func TestSMTPMailer_StalledRelayHonoursContext(t *testing.T) {
	addr := silentRelay(t)
	m := NewSMTPMailer(SMTPConfig{Host: addr.IP.String(), Port: addr.Port, From: "a@b.c", Timeout: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- m.Send(ctx, &Message{To: "x@y.z", Subject: "s", HTMLBody: "b"}) }()

	select {
	case err := <-result:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("send did not return after its context deadline")
	}
}

func TestSMTPMailer_StalledRelayHonoursTimeout(t *testing.T) {
	addr := silentRelay(t)
	m := NewSMTPMailer(SMTPConfig{Host: addr.IP.String(), Port: addr.Port, From: "a@b.c", Timeout: 200 * time.Millisecond})

	result := make(chan error, 1)
	go func() { result <- m.Send(context.Background(), &Message{To: "x@y.z", Subject: "s", HTMLBody: "b"}) }()

	select {
	case err := <-result:
		assert.Error(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("send did not return after the session timeout")
	}
}
