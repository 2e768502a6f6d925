package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMailer(send sendFunc) *mailer {
	return &mailer{
		host: "relay.local",
		port: "2525",
		from: "hub@example.com",
		send: send,
		now:  func() time.Time { return time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC) },
	}
}

func TestSendEmail_BuildsMessage(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg string
	m := testMailer(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.Nil(t, a)
		return nil
	})

	require.NoError(t, m.SendEmail(context.Background(), "alice@example.com", "Hi\r\nBcc: x", "Welcome"))

	assert.Equal(t, "relay.local:2525", gotAddr)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Hi  Bcc: x\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nWelcome")
}

func TestSendEmail_WrapsRelayError(t *testing.T) {
	relayErr := errors.New("550 mailbox unavailable")
	m := testMailer(func(string, smtp.Auth, string, []string, []byte) error { return relayErr })

	err := m.SendEmail(context.Background(), "bob@example.com", "s", "b")
	assert.ErrorIs(t, err, relayErr)
}

func TestSendEmail_CancelledContext(t *testing.T) {
	called := false
	m := testMailer(func(string, smtp.Auth, string, []string, []byte) error { called = true; return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.SendEmail(ctx, "a@example.com", "s", "b"), context.Canceled)
	assert.False(t, called)
}
