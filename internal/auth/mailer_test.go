package auth

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_SendVerification(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{
		Host: "smtp.example.com", Port: 587, Username: "bot", Password: "pw", From: "noreply@example.com",
	})

	var (
		gotAddr string
		gotAuth smtp.Auth
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, string(msg)
		return nil
	}

	link := "https://teamkit.test/auth/verify?token=abc"
	require.NoError(t, m.SendVerification(context.Background(), "a@x.com", link))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: noreply@example.com\r\nTo: a@x.com\r\n"))
	assert.Contains(t, gotMsg, link)
}

func TestSMTPMailer_NoAuthWithoutUsername(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25, From: "x@y"})
	var gotAuth smtp.Auth = smtp.PlainAuth("", "sentinel", "", "localhost")
	m.send = func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		gotAuth = a
		return nil
	}

	require.NoError(t, m.SendVerification(context.Background(), "a@x.com", "link"))
	assert.Nil(t, gotAuth)
}

func TestSMTPMailer_WrapsErrors(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: 25})
	boom := errors.New("connection refused")
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := m.SendVerification(context.Background(), "a@x.com", "link")
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.SendVerification(ctx, "a@x.com", "link"), context.Canceled)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{}.SendVerification(context.Background(), "a@x.com", "link"))
}
