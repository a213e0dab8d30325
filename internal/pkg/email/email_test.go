package email

import (
	"errors"
	"net"
	"net/smtp"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	calls int
	addr  string
	to    []string
	msg   string
}

func recorder(c *captured, failures int) sendFunc {
	return func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.calls++
		c.addr = addr
		c.to = to
		c.msg = string(msg)
		if c.calls <= failures {
			return errors.New("smtp unavailable")
		}
		return nil
	}
}

func smtpConfig() config.SMTPConfig {
	return config.SMTPConfig{Host: "smtp.test", Port: 2525, From: "hr@test.io", FromName: "HRMS"}
}

func TestSendOTP_RendersCode(t *testing.T) {
	var c captured
	svc, err := newEmailService(smtpConfig(), recorder(&c, 0), time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP("jane@example.com", "Jane", "123456", 10*time.Minute))

	assert.Equal(t, 1, c.calls)
	assert.Equal(t, "smtp.test:2525", c.addr)
	assert.Equal(t, []string{"jane@example.com"}, c.to)
	assert.Contains(t, c.msg, "Subject: Your verification code")
	assert.Contains(t, c.msg, "123456")
	assert.Contains(t, c.msg, "10 minutes")
}

func TestSendLeaveDecision_IncludesComment(t *testing.T) {
	var c captured
	svc, err := newEmailService(smtpConfig(), recorder(&c, 0), time.Millisecond)
	require.NoError(t, err)

	err = svc.SendLeaveDecision("jane@example.com", LeaveDecisionData{
		EmployeeName: "Jane",
		LeaveType:    "paid",
		StartDate:    "2026-01-10",
		EndDate:      "2026-01-12",
		Duration:     3,
		Status:       "approved",
		Comment:      "Enjoy",
	})
	require.NoError(t, err)
	assert.Contains(t, c.msg, "Your leave request was approved")
	assert.Contains(t, c.msg, "Enjoy")
}

func TestSend_RetriesThenSucceeds(t *testing.T) {
	var c captured
	svc, err := newEmailService(smtpConfig(), recorder(&c, 2), time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, svc.SendAccountCreated("jane@example.com", "Jane", "http://localhost:3000/login"))
	assert.Equal(t, 3, c.calls)
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	var c captured
	svc, err := newEmailService(smtpConfig(), recorder(&c, 10), time.Millisecond)
	require.NoError(t, err)

	err = svc.SendOTP("jane@example.com", "Jane", "123456", 10*time.Minute)
	assert.Error(t, err)
	assert.Equal(t, maxRetries, c.calls)
}

func TestSend_SkippedWithoutHost(t *testing.T) {
	var c captured
	svc, err := newEmailService(config.SMTPConfig{}, recorder(&c, 0), time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, svc.SendOTP("jane@example.com", "Jane", "123456", 10*time.Minute))
	assert.Zero(t, c.calls)
}

func TestDialSender_TimesOutOnSilentServer(t *testing.T) {
	// Accepts connections but never sends the SMTP greeting.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan struct{})
	t.Cleanup(func() {
		close(done)
		ln.Close()
	})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		<-done
		conn.Close()
	}()

	send := dialSender(100 * time.Millisecond)
	start := time.Now()
	err = send(ln.Addr().String(), nil, "hr@test.io", []string{"jane@example.com"}, []byte("hello"))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
