package email

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	maxRetries         = 3
	defaultSendTimeout = 10 * time.Second
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendOTP(to, name, code string, validFor time.Duration) error
	SendLeaveDecision(to string, data LeaveDecisionData) error
	SendAccountCreated(to, name, loginURL string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return newEmailService(cfg, dialSender(timeout), time.Second)
}

// dialSender is smtp.SendMail with the dial and the whole SMTP exchange
// bounded by timeout.
func dialSender(timeout time.Duration) sendFunc {
	return func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return err
		}
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			conn.Close()
			return err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			conn.Close()
			return err
		}
		c, err := smtp.NewClient(conn, host)
		if err != nil {
			conn.Close()
			return err
		}
		defer c.Close()

		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if a != nil {
			if ok, _ := c.Extension("AUTH"); !ok {
				return fmt.Errorf("smtp: server doesn't support AUTH")
			}
			if err := c.Auth(a); err != nil {
				return err
			}
		}
		if err := c.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := c.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := c.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(msg); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		return c.Quit()
	}
}

func newEmailService(cfg config.SMTPConfig, send sendFunc, backoff time.Duration) (*emailServiceImpl, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      send,
		backoff:   backoff,
	}, nil
}

type otpEmailData struct {
	Name    string
	Code    string
	Minutes int
}

// SendOTP sends the registration verification code
func (s *emailServiceImpl) SendOTP(to, name, code string, validFor time.Duration) error {
	body, err := s.render("otp.html", otpEmailData{
		Name:    name,
		Code:    code,
		Minutes: int(validFor.Minutes()),
	})
	if err != nil {
		return err
	}
	return s.sendHTML(to, "Your verification code", body)
}

// LeaveDecisionData fills the leave decision template.
type LeaveDecisionData struct {
	EmployeeName string
	LeaveType    string
	StartDate    string
	EndDate      string
	Duration     int
	Status       string
	Comment      string
}

func (s *emailServiceImpl) SendLeaveDecision(to string, data LeaveDecisionData) error {
	body, err := s.render("leave_decision.html", data)
	if err != nil {
		return err
	}
	return s.sendHTML(to, fmt.Sprintf("Your leave request was %s", data.Status), body)
}

type accountCreatedData struct {
	Name     string
	Email    string
	LoginURL string
}

func (s *emailServiceImpl) SendAccountCreated(to, name, loginURL string) error {
	body, err := s.render("account_created.html", accountCreatedData{
		Name:     name,
		Email:    to,
		LoginURL: loginURL,
	})
	if err != nil {
		return err
	}
	return s.sendHTML(to, "Your HRMS account is ready", body)
}

func (s *emailServiceImpl) render(name string, data any) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return body.String(), nil
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1x, 2x, 4x
		if attempt < maxRetries {
			time.Sleep(s.backoff * time.Duration(1<<(attempt-1)))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
