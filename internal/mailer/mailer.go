package mailer

import (
	"fmt"

	"github.com/dotwork/testadmin-service/internal/utils"
	"gopkg.in/gomail.v2"
)

// Mailer delivers transactional mail. Implementations must be safe
// for concurrent use.
type Mailer interface {
	SendInvite(to, candidateName, testName, inviteURL, deadline string) error
	SendOTP(to, candidateName, code string) error
}

// SMTPMailer sends mail over SMTP via gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger utils.Logger
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func NewSMTPMailer(cfg SMTPConfig, logger utils.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *SMTPMailer) SendInvite(to, candidateName, testName, inviteURL, deadline string) error {
	body := renderTemplate(inviteTemplate, map[string]string{
		"name":     candidateName,
		"testName": testName,
		"link":     inviteURL,
		"deadline": deadline,
	})
	return m.send(to, fmt.Sprintf("You are invited to take %s", testName), body)
}

func (m *SMTPMailer) SendOTP(to, candidateName, code string) error {
	body := renderTemplate(otpTemplate, map[string]string{
		"name": candidateName,
		"code": code,
	})
	return m.send(to, "Your verification code", body)
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	m.logger.Info("Email sent", "to", to, "subject", subject)
	return nil
}
