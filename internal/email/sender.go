// Package email delivers the scheduled leak digest over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

const subjectDigestFmt = "Pipeline health %d/100: %d leaks worth $%.0f"

// Sender delivers digest emails.
type Sender interface {
	SendLeakDigest(ctx context.Context, toEmail string, report domain.FullReport) error
}

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSender builds a Sender from configuration. Returns nil when email
// delivery is disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return nil
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

// SendLeakDigest renders and delivers the digest for one analysis report.
func (s *SMTPSender) SendLeakDigest(ctx context.Context, toEmail string, report domain.FullReport) error {
	content, err := renderDigest(report)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectDigestFmt,
		report.HealthScore, report.Leaks.Summary.Total, report.Leaks.Summary.TotalEstimatedRevenue)
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// renderDigest is split out so tests can exercise the template without SMTP.
func renderDigest(report domain.FullReport) (string, error) {
	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, newDigestData(report)); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return buf.String(), nil
}
