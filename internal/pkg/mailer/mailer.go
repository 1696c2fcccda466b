package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"warranty_shop/internal/pkg/config"
	"warranty_shop/pkg/metrics"
)

// Message is one transactional email. PDF, when set, is attached as a
// policy document.
type Message struct {
	To       string
	ToName   string
	Subject  string
	HTMLBody string
	TextBody string
	PDF      []byte
	PDFName  string
}

// Mailer sends transactional email through SendGrid.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sendGridMailer struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewMailer() Mailer {
	cfg := config.GlobalConfig.SendGrid
	return &sendGridMailer{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) error {
	if m.apiKey == "" {
		return fmt.Errorf("sendgrid api key not configured")
	}

	v3 := mail.NewV3Mail()
	v3.SetFrom(mail.NewEmail(m.fromName, m.fromEmail))
	v3.Subject = msg.Subject

	// Transactional mail: disable subscription tracking, keep the
	// unsubscribe header for deliverability.
	enable := false
	v3.SetTrackingSettings(&mail.TrackingSettings{
		SubscriptionTracking: &mail.SubscriptionTrackingSetting{Enable: &enable},
	})
	v3.SetHeader("List-Unsubscribe", fmt.Sprintf("<mailto:unsubscribe@%s>", domainOf(m.fromEmail)))
	v3.SetHeader("X-Entity-Ref-ID", msg.To)

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail(msg.ToName, msg.To))
	v3.AddPersonalizations(personalization)

	if msg.TextBody != "" {
		v3.AddContent(mail.NewContent("text/plain", msg.TextBody))
	}
	if msg.HTMLBody != "" {
		v3.AddContent(mail.NewContent("text/html", msg.HTMLBody))
	}

	if len(msg.PDF) > 0 {
		name := msg.PDFName
		if name == "" {
			name = "policy.pdf"
		}
		attachment := mail.NewAttachment()
		attachment.SetContent(base64.StdEncoding.EncodeToString(msg.PDF))
		attachment.SetType("application/pdf")
		attachment.SetFilename(name)
		attachment.SetDisposition("attachment")
		v3.AddAttachment(attachment)
	}

	request := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", "https://api.sendgrid.com")
	request.Method = "POST"
	request.Body = mail.GetRequestBody(v3)

	response, err := sendgrid.MakeRequestRetryWithContext(ctx, request)
	if err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("sendgrid", "error").Inc()
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		metrics.Default.OutboundCallsTotal.WithLabelValues("sendgrid", "error").Inc()
		return fmt.Errorf("sendgrid send status %d: %s", response.StatusCode, response.Body)
	}

	metrics.Default.OutboundCallsTotal.WithLabelValues("sendgrid", "ok").Inc()
	return nil
}

func domainOf(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return email
}
