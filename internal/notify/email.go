package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

// EmailSender defines the interface for sending emails. Implementations can
// be swapped without changing callers.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) (providerRef string, err error)
}

// EmailMessage represents an email to be sent.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string // plain text body
	HTML    string // optional HTML body
}

// SendGridSender sends emails via the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// NewSendGridSender creates a SendGrid email sender. Returns nil when the
// API key is missing so callers can treat email as unconfigured.
func NewSendGridSender(apiKey, fromEmail, fromName string, logger *logging.Logger) *SendGridSender {
	if apiKey == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}
}

var _ EmailSender = (*SendGridSender)(nil)

func (s *SendGridSender) SendEmail(ctx context.Context, msg EmailMessage) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("notify: sendgrid client not configured")
	}
	if msg.To == "" {
		return "", errors.New("notify: email recipient required")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)

	var message *mail.SGMailV3
	if msg.HTML != "" {
		message = mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.HTML)
	} else {
		message = mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.Body)
	}

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error("sendgrid send failed", "error", err, "to", msg.To)
		return "", fmt.Errorf("notify: sendgrid send: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		s.logger.Error("sendgrid rejected message", "status", response.StatusCode, "to", msg.To)
		return "", fmt.Errorf("notify: sendgrid status %d", response.StatusCode)
	}

	return fmt.Sprintf("sendgrid:%d", response.StatusCode), nil
}
