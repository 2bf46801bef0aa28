package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

// SMSSender sends a single SMS. Retry and failover live behind this
// interface; callers issue exactly one Send per candidate.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (providerRef string, err error)
}

// TwilioSender posts SMS messages using Twilio's REST API.
type TwilioSender struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTwilioSender builds a sender with sane defaults. Returns nil when
// credentials are missing so callers can treat SMS as unconfigured.
func NewTwilioSender(accountSID, authToken, from string, logger *logging.Logger) *TwilioSender {
	if accountSID == "" || authToken == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TwilioSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

var _ SMSSender = (*TwilioSender)(nil)

const smsMaxLength = 160

// SendSMS dispatches a single SMS, retrying transient failures.
func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	if to == "" {
		return "", errors.New("notify: sms recipient required")
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("notify: sms body required")
	}
	if len(body) > smsMaxLength {
		body = body[:smsMaxLength-3] + "..."
	}

	payload := url.Values{}
	payload.Set("To", to)
	payload.Set("From", s.from)
	payload.Set("Body", body)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.accountSID)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(payload.Encode()))
		if err != nil {
			return "", err
		}
		req.SetBasicAuth(s.accountSID, s.authToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		ref, err := decodeTwilioResponse(resp)
		if err == nil {
			return ref, nil
		}
		lastErr = err
		if resp.StatusCode < 500 {
			break
		}
	}

	s.logger.Error("twilio send failed", "to", to, "error", lastErr)
	return "", fmt.Errorf("notify: twilio send: %w", lastErr)
}

func decodeTwilioResponse(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var body struct {
		Sid string `json:"sid"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("decode twilio response: %w", err)
	}
	return body.Sid, nil
}
