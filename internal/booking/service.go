package booking

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	metrics "github.com/cancelfillmd/waitlist-recovery/internal/observability/metrics"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

// ConfirmationNotifier delivers post-fill confirmations. Implementations
// are best-effort; delivery failures never undo a fill.
type ConfirmationNotifier interface {
	BookingConfirmed(ctx context.Context, entry *waitlist.Entry, appt *appointment.Appointment)
	StaffSlotFilled(ctx context.Context, entry *waitlist.Entry, appt *appointment.Appointment)
}

// Service issues and redeems booking tokens.
type Service struct {
	tokens   Repository
	entries  waitlist.Repository
	notifier ConfirmationNotifier
	metrics  *metrics.FillMetrics
	expiry   time.Duration
	baseURL  string
	logger   *logging.Logger
}

func NewService(tokens Repository, entries waitlist.Repository, notifier ConfirmationNotifier, m *metrics.FillMetrics, expiry time.Duration, baseURL string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if expiry <= 0 {
		expiry = 2 * time.Hour
	}
	return &Service{
		tokens:   tokens,
		entries:  entries,
		notifier: notifier,
		metrics:  m,
		expiry:   expiry,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// Issue mints a token binding one (appointment, waitlist entry) pair and
// returns it with the booking link to embed in notifications.
func (s *Service) Issue(ctx context.Context, appointmentID, entryID uuid.UUID, now time.Time) (*Token, string, error) {
	token, err := s.tokens.Create(ctx, &Token{
		Value:         uuid.NewString(),
		AppointmentID: appointmentID,
		EntryID:       entryID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.expiry),
	})
	if err != nil {
		return nil, "", fmt.Errorf("issue booking token: %w", err)
	}
	return token, s.Link(token), nil
}

// Link renders the booking URL for a token.
func (s *Service) Link(token *Token) string {
	return fmt.Sprintf("%s/booking?token=%s", s.baseURL, url.QueryEscape(token.Value))
}

// Redeem attempts to claim the appointment bound to the token. Exactly one
// redemption can win per cancelled slot; all others receive a deterministic
// sentinel error (ErrTokenInvalid, ErrTokenExpired, ErrTokenUsed,
// ErrAlreadyFilled). On success the winning entry is retired from the
// waitlist and confirmations go out best-effort.
func (s *Service) Redeem(ctx context.Context, value string, now time.Time) (*Redemption, error) {
	red, err := s.tokens.Redeem(ctx, value, now)
	if err != nil {
		s.metrics.ObserveRedemption(outcomeLabel(err))
		return nil, err
	}
	s.metrics.ObserveRedemption("filled")

	// Post-fill bookkeeping. The fill itself is committed; these are
	// logged on failure but not rolled back.
	if err := s.entries.Deactivate(ctx, red.Entry.ID); err != nil {
		s.logger.Error("deactivate winning entry failed", "entry_id", red.Entry.ID, "error", err)
	}
	if err := s.entries.RecordBooking(ctx, red.Entry.ID); err != nil {
		s.logger.Error("record booking failed", "entry_id", red.Entry.ID, "error", err)
	}

	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, red.Entry, red.Appointment)
		s.notifier.StaffSlotFilled(ctx, red.Entry, red.Appointment)
	}

	s.logger.Info("appointment filled",
		"appointment_id", red.Appointment.ID,
		"entry_id", red.Entry.ID,
		"token_id", red.Token.ID,
	)
	return red, nil
}

// SweepExpired counts expired unused tokens into the waitlist expiry
// statistics. Called periodically by the expiry worker. Expired tokens
// already fail redemption on their own; the sweep only feeds analytics.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.tokens.FindExpiredUnswept(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("find expired tokens: %w", err)
	}

	swept := 0
	for _, t := range expired {
		if err := s.tokens.MarkSwept(ctx, t.ID); err != nil {
			s.logger.Error("mark token swept failed", "token_id", t.ID, "error", err)
			continue
		}
		if err := s.entries.IncrementExpired(ctx, t.EntryID); err != nil {
			s.logger.Error("increment expired count failed", "entry_id", t.EntryID, "error", err)
		}
		s.metrics.ObserveTokenExpired()
		swept++
	}
	return swept, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenUsed):
		return "used"
	case errors.Is(err, ErrAlreadyFilled):
		return "already_filled"
	case errors.Is(err, ErrTokenInvalid):
		return "invalid"
	default:
		return "error"
	}
}
