// Package fill sequences the cancellation-fill workflow:
// cancel -> match -> notify -> first-to-book-wins.
package fill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/booking"
	"github.com/cancelfillmd/waitlist-recovery/internal/matcher"
	"github.com/cancelfillmd/waitlist-recovery/internal/notify"
	metrics "github.com/cancelfillmd/waitlist-recovery/internal/observability/metrics"
	redisclient "github.com/cancelfillmd/waitlist-recovery/internal/redis"
	"github.com/cancelfillmd/waitlist-recovery/internal/validate"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

var (
	// ErrNotCancellable means the appointment is not in a status that can
	// transition to cancelled.
	ErrNotCancellable = errors.New("appointment cannot be cancelled from its current status")
	// ErrCancelInProgress means another cancellation round holds the
	// appointment lock; the caller should retry.
	ErrCancelInProgress = errors.New("appointment is being cancelled, please retry")
	// ErrTooLateToCancel means a patient self-cancellation is inside the
	// minimum notice window.
	ErrTooLateToCancel = errors.New("cancellation is inside the minimum notice window")
)

// TokenIssuer mints booking tokens for notified candidates.
type TokenIssuer interface {
	Issue(ctx context.Context, appointmentID, entryID uuid.UUID, now time.Time) (*booking.Token, string, error)
}

// Notifier dispatches the slot-available notification for one candidate.
type Notifier interface {
	AppointmentAvailable(ctx context.Context, entry *waitlist.Entry, appt *appointment.Appointment, link string) notify.ChannelResult
}

// CancelRequest describes one cancellation action.
type CancelRequest struct {
	AppointmentID  uuid.UUID
	Actor          appointment.Actor
	Reason         string
	NotifyWaitlist bool
}

// NotifiedCandidate records one dispatch outcome, in rank order.
type NotifiedCandidate struct {
	Entry     waitlist.Entry
	Score     float64
	Link      string
	Delivered bool
}

// CancelResult summarizes a cancellation round.
type CancelResult struct {
	Appointment *appointment.Appointment
	Candidates  []NotifiedCandidate
	Notified    int // candidates with at least one successful channel
}

// Orchestrator owns appointment status transitions triggered by
// cancellation events.
type Orchestrator struct {
	appointments appointment.Repository
	entries      waitlist.Repository
	issuer       TokenIssuer
	notifier     Notifier
	locker       redisclient.Locker
	metrics      *metrics.FillMetrics
	matching     matcher.Config
	minNotice    time.Duration
	logger       *logging.Logger
}

func NewOrchestrator(
	appointments appointment.Repository,
	entries waitlist.Repository,
	issuer TokenIssuer,
	notifier Notifier,
	locker redisclient.Locker,
	m *metrics.FillMetrics,
	matching matcher.Config,
	minNotice time.Duration,
	logger *logging.Logger,
) (*Orchestrator, error) {
	if err := matching.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		appointments: appointments,
		entries:      entries,
		issuer:       issuer,
		notifier:     notifier,
		locker:       locker,
		metrics:      m,
		matching:     matching,
		minNotice:    minNotice,
		logger:       logger,
	}, nil
}

// Cancel transitions the appointment to cancelled and, when requested, runs
// the match-and-notify round. The round is serialized per appointment via
// the redis lock; individual channel failures are logged and never stop the
// loop over remaining candidates.
func (o *Orchestrator) Cancel(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	now := time.Now()

	reason, err := validate.CancellationReason(req.Reason, false)
	if err != nil {
		return nil, err
	}

	appt, err := o.appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if !appointment.CanTransition(appt.Status, appointment.StatusCancelled) {
		return nil, ErrNotCancellable
	}

	// Patients must respect the notice window; staff may cancel any time.
	if req.Actor == appointment.ActorPatient {
		startsAt, err := appt.StartsAt()
		if err == nil {
			if winErr := validate.CancellationWindow(startsAt, now, o.minNotice); winErr != nil {
				return nil, ErrTooLateToCancel
			}
		}
	}

	var result *CancelResult
	err = o.locker.WithAppointmentLock(ctx, req.AppointmentID, func(lockCtx context.Context) error {
		cancelled, err := o.appointments.MarkCancelled(lockCtx, req.AppointmentID, appt.Status, appointment.CancelMeta{
			CancelledAt: now,
			CancelledBy: req.Actor,
			Reason:      reason,
		})
		if err != nil {
			if errors.Is(err, appointment.ErrStatusConflict) {
				return ErrNotCancellable
			}
			return fmt.Errorf("mark cancelled: %w", err)
		}

		o.metrics.ObserveCancellation(string(req.Actor))
		o.logger.Info("appointment cancelled",
			"appointment_id", cancelled.ID,
			"actor", req.Actor,
			"specialty", cancelled.Specialty,
			"date", cancelled.Date,
		)

		result = &CancelResult{Appointment: cancelled}
		if !req.NotifyWaitlist {
			return nil
		}

		candidates, err := o.notifyRound(lockCtx, cancelled, now)
		if err != nil {
			return err
		}
		result.Candidates = candidates
		for _, c := range candidates {
			if c.Delivered {
				result.Notified++
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrCancelInProgress
		}
		return nil, err
	}

	return result, nil
}

// notifyRound ranks the active waitlist for the freed slot and dispatches
// notifications in rank order, minting one booking token per candidate.
func (o *Orchestrator) notifyRound(ctx context.Context, appt *appointment.Appointment, now time.Time) ([]NotifiedCandidate, error) {
	entries, err := o.entries.ListActiveBySpecialty(ctx, appt.Specialty)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}

	ranked := matcher.Rank(appt, entries, now, o.matching)
	if len(ranked) == 0 {
		o.logger.Info("no eligible waitlist candidates",
			"appointment_id", appt.ID,
			"specialty", appt.Specialty,
		)
		return nil, nil
	}

	candidates := make([]NotifiedCandidate, 0, len(ranked))
	for _, c := range ranked {
		entry := c.Entry

		_, link, err := o.issuer.Issue(ctx, appt.ID, entry.ID, now)
		if err != nil {
			// Token minting failure for one candidate does not block
			// the rest of the ranked list.
			o.logger.Error("token issue failed", "entry_id", entry.ID, "error", err)
			candidates = append(candidates, NotifiedCandidate{Entry: entry, Score: c.Score})
			continue
		}

		res := o.notifier.AppointmentAvailable(ctx, &entry, appt, link)
		if res.SMSAttempted {
			o.metrics.ObserveNotification("sms", res.SMSSuccess)
		}
		if res.EmailAttempted {
			o.metrics.ObserveNotification("email", res.EmailSuccess)
		}

		if err := o.entries.IncrementNotified(ctx, entry.ID); err != nil {
			o.logger.Error("increment notified failed", "entry_id", entry.ID, "error", err)
		}

		candidates = append(candidates, NotifiedCandidate{
			Entry:     entry,
			Score:     c.Score,
			Link:      link,
			Delivered: res.Delivered(),
		})
	}

	o.logger.Info("waitlist notified",
		"appointment_id", appt.ID,
		"candidates", len(candidates),
	)
	return candidates, nil
}
