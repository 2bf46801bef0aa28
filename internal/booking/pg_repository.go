package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
)

const tokenColumns = `
	id, token, appointment_id, entry_id, created_at, expires_at, used, used_at, swept`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanToken(row pgx.Row) (*Token, error) {
	var t Token
	var usedAt *time.Time

	err := row.Scan(
		&t.ID,
		&t.Value,
		&t.AppointmentID,
		&t.EntryID,
		&t.CreatedAt,
		&t.ExpiresAt,
		&t.Used,
		&usedAt,
		&t.Swept,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	t.UsedAt = usedAt
	return &t, nil
}

func (r *PgRepository) Create(ctx context.Context, token *Token) (*Token, error) {
	id := token.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO booking_tokens
			(id, token, appointment_id, entry_id, created_at, expires_at, used, swept)
		VALUES ($1, $2, $3, $4, $5, $6, false, false)
		RETURNING `+tokenColumns+`
	`, id, token.Value, token.AppointmentID, token.EntryID, token.CreatedAt, token.ExpiresAt)

	return scanToken(row)
}

func (r *PgRepository) GetByValue(ctx context.Context, value string) (*Token, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+tokenColumns+`
		FROM booking_tokens
		WHERE token = $1
	`, value)
	return scanToken(row)
}

// Redeem runs the check-and-set inside a single transaction: a conditional
// token update, a conditional appointment status update, and the contact
// copy from the winning waitlist entry. Losing any condition rolls the whole
// thing back.
func (r *PgRepository) Redeem(ctx context.Context, value string, now time.Time) (*Redemption, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin redeem tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE booking_tokens
		SET used = true,
		    used_at = $2
		WHERE token = $1
		  AND used = false
		  AND expires_at > $2
		RETURNING `+tokenColumns+`
	`, value, now)

	token, err := scanToken(row)
	if err != nil {
		if !errors.Is(err, ErrTokenInvalid) {
			return nil, fmt.Errorf("redeem token update: %w", err)
		}
		// Precondition failed; classify against the current row.
		return nil, r.classifyFailure(ctx, value, now)
	}

	apptRow := tx.QueryRow(ctx, `
		UPDATE appointments a
		SET status = 'filled',
		    filled_at = $3,
		    filled_by_entry_id = $2,
		    patient_name = w.name,
		    patient_email = w.email,
		    patient_phone = w.phone,
		    updated_at = now()
		FROM waitlist w
		WHERE a.id = $1
		  AND a.status = 'cancelled'
		  AND w.id = $2
		RETURNING a.id, a.date, a.time_of_day, a.doctor, a.specialty, a.status,
		          a.patient_name, a.patient_email, a.patient_phone,
		          a.cancelled_at, a.cancelled_by, a.cancellation_reason,
		          a.filled_at, a.filled_by_entry_id, a.original_patient,
		          a.created_at, a.updated_at
	`, token.AppointmentID, token.EntryID, now)

	appt, err := scanRedeemedAppointment(apptRow)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyFilled
		}
		return nil, fmt.Errorf("redeem appointment update: %w", err)
	}

	entryRow := tx.QueryRow(ctx, `
		SELECT id, name, email, phone, specialty,
		       preferred_dates, time_preferences,
		       active, notified_count, expired_count, booked_count,
		       created_at, updated_at
		FROM waitlist
		WHERE id = $1
	`, token.EntryID)
	entry, err := scanRedeemedEntry(entryRow)
	if err != nil {
		return nil, fmt.Errorf("redeem load entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit redeem tx: %w", err)
	}

	return &Redemption{Token: token, Appointment: appt, Entry: entry}, nil
}

// classifyFailure maps a failed token CAS onto the error taxonomy using a
// fresh read. The distinction matters to the patient: a used or filled link
// is gone; an expired one means wait for the next notification.
func (r *PgRepository) classifyFailure(ctx context.Context, value string, now time.Time) error {
	token, err := r.GetByValue(ctx, value)
	if err != nil {
		return ErrTokenInvalid
	}
	if token.Expired(now) {
		return ErrTokenExpired
	}
	if token.Used {
		return ErrTokenUsed
	}
	return ErrTokenInvalid
}

func (r *PgRepository) FindExpiredUnswept(ctx context.Context, now time.Time) ([]Token, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+tokenColumns+`
		FROM booking_tokens
		WHERE used = false
		  AND swept = false
		  AND expires_at <= $1
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) MarkSwept(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE booking_tokens
		SET swept = true
		WHERE id = $1
		  AND used = false
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenInvalid
	}
	return nil
}

func (r *PgRepository) CountOutstanding(ctx context.Context, appointmentID uuid.UUID, now time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM booking_tokens
		WHERE appointment_id = $1
		  AND used = false
		  AND expires_at > $2
	`, appointmentID, now).Scan(&count)
	return count, err
}

func scanRedeemedAppointment(row pgx.Row) (*appointment.Appointment, error) {
	var a appointment.Appointment
	var cancelledBy, reason, originalPatient *string
	var cancelledAt, filledAt *time.Time
	var filledBy *uuid.UUID

	err := row.Scan(
		&a.ID, &a.Date, &a.TimeOfDay, &a.Doctor, &a.Specialty, &a.Status,
		&a.PatientName, &a.PatientEmail, &a.PatientPhone,
		&cancelledAt, &cancelledBy, &reason,
		&filledAt, &filledBy, &originalPatient,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.CancelledAt = cancelledAt
	a.FilledAt = filledAt
	a.FilledByEntryID = filledBy
	if cancelledBy != nil {
		a.CancelledBy = appointment.Actor(*cancelledBy)
	}
	if reason != nil {
		a.CancellationReason = *reason
	}
	if originalPatient != nil {
		a.OriginalPatient = *originalPatient
	}
	return &a, nil
}

func scanRedeemedEntry(row pgx.Row) (*waitlist.Entry, error) {
	var e waitlist.Entry
	err := row.Scan(
		&e.ID, &e.Name, &e.Email, &e.Phone, &e.Specialty,
		&e.PreferredDates, &e.TimePreferences,
		&e.Active, &e.NotifiedCount, &e.ExpiredCount, &e.BookedCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
