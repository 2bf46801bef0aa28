package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LogEntry is a write-once audit record of one notification attempt.
// Entries are appended, never mutated.
type LogEntry struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	EntryID       uuid.UUID
	Kind          string // appointment_available | booking_confirmed | staff_filled

	SMSAttempted bool
	SMSSuccess   bool
	SMSRef       string // provider reference or error text

	EmailAttempted bool
	EmailSuccess   bool
	EmailRef       string

	SentAt time.Time
}

// LogRepository appends and reads notification audit records.
type LogRepository interface {
	Append(ctx context.Context, entry LogEntry) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]LogEntry, error)
}

type PgLogRepository struct {
	pool *pgxpool.Pool
}

func NewPgLogRepository(pool *pgxpool.Pool) *PgLogRepository {
	return &PgLogRepository{pool: pool}
}

func (r *PgLogRepository) Append(ctx context.Context, entry LogEntry) error {
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	sentAt := entry.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications
			(id, appointment_id, entry_id, kind,
			 sms_attempted, sms_success, sms_ref,
			 email_attempted, email_success, email_ref,
			 sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, id, entry.AppointmentID, entry.EntryID, entry.Kind,
		entry.SMSAttempted, entry.SMSSuccess, entry.SMSRef,
		entry.EmailAttempted, entry.EmailSuccess, entry.EmailRef,
		sentAt)
	if err != nil {
		return fmt.Errorf("append notification log: %w", err)
	}
	return nil
}

func (r *PgLogRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]LogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, entry_id, kind,
		       sms_attempted, sms_success, sms_ref,
		       email_attempted, email_success, email_ref,
		       sent_at
		FROM notifications
		WHERE appointment_id = $1
		ORDER BY sent_at
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(
			&e.ID, &e.AppointmentID, &e.EntryID, &e.Kind,
			&e.SMSAttempted, &e.SMSSuccess, &e.SMSRef,
			&e.EmailAttempted, &e.EmailSuccess, &e.EmailRef,
			&e.SentAt,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
