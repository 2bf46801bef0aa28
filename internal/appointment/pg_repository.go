package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const apptColumns = `
	id, date, time_of_day, doctor, specialty, status,
	patient_name, patient_email, patient_phone,
	cancelled_at, cancelled_by, cancellation_reason,
	filled_at, filled_by_entry_id, original_patient,
	created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var cancelledBy, reason, originalPatient *string
	var cancelledAt, filledAt *time.Time
	var filledBy *uuid.UUID

	err := row.Scan(
		&a.ID,
		&a.Date,
		&a.TimeOfDay,
		&a.Doctor,
		&a.Specialty,
		&a.Status,
		&a.PatientName,
		&a.PatientEmail,
		&a.PatientPhone,
		&cancelledAt,
		&cancelledBy,
		&reason,
		&filledAt,
		&filledBy,
		&originalPatient,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	a.CancelledAt = cancelledAt
	a.FilledAt = filledAt
	a.FilledByEntryID = filledBy
	if cancelledBy != nil {
		a.CancelledBy = Actor(*cancelledBy)
	}
	if reason != nil {
		a.CancellationReason = *reason
	}
	if originalPatient != nil {
		a.OriginalPatient = *originalPatient
	}
	return &a, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) Create(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := appt.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	status := appt.Status
	if status == "" {
		status = StatusScheduled
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, date, time_of_day, doctor, specialty, status,
			 patient_name, patient_email, patient_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+apptColumns+`
	`, id, appt.Date, appt.TimeOfDay, appt.Doctor, appt.Specialty, status,
		appt.PatientName, appt.PatientEmail, appt.PatientPhone)

	return scanAppointment(row)
}

func (r *PgRepository) MarkCancelled(ctx context.Context, id uuid.UUID, from Status, meta CancelMeta) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
		    cancelled_at = $3,
		    cancelled_by = $4,
		    cancellation_reason = $5,
		    original_patient = CASE WHEN original_patient IS NULL THEN patient_name ELSE original_patient END,
		    updated_at = now()
		WHERE id = $1
		  AND status = $2
		RETURNING `+apptColumns+`
	`, id, from, meta.CancelledAt, string(meta.CancelledBy), meta.Reason)

	appt, err := scanAppointment(row)
	if errors.Is(err, ErrNotFound) {
		// Distinguish a missing row from a lost CAS race.
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return nil, ErrStatusConflict
		}
		return nil, ErrNotFound
	}
	return appt, err
}

func (r *PgRepository) ListByDateRange(ctx context.Context, start, end string) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE ($1 = '' OR date >= $1)
		  AND ($2 = '' OR date <= $2)
		ORDER BY date, time_of_day
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) ListByStatus(ctx context.Context, status Status) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE status = $1
		ORDER BY date, time_of_day
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
