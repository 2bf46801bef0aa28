package waitlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `
	id, name, email, phone, specialty,
	preferred_dates, time_preferences,
	active, notified_count, expired_count, booked_count,
	created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry

	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Email,
		&e.Phone,
		&e.Specialty,
		&e.PreferredDates,
		&e.TimePreferences,
		&e.Active,
		&e.NotifiedCount,
		&e.ExpiredCount,
		&e.BookedCount,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *PgRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM waitlist
		WHERE id = $1
	`, id)
	return scanEntry(row)
}

func (r *PgRepository) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO waitlist
			(id, name, email, phone, specialty,
			 preferred_dates, time_preferences,
			 active, notified_count, expired_count, booked_count,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, 0, 0, $8, now(), now())
		RETURNING `+entryColumns+`
	`, id, entry.Name, entry.Email, entry.Phone, entry.Specialty,
		entry.PreferredDates, entry.TimePreferences, entry.BookedCount)

	return scanEntry(row)
}

func (r *PgRepository) ListActiveBySpecialty(ctx context.Context, specialty string) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM waitlist
		WHERE active = true
		  AND specialty = $1
		ORDER BY created_at
	`, specialty)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) CountActiveByEmail(ctx context.Context, email string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM waitlist
		WHERE active = true
		  AND email = $1
	`, email).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active entries: %w", err)
	}
	return count, nil
}

func (r *PgRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE waitlist
		SET active = false,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *PgRepository) IncrementNotified(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "notified_count")
}

func (r *PgRepository) IncrementExpired(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "expired_count")
}

func (r *PgRepository) RecordBooking(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "booked_count")
}

func (r *PgRepository) increment(ctx context.Context, id uuid.UUID, column string) error {
	// column is one of three fixed names, never user input.
	tag, err := r.pool.Exec(ctx, `
		UPDATE waitlist
		SET `+column+` = `+column+` + 1,
		    updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}
