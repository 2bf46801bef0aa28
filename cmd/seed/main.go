package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cancelfillmd/waitlist-recovery/internal/db"
	"github.com/cancelfillmd/waitlist-recovery/internal/validate"
)

var specialties = []string{
	"Dermatology",
	"Rheumatology",
	"Cardiology",
	"Orthopedics",
	"General Practice",
	"Dentistry",
}

var timePreferenceSets = [][]string{
	{"morning"},
	{"afternoon"},
	{"evening"},
	{"morning", "afternoon"},
	{"any"},
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedWaitlist(context.Background(), pool, 200); err != nil {
		log.Fatalf("seed waitlist: %v", err)
	}
	if err := seedAppointments(context.Background(), pool, 400); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedWaitlist(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d waitlist entries", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		email := gofakeit.Email()
		phone := gofakeit.Numerify("(###) ###-####")
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		dates := make([]string, gofakeit.Number(1, 4))
		for j := range dates {
			dates[j] = time.Now().AddDate(0, 0, gofakeit.Number(1, 30)).Format(validate.DateLayout)
		}
		prefs := timePreferenceSets[gofakeit.Number(0, len(timePreferenceSets)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO waitlist
				(id, name, email, phone, specialty,
				 preferred_dates, time_preferences,
				 active, notified_count, expired_count, booked_count,
				 created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, 0, $9, now() - ($10 || ' days')::interval, now())
		`, id, name, email, phone, spec, dates, prefs,
			gofakeit.Number(0, 3), gofakeit.Number(0, 8), gofakeit.Number(0, 21))
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("waitlist seeded")
	return nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d appointments", count)

	// Clinic slot times, minutes since midnight, 8:00 AM to 4:30 PM.
	var slotTimes []int
	for m := 8 * 60; m < 17*60; m += 30 {
		slotTimes = append(slotTimes, m)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		date := time.Now().AddDate(0, 0, gofakeit.Number(-30, 14)).Format(validate.DateLayout)
		timeOfDay := slotTimes[gofakeit.Number(0, len(slotTimes)-1)]
		doctor := "Dr. " + gofakeit.LastName()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		// Rough production mix: mostly scheduled, a healthy slice of
		// cancellations with some filled, a few no-shows.
		status := "scheduled"
		switch roll := gofakeit.Number(1, 100); {
		case roll <= 12:
			status = "cancelled"
		case roll <= 24:
			status = "filled"
		case roll <= 28:
			status = "no_show"
		}

		var cancelledAt, filledAt *time.Time
		var cancelledBy, reason *string
		if status == "cancelled" || status == "filled" {
			at := time.Now().Add(-time.Duration(gofakeit.Number(1, 72)) * time.Hour)
			cancelledAt = &at
			by := []string{"staff", "patient"}[gofakeit.Number(0, 1)]
			cancelledBy = &by
			r := gofakeit.RandomString([]string{
				"Family emergency came up",
				"Feeling unwell, need to reschedule",
				"Work conflict on that day",
				"Transportation fell through",
			})
			reason = &r
		}
		if status == "filled" {
			at := cancelledAt.Add(time.Duration(gofakeit.Number(5, 180)) * time.Minute)
			filledAt = &at
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO appointments
				(id, date, time_of_day, doctor, specialty, status,
				 patient_name, patient_email, patient_phone,
				 cancelled_at, cancelled_by, cancellation_reason, filled_at,
				 created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		`, id, date, timeOfDay, doctor, spec, status,
			gofakeit.Name(), gofakeit.Email(), gofakeit.Numerify("(###) ###-####"),
			cancelledAt, cancelledBy, reason, filledAt)
		if err != nil {
			return err
		}

		if (i+1)%100 == 0 {
			log.Printf("appointments seeded: %d/%d", i+1, count)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("appointments seeded")
	return nil
}
