package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancelfillmd/waitlist-recovery/internal/validate"
)

type stubRepo struct {
	created     []*Entry
	activeCount int
	deactivated []uuid.UUID
}

func (r *stubRepo) GetByID(context.Context, uuid.UUID) (*Entry, error) {
	return nil, ErrEntryNotFound
}

func (r *stubRepo) Create(_ context.Context, e *Entry) (*Entry, error) {
	out := *e
	out.ID = uuid.New()
	out.Active = true
	out.CreatedAt = time.Now()
	r.created = append(r.created, &out)
	return &out, nil
}

func (r *stubRepo) ListActiveBySpecialty(context.Context, string) ([]Entry, error) { return nil, nil }

func (r *stubRepo) CountActiveByEmail(context.Context, string) (int, error) {
	return r.activeCount, nil
}

func (r *stubRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.deactivated = append(r.deactivated, id)
	return nil
}

func (r *stubRepo) IncrementNotified(context.Context, uuid.UUID) error { return nil }
func (r *stubRepo) IncrementExpired(context.Context, uuid.UUID) error  { return nil }
func (r *stubRepo) RecordBooking(context.Context, uuid.UUID) error     { return nil }

func validJoin() JoinRequest {
	return JoinRequest{
		Name:            "jordan reyes",
		Email:           "Jordan@Example.com",
		Phone:           "555-201-3344",
		Specialty:       "Dermatology",
		PreferredDates:  []string{time.Now().AddDate(0, 0, 7).Format(validate.DateLayout)},
		TimePreferences: []string{"morning"},
	}
}

func TestJoinSanitizesInput(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, 5, nil)

	entry, err := svc.Join(context.Background(), validJoin(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Jordan Reyes", entry.Name)
	assert.Equal(t, "jordan@example.com", entry.Email)
	assert.Equal(t, "(555) 201-3344", entry.Phone)
	assert.True(t, entry.Active)
}

func TestJoinValidationFailures(t *testing.T) {
	svc := NewService(&stubRepo{}, 5, nil)
	now := time.Now()

	tests := []struct {
		name   string
		mutate func(*JoinRequest)
	}{
		{"bad email", func(r *JoinRequest) { r.Email = "nope" }},
		{"bad phone", func(r *JoinRequest) { r.Phone = "123" }},
		{"bad name", func(r *JoinRequest) { r.Name = "x" }},
		{"missing specialty", func(r *JoinRequest) { r.Specialty = "" }},
		{"no dates", func(r *JoinRequest) { r.PreferredDates = nil }},
		{"past date", func(r *JoinRequest) { r.PreferredDates = []string{"2020-01-01"} }},
		{"bad time pref", func(r *JoinRequest) { r.TimePreferences = []string{"dawn"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validJoin()
			tt.mutate(&req)
			_, err := svc.Join(context.Background(), req, now)
			var vErr *validate.Error
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestJoinEnforcesEntryCap(t *testing.T) {
	repo := &stubRepo{activeCount: 5}
	svc := NewService(repo, 5, nil)

	_, err := svc.Join(context.Background(), validJoin(), time.Now())
	assert.ErrorIs(t, err, ErrTooManyEntries)
	assert.Empty(t, repo.created)
}

func TestRemove(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, 5, nil)

	id := uuid.New()
	require.NoError(t, svc.Remove(context.Background(), id))
	assert.Equal(t, []uuid.UUID{id}, repo.deactivated)
}

func TestEntryPreferenceHelpers(t *testing.T) {
	e := Entry{
		PreferredDates:  []string{"2026-09-10", "2026-09-12"},
		TimePreferences: []string{"morning"},
	}

	assert.True(t, e.PrefersDate("2026-09-10"))
	assert.False(t, e.PrefersDate("2026-09-11"))
	assert.True(t, e.PrefersTime("morning"))
	assert.False(t, e.PrefersTime("evening"))

	anyTime := Entry{TimePreferences: []string{"any"}}
	assert.True(t, anyTime.PrefersTime("evening"))
}
