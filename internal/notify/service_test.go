package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
)

type stubSMS struct {
	sent []string // recipients
	err  error
}

func (s *stubSMS) SendSMS(_ context.Context, to, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, to)
	return "SM123", nil
}

type stubEmail struct {
	sent []EmailMessage
	err  error
}

func (s *stubEmail) SendEmail(_ context.Context, msg EmailMessage) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "sendgrid:202", nil
}

// memLog records appends and rejects any other mutation by construction.
type memLog struct {
	entries []LogEntry
}

func (l *memLog) Append(_ context.Context, entry LogEntry) error {
	l.entries = append(l.entries, entry)
	return nil
}

func (l *memLog) ListByAppointment(_ context.Context, appointmentID uuid.UUID) ([]LogEntry, error) {
	var out []LogEntry
	for _, e := range l.entries {
		if e.AppointmentID == appointmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func testEntry() *waitlist.Entry {
	return &waitlist.Entry{
		ID:    uuid.New(),
		Name:  "Jordan Reyes",
		Email: "jordan@example.com",
		Phone: "(555) 201-3344",
	}
}

func testAppt() *appointment.Appointment {
	return &appointment.Appointment{
		ID:        uuid.New(),
		Date:      "2026-09-10",
		TimeOfDay: 9 * 60,
		Doctor:    "Dr. Chen",
		Specialty: "Dermatology",
		Status:    appointment.StatusCancelled,
	}
}

func TestAppointmentAvailableBothChannels(t *testing.T) {
	sms := &stubSMS{}
	email := &stubEmail{}
	log := &memLog{}
	svc := NewService(sms, email, log, "Harbor Clinic", "", 2*time.Hour, nil)

	entry := testEntry()
	appt := testAppt()
	res := svc.AppointmentAvailable(context.Background(), entry, appt, "https://x/booking?token=abc")

	assert.True(t, res.Delivered())
	assert.True(t, res.SMSSuccess)
	assert.True(t, res.EmailSuccess)
	assert.Equal(t, []string{"+15552013344"}, sms.sent)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "jordan@example.com", email.sent[0].To)
	assert.Contains(t, email.sent[0].Body, "https://x/booking?token=abc")

	require.Len(t, log.entries, 1)
	rec := log.entries[0]
	assert.Equal(t, "appointment_available", rec.Kind)
	assert.True(t, rec.SMSAttempted)
	assert.True(t, rec.SMSSuccess)
	assert.Equal(t, "SM123", rec.SMSRef)
	assert.True(t, rec.EmailSuccess)
}

func TestAppointmentAvailableSMSFailureStillEmails(t *testing.T) {
	sms := &stubSMS{err: errors.New("carrier rejected")}
	email := &stubEmail{}
	log := &memLog{}
	svc := NewService(sms, email, log, "Harbor Clinic", "", 2*time.Hour, nil)

	res := svc.AppointmentAvailable(context.Background(), testEntry(), testAppt(), "https://x/b")
	assert.False(t, res.SMSSuccess)
	assert.True(t, res.EmailSuccess)
	assert.True(t, res.Delivered())

	// The failure is recorded, not dropped.
	require.Len(t, log.entries, 1)
	rec := log.entries[0]
	assert.True(t, rec.SMSAttempted)
	assert.False(t, rec.SMSSuccess)
	assert.Contains(t, rec.SMSRef, "carrier rejected")
}

func TestAppointmentAvailableAllChannelsFail(t *testing.T) {
	sms := &stubSMS{err: errors.New("down")}
	email := &stubEmail{err: errors.New("down")}
	log := &memLog{}
	svc := NewService(sms, email, log, "Harbor Clinic", "", 2*time.Hour, nil)

	res := svc.AppointmentAvailable(context.Background(), testEntry(), testAppt(), "https://x/b")
	assert.False(t, res.Delivered())
	// Still logged.
	assert.Len(t, log.entries, 1)
}

func TestAppointmentAvailableUnconfiguredChannels(t *testing.T) {
	log := &memLog{}
	svc := NewService(nil, nil, log, "Harbor Clinic", "", 2*time.Hour, nil)

	res := svc.AppointmentAvailable(context.Background(), testEntry(), testAppt(), "https://x/b")
	assert.False(t, res.SMSAttempted)
	assert.False(t, res.EmailAttempted)
	assert.False(t, res.Delivered())
	require.Len(t, log.entries, 1)
	assert.False(t, log.entries[0].SMSAttempted)
}

func TestLogAppendOnlyAcrossDispatches(t *testing.T) {
	sms := &stubSMS{}
	log := &memLog{}
	svc := NewService(sms, nil, log, "Harbor Clinic", "staff@clinic.example.com", 2*time.Hour, nil)

	appt := testAppt()
	first := svc.AppointmentAvailable(context.Background(), testEntry(), appt, "https://x/1")
	require.True(t, first.Delivered())
	firstRecord := log.entries[0]

	svc.AppointmentAvailable(context.Background(), testEntry(), appt, "https://x/2")
	svc.BookingConfirmed(context.Background(), testEntry(), appt)

	// Three dispatches, three records; earlier records are untouched.
	records, err := log.ListByAppointment(context.Background(), appt.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, firstRecord, records[0])
	assert.Equal(t, "booking_confirmed", records[2].Kind)
}

func TestBookingConfirmedSMSOnly(t *testing.T) {
	sms := &stubSMS{}
	email := &stubEmail{}
	log := &memLog{}
	svc := NewService(sms, email, log, "Harbor Clinic", "", 2*time.Hour, nil)

	svc.BookingConfirmed(context.Background(), testEntry(), testAppt())
	assert.Len(t, sms.sent, 1)
	assert.Empty(t, email.sent)
	require.Len(t, log.entries, 1)
	assert.Equal(t, "booking_confirmed", log.entries[0].Kind)
}

func TestStaffSlotFilled(t *testing.T) {
	email := &stubEmail{}
	svc := NewService(nil, email, nil, "Harbor Clinic", "staff@clinic.example.com", 2*time.Hour, nil)

	svc.StaffSlotFilled(context.Background(), testEntry(), testAppt())
	require.Len(t, email.sent, 1)
	assert.Equal(t, "staff@clinic.example.com", email.sent[0].To)
	assert.Contains(t, email.sent[0].Body, "Jordan Reyes")

	// Without a staff address nothing goes out.
	email2 := &stubEmail{}
	svc2 := NewService(nil, email2, nil, "Harbor Clinic", "", 2*time.Hour, nil)
	svc2.StaffSlotFilled(context.Background(), testEntry(), testAppt())
	assert.Empty(t, email2.sent)
}

func TestE164(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(555) 201-3344", "+15552013344"},
		{"+1 (555) 201-3344", "+15552013344"},
		{"5552013344", "+15552013344"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, E164(tt.in), "input=%q", tt.in)
	}
}
