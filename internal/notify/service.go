package notify

import (
	"context"
	"strings"
	"time"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

// ChannelResult reports per-channel delivery for one notification.
type ChannelResult struct {
	SMSAttempted   bool
	SMSSuccess     bool
	EmailAttempted bool
	EmailSuccess   bool
}

// Delivered reports whether at least one channel got through.
func (r ChannelResult) Delivered() bool {
	return r.SMSSuccess || r.EmailSuccess
}

// Service renders and dispatches clinic notifications over the configured
// channels. Either channel may be nil (unconfigured); failures on one
// channel never block the other, and every attempt is logged.
type Service struct {
	sms         SMSSender
	email       EmailSender
	log         LogRepository
	clinicName  string
	staffEmail  string
	expiryHours int
	logger      *logging.Logger
}

func NewService(sms SMSSender, email EmailSender, log LogRepository, clinicName, staffEmail string, tokenExpiry time.Duration, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	hours := int(tokenExpiry.Hours())
	if hours < 1 {
		hours = 1
	}
	return &Service{
		sms:         sms,
		email:       email,
		log:         log,
		clinicName:  clinicName,
		staffEmail:  staffEmail,
		expiryHours: hours,
		logger:      logger,
	}
}

// AppointmentAvailable notifies one waitlisted patient that a slot opened,
// over SMS and email independently, and appends the audit record.
func (s *Service) AppointmentAvailable(ctx context.Context, entry *waitlist.Entry, appt *appointment.Appointment, link string) ChannelResult {
	data := TemplateData{
		PatientName: entry.Name,
		Date:        appt.Date,
		Time:        appt.Clock(),
		Doctor:      appt.Doctor,
		Specialty:   appt.Specialty,
		ClinicName:  s.clinicName,
		Link:        link,
		Phone:       entry.Phone,
		ExpiryHours: s.expiryHours,
	}

	logEntry := LogEntry{
		AppointmentID: appt.ID,
		EntryID:       entry.ID,
		Kind:          "appointment_available",
		SentAt:        time.Now(),
	}
	var result ChannelResult

	if s.sms != nil {
		result.SMSAttempted = true
		logEntry.SMSAttempted = true
		body, err := AvailableSMS(data)
		if err == nil {
			var ref string
			ref, err = s.sms.SendSMS(ctx, E164(entry.Phone), body)
			logEntry.SMSRef = ref
		}
		if err != nil {
			logEntry.SMSRef = err.Error()
			s.logger.Warn("sms notification failed", "entry_id", entry.ID, "error", err)
		} else {
			result.SMSSuccess = true
			logEntry.SMSSuccess = true
		}
	}

	if s.email != nil {
		result.EmailAttempted = true
		logEntry.EmailAttempted = true
		subject, body, err := AvailableEmail(data)
		if err == nil {
			var ref string
			ref, err = s.email.SendEmail(ctx, EmailMessage{
				To:      entry.Email,
				ToName:  entry.Name,
				Subject: subject,
				Body:    body,
			})
			logEntry.EmailRef = ref
		}
		if err != nil {
			logEntry.EmailRef = err.Error()
			s.logger.Warn("email notification failed", "entry_id", entry.ID, "error", err)
		} else {
			result.EmailSuccess = true
			logEntry.EmailSuccess = true
		}
	}

	s.append(ctx, logEntry)
	return result
}

// BookingConfirmed sends the patient their confirmation SMS. Best-effort.
func (s *Service) BookingConfirmed(ctx context.Context, entry *waitlist.Entry, appt *appointment.Appointment) {
	if s.sms == nil {
		return
	}
	data := TemplateData{
		PatientName: entry.Name,
		Date:        appt.Date,
		Time:        appt.Clock(),
		Doctor:      appt.Doctor,
		Specialty:   appt.Specialty,
		ClinicName:  s.clinicName,
		Phone:       entry.Phone,
		ExpiryHours: s.expiryHours,
	}

	logEntry := LogEntry{
		AppointmentID: appt.ID,
		EntryID:       entry.ID,
		Kind:          "booking_confirmed",
		SMSAttempted:  true,
		SentAt:        time.Now(),
	}

	body, err := ConfirmedSMS(data)
	if err == nil {
		var ref string
		ref, err = s.sms.SendSMS(ctx, E164(entry.Phone), body)
		logEntry.SMSRef = ref
	}
	if err != nil {
		logEntry.SMSRef = err.Error()
		s.logger.Warn("confirmation sms failed", "entry_id", entry.ID, "error", err)
	} else {
		logEntry.SMSSuccess = true
	}

	s.append(ctx, logEntry)
}

// StaffSlotFilled emails the clinic that a cancelled slot was rebooked.
// Best-effort.
func (s *Service) StaffSlotFilled(ctx context.Context, entry *waitlist.Entry, appt *appointment.Appointment) {
	if s.email == nil || s.staffEmail == "" {
		return
	}
	data := TemplateData{
		PatientName: entry.Name,
		Date:        appt.Date,
		Time:        appt.Clock(),
		Doctor:      appt.Doctor,
		Specialty:   appt.Specialty,
		ClinicName:  s.clinicName,
		Phone:       entry.Phone,
		ExpiryHours: s.expiryHours,
	}

	subject, body, err := StaffFilledEmail(data)
	if err != nil {
		s.logger.Warn("staff notice render failed", "error", err)
		return
	}
	if _, err := s.email.SendEmail(ctx, EmailMessage{
		To:      s.staffEmail,
		Subject: subject,
		Body:    body,
	}); err != nil {
		s.logger.Warn("staff notice failed", "appointment_id", appt.ID, "error", err)
	}
}

func (s *Service) append(ctx context.Context, entry LogEntry) {
	if s.log == nil {
		return
	}
	if err := s.log.Append(ctx, entry); err != nil {
		s.logger.Error("notification log append failed",
			"appointment_id", entry.AppointmentID,
			"entry_id", entry.EntryID,
			"error", err,
		)
	}
}

// E164 reduces a formatted US phone number to +1XXXXXXXXXX for carriers.
func E164(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && d[0] == '1':
		return "+" + d
	case d == "":
		return ""
	default:
		return "+" + d
	}
}
