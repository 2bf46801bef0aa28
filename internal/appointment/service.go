package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cancelfillmd/waitlist-recovery/internal/validate"
	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

// CreateRequest is the raw scheduling input.
type CreateRequest struct {
	Date         string // YYYY-MM-DD
	Time         string // "9:00 AM"
	Doctor       string
	Specialty    string
	PatientName  string
	PatientEmail string
	PatientPhone string
}

// Service validates and persists appointment records. Status transitions
// after creation belong to the fill orchestrator and the booking service.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create schedules a new appointment. A patient attached at creation time
// makes the slot scheduled; without one it is an open slot.
func (s *Service) Create(ctx context.Context, req CreateRequest, now time.Time) (*Appointment, error) {
	min := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if _, err := validate.Date(req.Date, &min, nil); err != nil {
		return nil, err
	}
	minutes, err := validate.ClockTime(req.Time)
	if err != nil {
		return nil, err
	}
	if req.Doctor == "" {
		return nil, &validate.Error{Field: "doctor", Message: "doctor is required"}
	}
	if req.Specialty == "" {
		return nil, &validate.Error{Field: "specialty", Message: "specialty is required"}
	}

	appt := &Appointment{
		Date:      req.Date,
		TimeOfDay: minutes,
		Doctor:    validate.SanitizeText(req.Doctor, 100),
		Specialty: req.Specialty,
		Status:    StatusAvailable,
	}

	if req.PatientName != "" || req.PatientEmail != "" || req.PatientPhone != "" {
		name, err := validate.Name(req.PatientName)
		if err != nil {
			return nil, err
		}
		email, err := validate.Email(req.PatientEmail)
		if err != nil {
			return nil, err
		}
		phone, err := validate.Phone(req.PatientPhone)
		if err != nil {
			return nil, err
		}
		appt.PatientName = name
		appt.PatientEmail = email
		appt.PatientPhone = phone
		appt.Status = StatusScheduled
	}

	created, err := s.repo.Create(ctx, appt)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logger.Info("appointment created",
		"appointment_id", created.ID,
		"date", created.Date,
		"specialty", created.Specialty,
		"status", created.Status,
	)
	return created, nil
}

// Get loads one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}
