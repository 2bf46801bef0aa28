package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cancelfillmd/waitlist-recovery/internal/validate"
	"github.com/cancelfillmd/waitlist-recovery/pkg/logging"
)

var ErrTooManyEntries = errors.New("maximum active waitlist entries reached for patient")

// JoinRequest is the raw, patient-supplied waitlist signup.
type JoinRequest struct {
	Name            string
	Email           string
	Phone           string
	Specialty       string
	PreferredDates  []string
	TimePreferences []string
}

type Service struct {
	repo       Repository
	maxEntries int
	logger     *logging.Logger
}

func NewService(repo Repository, maxEntries int, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if maxEntries <= 0 {
		maxEntries = 5
	}
	return &Service{
		repo:       repo,
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Join validates and sanitizes a signup, enforces the per-patient entry cap,
// and creates the entry.
func (s *Service) Join(ctx context.Context, req JoinRequest, now time.Time) (*Entry, error) {
	name, err := validate.Name(req.Name)
	if err != nil {
		return nil, err
	}
	email, err := validate.Email(req.Email)
	if err != nil {
		return nil, err
	}
	phone, err := validate.Phone(req.Phone)
	if err != nil {
		return nil, err
	}
	if req.Specialty == "" {
		return nil, &validate.Error{Field: "specialty", Message: "specialty is required"}
	}
	if err := validate.WaitlistPreferences(req.PreferredDates, req.TimePreferences, now); err != nil {
		return nil, err
	}

	active, err := s.repo.CountActiveByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("count active entries: %w", err)
	}
	if active >= s.maxEntries {
		return nil, ErrTooManyEntries
	}

	entry, err := s.repo.Create(ctx, &Entry{
		Name:            name,
		Email:           email,
		Phone:           phone,
		Specialty:       req.Specialty,
		PreferredDates:  req.PreferredDates,
		TimePreferences: req.TimePreferences,
	})
	if err != nil {
		return nil, fmt.Errorf("create waitlist entry: %w", err)
	}

	s.logger.Info("waitlist entry created",
		"entry_id", entry.ID,
		"specialty", entry.Specialty,
		"preferred_dates", len(entry.PreferredDates),
	)
	return entry, nil
}

// Remove soft-deletes an entry.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("waitlist entry removed", "entry_id", id)
	return nil
}

// ListBySpecialty returns the active entries for a specialty.
func (s *Service) ListBySpecialty(ctx context.Context, specialty string) ([]Entry, error) {
	return s.repo.ListActiveBySpecialty(ctx, specialty)
}
