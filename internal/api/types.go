package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/fill"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
)

type JoinWaitlistRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Specialty       string   `json:"specialty"`
	PreferredDates  []string `json:"preferred_dates"`
	TimePreferences []string `json:"time_preferences"`
}

type WaitlistEntryResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Specialty       string    `json:"specialty"`
	PreferredDates  []string  `json:"preferred_dates"`
	TimePreferences []string  `json:"time_preferences"`
	Active          bool      `json:"active"`
	NotifiedCount   int       `json:"notified_count"`
	CreatedAt       time.Time `json:"created_at"`
}

func toEntryResponse(e *waitlist.Entry) WaitlistEntryResponse {
	return WaitlistEntryResponse{
		ID:              e.ID,
		Name:            e.Name,
		Email:           e.Email,
		Phone:           e.Phone,
		Specialty:       e.Specialty,
		PreferredDates:  e.PreferredDates,
		TimePreferences: e.TimePreferences,
		Active:          e.Active,
		NotifiedCount:   e.NotifiedCount,
		CreatedAt:       e.CreatedAt,
	}
}

type CreateAppointmentRequest struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // "3:04 PM"
	Doctor       string `json:"doctor"`
	Specialty    string `json:"specialty"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone"`
}

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Doctor      string     `json:"doctor"`
	Specialty   string     `json:"specialty"`
	Status      string     `json:"status"`
	PatientName string     `json:"patient_name,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	FilledAt    *time.Time `json:"filled_at,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		Date:        a.Date,
		Time:        a.Clock(),
		Doctor:      a.Doctor,
		Specialty:   a.Specialty,
		Status:      string(a.Status),
		PatientName: a.PatientName,
		CancelledAt: a.CancelledAt,
		FilledAt:    a.FilledAt,
	}
}

type CancelAppointmentRequest struct {
	Actor          string `json:"actor"` // staff | patient
	Reason         string `json:"reason,omitempty"`
	NotifyWaitlist *bool  `json:"notify_waitlist,omitempty"` // default true
}

type CancelAppointmentResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	Notified    int                 `json:"notified"`
	Candidates  []CandidateResponse `json:"candidates,omitempty"`
}

type CandidateResponse struct {
	EntryID   uuid.UUID `json:"entry_id"`
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Delivered bool      `json:"delivered"`
}

func toCancelResponse(res *fill.CancelResult) CancelAppointmentResponse {
	out := CancelAppointmentResponse{
		Appointment: toAppointmentResponse(res.Appointment),
		Notified:    res.Notified,
	}
	for _, c := range res.Candidates {
		out.Candidates = append(out.Candidates, CandidateResponse{
			EntryID:   c.Entry.ID,
			Name:      c.Entry.Name,
			Score:     c.Score,
			Delivered: c.Delivered,
		})
	}
	return out
}

type RedeemBookingRequest struct {
	Token string `json:"token"`
}

type RedeemBookingResponse struct {
	Appointment AppointmentResponse `json:"appointment"`
	PatientName string              `json:"patient_name"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
