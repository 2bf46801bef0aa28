package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cancelfillmd/waitlist-recovery/internal/analytics"
	"github.com/cancelfillmd/waitlist-recovery/internal/appointment"
	"github.com/cancelfillmd/waitlist-recovery/internal/booking"
	"github.com/cancelfillmd/waitlist-recovery/internal/fill"
	"github.com/cancelfillmd/waitlist-recovery/internal/validate"
	"github.com/cancelfillmd/waitlist-recovery/internal/waitlist"
)

func joinWaitlistHandler(svc *waitlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinWaitlistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		entry, err := svc.Join(r.Context(), waitlist.JoinRequest{
			Name:            req.Name,
			Email:           req.Email,
			Phone:           req.Phone,
			Specialty:       req.Specialty,
			PreferredDates:  req.PreferredDates,
			TimePreferences: req.TimePreferences,
		}, time.Now())
		if err != nil {
			handleJoinError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toEntryResponse(entry))
	}
}

func removeWaitlistHandler(svc *waitlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_entry_id", "id must be a valid UUID")
			return
		}

		if err := svc.Remove(r.Context(), id); err != nil {
			if errors.Is(err, waitlist.ErrEntryNotFound) {
				writeError(w, http.StatusNotFound, "entry_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func listWaitlistHandler(svc *waitlist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		specialty := r.URL.Query().Get("specialty")
		if specialty == "" {
			writeError(w, http.StatusBadRequest, "missing_specialty", "specialty query parameter is required")
			return
		}

		entries, err := svc.ListBySpecialty(r.Context(), specialty)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]WaitlistEntryResponse, 0, len(entries))
		for i := range entries {
			out = append(out, toEntryResponse(&entries[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Create(r.Context(), appointment.CreateRequest{
			Date:         req.Date,
			Time:         req.Time,
			Doctor:       req.Doctor,
			Specialty:    req.Specialty,
			PatientName:  req.PatientName,
			PatientEmail: req.PatientEmail,
			PatientPhone: req.PatientPhone,
		}, time.Now())
		if err != nil {
			var vErr *validate.Error
			if errors.As(err, &vErr) {
				writeError(w, http.StatusBadRequest, "validation_failed", vErr.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, appointment.ErrNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func cancelAppointmentHandler(orch *fill.Orchestrator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req CancelAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		actor := appointment.Actor(req.Actor)
		if actor != appointment.ActorStaff && actor != appointment.ActorPatient {
			writeError(w, http.StatusBadRequest, "invalid_actor", "actor must be staff or patient")
			return
		}

		notify := true
		if req.NotifyWaitlist != nil {
			notify = *req.NotifyWaitlist
		}

		result, err := orch.Cancel(r.Context(), fill.CancelRequest{
			AppointmentID:  id,
			Actor:          actor,
			Reason:         req.Reason,
			NotifyWaitlist: notify,
		})
		if err != nil {
			handleCancelError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toCancelResponse(result))
	}
}

func redeemBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RedeemBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Token == "" {
			writeError(w, http.StatusBadRequest, "missing_token", "token is required")
			return
		}

		red, err := svc.Redeem(r.Context(), req.Token, time.Now())
		if err != nil {
			handleRedeemError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, RedeemBookingResponse{
			Appointment: toAppointmentResponse(red.Appointment),
			PatientName: red.Entry.Name,
		})
	}
}

func analyticsSummaryHandler(reporter *analytics.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		end := r.URL.Query().Get("end")
		for _, bound := range []string{start, end} {
			if bound == "" {
				continue
			}
			if _, err := validate.Date(bound, nil, nil); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date_range", "start and end must be YYYY-MM-DD")
				return
			}
		}
		if start != "" && end != "" && start > end {
			writeError(w, http.StatusBadRequest, "invalid_date_range", "start must not be after end")
			return
		}

		report, err := reporter.Report(r.Context(), start, end)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func handleJoinError(w http.ResponseWriter, err error) {
	var vErr *validate.Error
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation_failed", vErr.Error())
	case errors.Is(err, waitlist.ErrTooManyEntries):
		writeError(w, http.StatusConflict, "too_many_entries", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleCancelError(w http.ResponseWriter, err error) {
	var vErr *validate.Error
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "validation_failed", vErr.Error())
	case errors.Is(err, appointment.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, fill.ErrNotCancellable):
		writeError(w, http.StatusConflict, "not_cancellable", err.Error())
	case errors.Is(err, fill.ErrTooLateToCancel):
		writeError(w, http.StatusConflict, "too_late_to_cancel", err.Error())
	case errors.Is(err, fill.ErrCancelInProgress):
		writeError(w, http.StatusConflict, "cancel_in_progress", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleRedeemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrTokenInvalid):
		writeError(w, http.StatusNotFound, "token_invalid", err.Error())
	case errors.Is(err, booking.ErrTokenExpired):
		writeError(w, http.StatusGone, "token_expired", err.Error())
	case errors.Is(err, booking.ErrTokenUsed):
		writeError(w, http.StatusConflict, "token_used", err.Error())
	case errors.Is(err, booking.ErrAlreadyFilled):
		writeError(w, http.StatusConflict, "already_filled", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
