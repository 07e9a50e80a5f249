package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"agenda-service/internal/intake"
	"agenda-service/libs/auth"
)

// BookingHandler is the public intake endpoint: the booking form posts here
// with or without an authenticated session.
type BookingHandler struct {
	intake   *intake.Service
	verifier *auth.Verifier
	logger   *slog.Logger
}

func NewBookingHandler(intakeSvc *intake.Service, verifier *auth.Verifier, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{intake: intakeSvc, verifier: verifier, logger: logger}
}

type bookingContact struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type bookingRequest struct {
	ServiceID       string         `json:"service_id"`
	DoctorID        string         `json:"doctor_id"`
	AppointmentDate string         `json:"appointment_date"`
	RequestedTime   string         `json:"requested_time"`
	Contact         bookingContact `json:"contact"`
	Source          string         `json:"source"`
	PatientID       string         `json:"patient_id"`
}

type bookingResponse struct {
	OK            bool   `json:"ok"`
	AppointmentID string `json:"appointmentId"`
}

func (h *BookingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	claims, err := bearerClaims(r, h.verifier)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid bearer token")
		return
	}

	sub := intake.Submission{
		ServiceID:       req.ServiceID,
		DoctorID:        strings.TrimSpace(req.DoctorID),
		AppointmentDate: combineDateTime(req.AppointmentDate, req.RequestedTime),
		Name:            req.Contact.Name,
		Phone:           req.Contact.Phone,
		CPF:             req.Contact.CPF,
		Email:           strings.TrimSpace(req.Contact.Email),
		Source:          strings.TrimSpace(req.Source),
		PatientID:       strings.TrimSpace(req.PatientID),
	}
	if claims != nil {
		// An authenticated session outranks whatever the client claims
		// about itself.
		sub.Source = intake.SourcePatientPortal
		sub.PatientID = claims.Sub
		sub.Trusted = true
	}

	res, err := h.intake.Submit(r.Context(), sub)
	if err != nil {
		writeIntakeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookingResponse{OK: true, AppointmentID: res.AppointmentID})
}

// combineDateTime merges a date-only value with a separate requested_time
// ("14:00") into one RFC3339 instant. Callers that already send a full
// timestamp pass through untouched; anything unparseable passes through so
// validation names appointment_date as the offending field.
func combineDateTime(date, clock string) string {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return date
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		if full, ferr := time.Parse(time.RFC3339, date); ferr == nil {
			day = full.UTC().Truncate(24 * time.Hour)
		} else {
			return date
		}
	}
	c, err := time.Parse("15:04", clock)
	if err != nil {
		return date
	}
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, time.UTC).Format(time.RFC3339)
}
