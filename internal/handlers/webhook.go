package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"agenda-service/internal/intake"
)

const webhookSecretHeader = "X-Webhook-Secret"

// WebhookHandler is the automation channel (WhatsApp assistant and similar
// integrations). It shares the intake core with the public endpoint but
// authenticates with a shared secret, and its bookings arrive pre-confirmed.
type WebhookHandler struct {
	intake *intake.Service
	secret string
	logger *slog.Logger
}

func NewWebhookHandler(intakeSvc *intake.Service, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{intake: intakeSvc, secret: secret, logger: logger}
}

type webhookRequest struct {
	PatientName     string `json:"patient_name"`
	PatientPhone    string `json:"patient_phone"`
	ServiceID       string `json:"service_id"`
	AppointmentDate string `json:"appointment_date"`
	DoctorID        string `json:"doctor_id"`
}

func (h *WebhookHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.secret == "" {
		writeError(w, http.StatusServiceUnavailable, "webhook channel not configured")
		return
	}
	provided := strings.TrimSpace(r.Header.Get(webhookSecretHeader))
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid webhook secret")
		return
	}

	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	res, err := h.intake.Submit(r.Context(), intake.Submission{
		ServiceID:       req.ServiceID,
		DoctorID:        strings.TrimSpace(req.DoctorID),
		AppointmentDate: req.AppointmentDate,
		Name:            req.PatientName,
		Phone:           req.PatientPhone,
		Source:          intake.SourceIAWebhook,
		Trusted:         true,
	})
	if err != nil {
		writeIntakeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookingResponse{OK: true, AppointmentID: res.AppointmentID})
}
