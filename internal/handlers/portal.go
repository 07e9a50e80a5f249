package handlers

import (
	"log/slog"
	"net/http"

	"agenda-service/internal/storage"
)

// PortalHandler serves the authenticated end user's own data. Sits behind
// RequireAuth (any valid session, not just staff).
type PortalHandler struct {
	appointments *storage.AppointmentRepository
	logger       *slog.Logger
}

func NewPortalHandler(appointments *storage.AppointmentRepository, logger *slog.Logger) *PortalHandler {
	return &PortalHandler{appointments: appointments, logger: logger}
}

func (h *PortalHandler) MyAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	claims := claimsFromContext(r.Context())
	if claims == nil || claims.Sub == "" {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	appts, err := h.appointments.ListByPatient(r.Context(), claims.Sub, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.logger.Error("patient appointment list failed", "patient_id", claims.Sub, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, appointmentItems(appts))
}
