package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"agenda-service/internal/slots"
	"agenda-service/internal/storage"
)

// CatalogHandler serves the public read-side of the booking form: the
// service catalog and the open time slots for a given day.
type CatalogHandler struct {
	services     *storage.ServiceRepository
	appointments *storage.AppointmentRepository
	windows      []slots.Window
	slotStep     time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

func NewCatalogHandler(services *storage.ServiceRepository, appointments *storage.AppointmentRepository, windows []slots.Window, slotStep time.Duration, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		services:     services,
		appointments: appointments,
		windows:      windows,
		slotStep:     slotStep,
		logger:       logger,
		now:          time.Now,
	}
}

type serviceItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	services, err := h.services.ListActive(r.Context())
	if err != nil {
		h.logger.Error("service catalog list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list services")
		return
	}

	items := make([]serviceItem, 0, len(services))
	for _, s := range services {
		items = append(items, serviceItem{
			ID:              s.ID,
			Name:            s.Name,
			Description:     s.Description,
			PriceCents:      s.PriceCents,
			DurationMinutes: s.DurationMinutes,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type slotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// ListSlots returns the free slot start times for one day. Slots are
// advisory: intake accepts whatever instant the client submits, so a slot
// disappearing between render and submit is not an error.
func (h *CatalogHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rawDate := r.URL.Query().Get("date")
	day, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	step := h.slotStep
	if serviceID := r.URL.Query().Get("service_id"); serviceID != "" {
		svc, ok, err := h.services.GetByID(r.Context(), serviceID)
		if err != nil {
			h.logger.Error("service lookup for slots failed", "service_id", serviceID, "err", err)
			writeError(w, http.StatusInternalServerError, "failed to load service")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		if svc.DurationMinutes > 0 {
			step = time.Duration(svc.DurationMinutes) * time.Minute
		}
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	taken, err := h.appointments.ListBookedInstants(r.Context(), dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		h.logger.Error("booked instant list failed", "date", rawDate, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list slots")
		return
	}
	open := slots.OpenSlots(dayStart, h.windows, step, taken, h.now())
	out := slotsResponse{Date: rawDate, Slots: make([]string, 0, len(open))}
	for _, t := range open {
		out.Slots = append(out.Slots, t.Format("15:04"))
	}
	writeJSON(w, http.StatusOK, out)
}
