package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"agenda-service/internal/model"
	"agenda-service/internal/storage"
)

// AdminHandler backs the staff pages: appointment listing and triage,
// customer listing. All routes sit behind RequireStaff.
type AdminHandler struct {
	appointments *storage.AppointmentRepository
	customers    *storage.CustomerRepository
	logger       *slog.Logger
}

func NewAdminHandler(appointments *storage.AppointmentRepository, customers *storage.CustomerRepository, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{appointments: appointments, customers: customers, logger: logger}
}

type appointmentItem struct {
	AppointmentID   string          `json:"appointment_id"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	ServiceID       string          `json:"service_id"`
	ServiceName     string          `json:"service_name"`
	DoctorID        string          `json:"doctor_id,omitempty"`
	AppointmentDate string          `json:"appointment_date"`
	Status          string          `json:"status"`
	Notes           json.RawMessage `json:"notes,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

func (h *AdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filter := storage.ListFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Limit:  parseLimit(r.URL.Query().Get("limit")),
	}
	if filter.Status != "" && !model.ValidStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "unknown status filter")
		return
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from")
			return
		}
		filter.From = t
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to")
			return
		}
		filter.To = t
	}

	appts, err := h.appointments.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("appointment list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, appointmentItems(appts))
}

type statusUpdateRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

type statusUpdateResponse struct {
	AppointmentID  string `json:"appointment_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}

// UpdateStatus is the staff triage action: confirm a requested booking,
// mark it completed, or cancel it. Only statuses from the known set are
// accepted; beyond that any direct transition is allowed.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Status = strings.TrimSpace(req.Status)
	if req.AppointmentID == "" {
		writeError(w, http.StatusBadRequest, "appointment_id required")
		return
	}
	if !model.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	previous, err := h.appointments.UpdateStatus(r.Context(), req.AppointmentID, req.Status)
	if err != nil {
		if errors.Is(err, storage.ErrAppointmentNotFound) {
			writeError(w, http.StatusNotFound, "appointment not found")
			return
		}
		h.logger.Error("status update failed", "appointment_id", req.AppointmentID, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, statusUpdateResponse{
		AppointmentID:  req.AppointmentID,
		PreviousStatus: previous,
		Status:         req.Status,
	})
}

type customerItem struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	CPF        string `json:"cpf,omitempty"`
	Email      string `json:"email,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	customers, err := h.customers.List(r.Context(), query, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		h.logger.Error("customer list failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	items := make([]customerItem, 0, len(customers))
	for _, c := range customers {
		items = append(items, customerItem{
			CustomerID: c.ID,
			Name:       c.Name,
			Phone:      c.Phone,
			CPF:        c.CPF,
			Email:      c.Email,
			UpdatedAt:  c.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func appointmentItems(appts []model.Appointment) []appointmentItem {
	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		item := appointmentItem{
			AppointmentID:   a.ID,
			CustomerID:      a.CustomerID,
			CustomerName:    a.CustomerName,
			CustomerPhone:   a.CustomerPhone,
			ServiceID:       a.ServiceID,
			ServiceName:     a.ServiceName,
			DoctorID:        a.DoctorID,
			AppointmentDate: a.AppointmentDate.UTC().Format(time.RFC3339),
			Status:          a.Status,
			CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		}
		if len(a.Notes) > 0 {
			item.Notes = json.RawMessage(a.Notes)
		}
		items = append(items, item)
	}
	return items
}

func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
