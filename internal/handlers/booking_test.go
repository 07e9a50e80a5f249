package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agenda-service/internal/intake"
	"agenda-service/internal/model"
	"agenda-service/libs/auth"
)

const testJWTSecret = "handler-test-secret"

type memCustomers struct{ upserts []intake.CustomerUpsert }

func (m *memCustomers) Upsert(_ context.Context, c intake.CustomerUpsert) (string, error) {
	m.upserts = append(m.upserts, c)
	return "cust-1", nil
}

type memServices struct{}

func (memServices) GetByID(_ context.Context, id string) (model.Service, bool, error) {
	if id != "svc-1" {
		return model.Service{}, false, nil
	}
	return model.Service{ID: "svc-1", Name: "Consulta", DurationMinutes: 30, Active: true}, true, nil
}

type memAppointments struct{ created []model.Appointment }

func (m *memAppointments) Create(_ context.Context, appt model.Appointment) (string, error) {
	m.created = append(m.created, appt)
	return "appt-1", nil
}

func newBookingHandler(t *testing.T) (*BookingHandler, *memAppointments) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appointments := &memAppointments{}
	svc := intake.NewService(&memCustomers{}, memServices{}, appointments, logger, intake.Config{})
	verifier := auth.NewVerifier(testJWTSecret, nil)
	return NewBookingHandler(svc, verifier, logger), appointments
}

func validBookingBody() string {
	return `{
		"service_id": "svc-1",
		"appointment_date": "2026-03-14",
		"requested_time": "10:30",
		"contact": {"name": "Maria Souza", "phone": "(11) 98765-4321", "cpf": "123.456.789-01"}
	}`
}

func TestBookingSubmitAnonymous(t *testing.T) {
	handler, appointments := newBookingHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/booking-requests", strings.NewReader(validBookingBody()))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp bookingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.AppointmentID != "appt-1" {
		t.Errorf("response = %+v", resp)
	}

	if len(appointments.created) != 1 {
		t.Fatalf("appointments created = %d", len(appointments.created))
	}
	appt := appointments.created[0]
	if appt.Status != model.StatusRequested {
		t.Errorf("anonymous submission status = %q, want %q", appt.Status, model.StatusRequested)
	}
	want := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	if !appt.AppointmentDate.Equal(want) {
		t.Errorf("appointment date = %v, want %v", appt.AppointmentDate, want)
	}
}

func TestBookingSubmitAuthenticated(t *testing.T) {
	handler, appointments := newBookingHandler(t)

	now := time.Now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:  "patient-77",
		Role: "patient",
		Iat:  now.Unix(),
		Exp:  now.Add(time.Hour).Unix(),
	}, testJWTSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/booking-requests", strings.NewReader(validBookingBody()))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	appt := appointments.created[0]
	if appt.Status != model.StatusScheduled {
		t.Errorf("authenticated submission status = %q, want %q", appt.Status, model.StatusScheduled)
	}
	if appt.PatientID != "patient-77" {
		t.Errorf("patient id = %q, want from token subject", appt.PatientID)
	}

	p, err := intake.ParseProvenance(appt.Notes)
	if err != nil {
		t.Fatalf("parse provenance: %v", err)
	}
	if p.Source != intake.SourcePatientPortal {
		t.Errorf("source = %q, want %q", p.Source, intake.SourcePatientPortal)
	}
}

func TestBookingSubmitBadToken(t *testing.T) {
	handler, appointments := newBookingHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/booking-requests", strings.NewReader(validBookingBody()))
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(appointments.created) != 0 {
		t.Error("bad token must not create an appointment")
	}
}

func TestBookingSubmitValidationDetails(t *testing.T) {
	handler, _ := newBookingHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/booking-requests",
		strings.NewReader(`{"service_id":"svc-1","contact":{"name":"x","phone":"123"}}`))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		Error   string `json:"error"`
		Details struct {
			Fields []string `json:"fields"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if len(body.Details.Fields) == 0 {
		t.Errorf("expected offending fields, got %s", rec.Body.String())
	}
}

func TestBookingSubmitUnknownService(t *testing.T) {
	handler, _ := newBookingHandler(t)

	body := strings.Replace(validBookingBody(), "svc-1", "svc-404", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/booking-requests", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCombineDateTime(t *testing.T) {
	cases := []struct {
		date, clock, want string
	}{
		{"2026-03-14", "10:30", "2026-03-14T10:30:00Z"},
		{"2026-03-14T10:30:00Z", "", "2026-03-14T10:30:00Z"},
		{"2026-03-14T00:00:00Z", "14:00", "2026-03-14T14:00:00Z"},
		{"garbage", "10:30", "garbage"},
		{"2026-03-14", "late morning", "2026-03-14"},
	}
	for _, tc := range cases {
		if got := combineDateTime(tc.date, tc.clock); got != tc.want {
			t.Errorf("combineDateTime(%q, %q) = %q, want %q", tc.date, tc.clock, got, tc.want)
		}
	}
}
