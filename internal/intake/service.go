package intake

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"agenda-service/internal/model"
)

// CustomerUpsert carries the normalized contact fields for identity
// resolution. Phone is the natural key; the rest is supplementary.
type CustomerUpsert struct {
	Phone string
	Name  string
	CPF   string
	Email string
}

// CustomerStore resolves a customer by its natural key, creating the record
// on first contact. Implementations must perform the upsert as a single
// atomic statement so concurrent submissions from the same phone cannot
// produce duplicate customers.
type CustomerStore interface {
	Upsert(ctx context.Context, c CustomerUpsert) (string, error)
}

// ServiceStore is the read-only catalog lookup.
type ServiceStore interface {
	GetByID(ctx context.Context, id string) (model.Service, bool, error)
}

// AppointmentStore persists one appointment per submission.
type AppointmentStore interface {
	Create(ctx context.Context, appt model.Appointment) (string, error)
}

type Config struct {
	// RejectPastDates makes the endpoint refuse appointment dates in the
	// past. Off by default: the booking form's calendar widget already
	// restricts selection, and automation channels submit short-notice
	// slots that can race the clock.
	RejectPastDates bool
}

// Submission is one booking request after transport decoding, before
// normalization.
type Submission struct {
	ServiceID       string
	DoctorID        string
	AppointmentDate string
	Name            string
	Phone           string
	CPF             string
	Email           string
	Source          string
	PatientID       string

	// Trusted marks submissions from a verified origin: an authenticated
	// session or the automation webhook's shared secret. Trusted requests
	// skip staff triage and start out scheduled.
	Trusted bool
}

type Result struct {
	AppointmentID string
	CustomerID    string
	Status        string
}

// Service is the booking intake core: validate and normalize, resolve the
// customer identity, then create the appointment with its provenance
// payload. The two writes are deliberately not wrapped in one transaction;
// a customer row without an appointment is harmless and reusable.
type Service struct {
	customers    CustomerStore
	services     ServiceStore
	appointments AppointmentStore
	logger       *slog.Logger
	cfg          Config
	now          func() time.Time
}

func NewService(customers CustomerStore, services ServiceStore, appointments AppointmentStore, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		customers:    customers,
		services:     services,
		appointments: appointments,
		logger:       logger,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *Service) Submit(ctx context.Context, sub Submission) (Result, error) {
	phone, name, cpf, when, err := s.validate(sub)
	if err != nil {
		return Result{}, err
	}

	svc, ok, err := s.services.GetByID(ctx, sub.ServiceID)
	if err != nil {
		return Result{}, &PersistenceError{Op: "service lookup", Phone: phone, Cause: err}
	}
	if !ok {
		return Result{}, &NotFoundError{Resource: "service", ID: sub.ServiceID}
	}

	customerID, err := s.customers.Upsert(ctx, CustomerUpsert{
		Phone: phone,
		Name:  name,
		CPF:   cpf,
		Email: sub.Email,
	})
	if err != nil {
		s.logger.Error("customer upsert failed",
			"phone", phone, "service_id", sub.ServiceID, "err", err)
		return Result{}, &PersistenceError{Op: "customer upsert", Phone: phone, Cause: err}
	}

	status := model.StatusRequested
	if sub.Trusted {
		status = model.StatusScheduled
	}

	source := sub.Source
	if source == "" {
		source = SourceWebPortal
	}

	notes, err := Provenance{
		Source:      source,
		SubmittedAt: s.now().UTC(),
		Contact: ProvenanceContact{
			Name:  name,
			Phone: phone,
			CPF:   cpf,
			Email: sub.Email,
		},
		PatientID: sub.PatientID,
	}.MarshalPayload()
	if err != nil {
		return Result{}, err
	}

	appointmentID, err := s.appointments.Create(ctx, model.Appointment{
		CustomerID:      customerID,
		ServiceID:       svc.ID,
		DoctorID:        sub.DoctorID,
		PatientID:       sub.PatientID,
		AppointmentDate: when,
		Status:          status,
		ServiceName:     svc.Name,
		Notes:           notes,
	})
	if err != nil {
		// The customer upsert is not undone; log enough to retry by hand.
		s.logger.Error("appointment insert failed after customer upsert",
			"phone", phone, "service_id", sub.ServiceID, "customer_id", customerID, "err", err)
		return Result{}, &PersistenceError{Op: "appointment insert", Phone: phone, Cause: err}
	}

	return Result{AppointmentID: appointmentID, CustomerID: customerID, Status: status}, nil
}

// validate normalizes contact fields and collects every offending field
// before anything touches the database.
func (s *Service) validate(sub Submission) (phone, name, cpf string, when time.Time, err error) {
	var bad []string

	name = strings.TrimSpace(sub.Name)
	if name == "" {
		bad = append(bad, "contact.name")
	}

	var ok bool
	phone, ok = NormalizePhone(sub.Phone)
	if !ok {
		bad = append(bad, "contact.phone")
	}

	cpf, ok = NormalizeCPF(sub.CPF)
	if !ok {
		bad = append(bad, "contact.cpf")
	}

	if strings.TrimSpace(sub.ServiceID) == "" {
		bad = append(bad, "service_id")
	}

	when, parseErr := time.Parse(time.RFC3339, strings.TrimSpace(sub.AppointmentDate))
	if parseErr != nil {
		bad = append(bad, "appointment_date")
	} else {
		when = when.UTC()
		if s.cfg.RejectPastDates && when.Before(s.now().UTC()) {
			bad = append(bad, "appointment_date")
		}
	}

	if len(bad) > 0 {
		return "", "", "", time.Time{}, &ValidationError{Fields: bad}
	}
	return phone, name, cpf, when, nil
}
