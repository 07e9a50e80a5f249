package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"agenda-service/internal/model"
	"agenda-service/internal/outbox"
	"agenda-service/libs/db"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

type AppointmentRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewAppointmentRepository(pool *db.Pool, outboxRepo *outbox.Repository) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, outbox: outboxRepo}
}

// Create inserts the appointment and its booking.request.received event in
// one transaction. The preceding customer upsert is intentionally outside
// this transaction (see intake.Service).
func (r *AppointmentRepository) Create(ctx context.Context, appt model.Appointment) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(customer_id, service_id, doctor_id, patient_id, appointment_date, status, service_name, notes)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING id
	`, appt.CustomerID, appt.ServiceID, appt.DoctorID, appt.PatientID,
		appt.AppointmentDate, appt.Status, appt.ServiceName, appt.Notes).Scan(&id)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id":   id,
		"customer_id":      appt.CustomerID,
		"service_id":       appt.ServiceID,
		"service_name":     appt.ServiceName,
		"appointment_date": appt.AppointmentDate.UTC().Format(time.RFC3339),
		"status":           appt.Status,
	})
	if err != nil {
		return "", err
	}
	if err := r.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     outbox.EventBookingReceived,
		Payload:       payload,
	}); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateStatus moves an appointment to the given status and records a
// status-changed event. The row is locked so concurrent staff actions
// serialize instead of clobbering each other.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, appointmentID, status string) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var previous string
	err = tx.QueryRow(ctx, `
		SELECT status FROM appointments WHERE id = $1 FOR UPDATE
	`, appointmentID).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidTextRepresentation(err) {
			return "", ErrAppointmentNotFound
		}
		return "", err
	}

	if previous == status {
		return previous, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, appointmentID, status); err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id":  appointmentID,
		"previous_status": previous,
		"status":          status,
		"changed_at":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	if err := r.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appointmentID,
		EventType:     outbox.EventStatusChanged,
		Payload:       payload,
	}); err != nil {
		return "", err
	}

	return previous, tx.Commit(ctx)
}

type ListFilter struct {
	Status string
	From   time.Time
	To     time.Time
	Limit  int
}

// List returns appointments for the staff pages, newest first, with the
// customer's name and phone joined in.
func (r *AppointmentRepository) List(ctx context.Context, f ListFilter) ([]model.Appointment, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.customer_id, a.service_id, COALESCE(a.doctor_id::text, ''),
			COALESCE(a.patient_id::text, ''), a.appointment_date, a.status,
			a.service_name, a.notes, a.created_at, c.name, c.phone
		FROM appointments a
		JOIN customers c ON c.id = a.customer_id
		WHERE ($1 = '' OR a.status = $1)
			AND ($2::timestamptz IS NULL OR a.appointment_date >= $2)
			AND ($3::timestamptz IS NULL OR a.appointment_date < $3)
		ORDER BY a.appointment_date DESC
		LIMIT $4
	`, f.Status, nullableTime(f.From), nullableTime(f.To), f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListByPatient returns the authenticated end user's own appointments.
func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]model.Appointment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.customer_id, a.service_id, COALESCE(a.doctor_id::text, ''),
			COALESCE(a.patient_id::text, ''), a.appointment_date, a.status,
			a.service_name, a.notes, a.created_at, c.name, c.phone
		FROM appointments a
		JOIN customers c ON c.id = a.customer_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC
		LIMIT $2
	`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListBookedInstants returns the non-cancelled appointment instants inside
// [from, to) for the slots endpoint. Advisory only; intake does not check it.
func (r *AppointmentRepository) ListBookedInstants(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT appointment_date
		FROM appointments
		WHERE status <> 'cancelled'
			AND appointment_date >= $1
			AND appointment_date < $2
		ORDER BY appointment_date
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instants []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		instants = append(instants, t)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return instants, nil
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var appts []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.ServiceID, &a.DoctorID, &a.PatientID,
			&a.AppointmentDate, &a.Status, &a.ServiceName, &a.Notes, &a.CreatedAt,
			&a.CustomerName, &a.CustomerPhone); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
