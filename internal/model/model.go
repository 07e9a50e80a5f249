package model

import "time"

// Appointment statuses. Staff move an appointment forward
// (requested -> scheduled -> confirmed -> completed) or cancel it;
// the intake flow only ever writes StatusRequested or StatusScheduled.
const (
	StatusRequested = "requested"
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusRequested, StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Customer is one person across every submission channel, keyed by
// normalized phone. CPF and email are supplementary, not identity.
type Customer struct {
	ID        string
	Name      string
	Phone     string
	CPF       string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service is a bookable offering. Read-only from the intake flow's
// perspective; its name is copied onto appointments at creation time.
type Service struct {
	ID              string
	Name            string
	Description     string
	PriceCents      int64
	DurationMinutes int
	Active          bool
}

type Appointment struct {
	ID              string
	CustomerID      string
	ServiceID       string
	DoctorID        string
	PatientID       string
	AppointmentDate time.Time
	Status          string
	// ServiceName is a denormalized copy of the Service's name at
	// submission time, kept for history even if the catalog changes.
	ServiceName string
	Notes       []byte
	CreatedAt   time.Time

	// Joined for staff listings.
	CustomerName  string
	CustomerPhone string
}
