package domain

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is one of the known appointment statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether s admits no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

type AppointmentType string

const (
	TypeOneOnOne  AppointmentType = "one-on-one"
	TypeGroup     AppointmentType = "group"
	TypeRecurring AppointmentType = "recurring"
)

// Appointment is a booked time interval between a client and a staff
// participant. The interval is half-open: [StartTime, EndTime). The type only
// affects which optional fields are attached, never scheduling behavior.
type Appointment struct {
	ID          uuid.UUID
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Client      Participant
	Staff       *Participant
	Status      AppointmentStatus
	Type        AppointmentType
	Location    string
	Notes       string

	// Clients is populated for group appointments; Clients[0] is the
	// primary client.
	Clients []Participant
	// RecurrencePattern is populated for recurring appointments. The engine
	// treats it as opaque; expansion happens outside the core.
	RecurrencePattern string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy that shares no mutable state with a.
func (a Appointment) Clone() Appointment {
	out := a
	if a.Staff != nil {
		staff := *a.Staff
		out.Staff = &staff
	}
	if a.Clients != nil {
		out.Clients = make([]Participant, len(a.Clients))
		copy(out.Clients, a.Clients)
	}
	return out
}
