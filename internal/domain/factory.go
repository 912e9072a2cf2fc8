package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultRecurrencePattern = "weekly"

// NewOneOnOneAppointment builds a pending one-on-one appointment between a
// single client and a staff participant.
func NewOneOnOneAppointment(title string, start, end time.Time, client Participant, staff *Participant) (Appointment, error) {
	return newAppointment(title, start, end, client, staff, TypeOneOnOne)
}

// NewGroupAppointment builds a pending group appointment. clients[0] becomes
// the primary client.
func NewGroupAppointment(title string, start, end time.Time, clients []Participant, staff *Participant) (Appointment, error) {
	var primary Participant
	if len(clients) > 0 {
		primary = clients[0]
	}
	appt, err := newAppointment(title, start, end, primary, staff, TypeGroup)
	if err != nil {
		return Appointment{}, err
	}
	appt.Clients = make([]Participant, len(clients))
	copy(appt.Clients, clients)
	return appt, nil
}

// NewRecurringAppointment builds a pending recurring appointment carrying an
// opaque recurrence pattern, e.g. "weekly" or "bi-weekly".
func NewRecurringAppointment(title string, start, end time.Time, client Participant, staff *Participant, pattern string) (Appointment, error) {
	appt, err := newAppointment(title, start, end, client, staff, TypeRecurring)
	if err != nil {
		return Appointment{}, err
	}
	if pattern == "" {
		pattern = DefaultRecurrencePattern
	}
	appt.RecurrencePattern = pattern
	return appt, nil
}

func newAppointment(title string, start, end time.Time, client Participant, staff *Participant, typ AppointmentType) (Appointment, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Appointment{}, err
	}
	now := time.Now().UTC()
	appt := Appointment{
		ID:        id,
		Title:     title,
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		Client:    client,
		Status:    StatusPending,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if staff != nil {
		s := *staff
		appt.Staff = &s
	}
	return appt, nil
}
