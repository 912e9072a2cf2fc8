package store

import (
	"context"

	"apptmed/backend/internal/domain"
)

// AppointmentStore is the durable-persistence collaborator. The engine
// hydrates from FetchAll at load time and writes through Upsert after
// successful mutations; a failed Upsert never rolls back an in-memory
// commit, so store state may trail the engine until the next sync.
type AppointmentStore interface {
	Upsert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	FetchAll(ctx context.Context) ([]domain.Appointment, error)
}
