package scheduling

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"apptmed/backend/internal/domain"
)

// Engine owns the in-memory appointment collection and mediates every
// mutation through the active strategy's conflict check. All mutating
// operations are linearized behind a single write lock covering the full
// check-then-commit sequence, so two overlapping candidates can never both
// pass their conflict check. Reads take a shared lock and return copies.
type Engine struct {
	mu           sync.RWMutex
	appointments []domain.Appointment
	strategy     Strategy

	dispatcher *Dispatcher
	log        *slog.Logger
}

func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		strategy:   StandardStrategy{},
		dispatcher: NewDispatcher(log),
		log:        log.With(slog.String("component", "scheduling.engine")),
	}
}

// SetStrategy swaps the active strategy. The swap takes effect on the next
// operation and never re-evaluates already-committed appointments.
func (e *Engine) SetStrategy(s Strategy) {
	if s == nil {
		s = StandardStrategy{}
	}
	e.mu.Lock()
	e.strategy = s
	e.mu.Unlock()
}

// Subscribe registers an observer for appointment change events.
func (e *Engine) Subscribe(obs Observer) {
	e.dispatcher.Subscribe(obs)
}

// Unsubscribe removes a previously registered observer.
func (e *Engine) Unsubscribe(obs Observer) {
	e.dispatcher.Unsubscribe(obs)
}

// Load replaces the working collection wholesale, typically with state read
// from the durable store. It does not re-validate the supplied appointments:
// externally-loaded conflicts are the supplier's to resolve.
func (e *Engine) Load(appointments []domain.Appointment) {
	loaded := make([]domain.Appointment, len(appointments))
	for i, appt := range appointments {
		loaded[i] = appt.Clone()
	}
	e.mu.Lock()
	e.appointments = loaded
	e.mu.Unlock()
	e.log.Info("collection loaded", slog.Int("count", len(loaded)))
}

// ListAll returns a snapshot copy of the collection. Mutating the result
// does not affect engine state.
func (e *Engine) ListAll() []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Appointment, len(e.appointments))
	for i, appt := range e.appointments {
		out[i] = appt.Clone()
	}
	return out
}

// FindSlots runs a slot search through the active strategy against a
// consistent snapshot of the collection.
func (e *Engine) FindSlots(day time.Time, duration time.Duration, staff *domain.Participant) []domain.TimeSlot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.strategy.FindAvailableSlots(day, duration, staff, e.appointments)
}

type CreateInput struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Client      domain.Participant
	Staff       *domain.Participant
	Type        domain.AppointmentType
	Location    string
	Notes       string

	// Clients lists every attendee of a group appointment. When empty,
	// Client is the sole attendee.
	Clients []domain.Participant
	// RecurrencePattern applies to recurring appointments only.
	RecurrencePattern string
}

// Create builds an appointment via the type-specific factory, checks it for
// conflicts through the active strategy, and commits it. On success the
// created change is dispatched to observers; on any failure nothing is
// mutated and nothing is dispatched.
func (e *Engine) Create(ctx context.Context, in CreateInput) (domain.Appointment, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Appointment{}, validationError("title is required")
	}
	if in.Client.ID == uuid.Nil && len(in.Clients) == 0 {
		return domain.Appointment{}, validationError("client is required")
	}
	if in.Staff == nil || in.Staff.ID == uuid.Nil {
		return domain.Appointment{}, validationError("staff is required")
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if !end.After(start) {
		return domain.Appointment{}, validationError("end_time must be after start_time")
	}

	typ := in.Type
	if typ == "" {
		typ = domain.TypeOneOnOne
	}

	var (
		appt domain.Appointment
		err  error
	)
	switch typ {
	case domain.TypeOneOnOne:
		appt, err = domain.NewOneOnOneAppointment(title, start, end, in.Client, in.Staff)
	case domain.TypeGroup:
		clients := in.Clients
		if len(clients) == 0 {
			clients = []domain.Participant{in.Client}
		}
		appt, err = domain.NewGroupAppointment(title, start, end, clients, in.Staff)
	case domain.TypeRecurring:
		appt, err = domain.NewRecurringAppointment(title, start, end, in.Client, in.Staff, in.RecurrencePattern)
	default:
		return domain.Appointment{}, validationError("unknown appointment type")
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	appt.Description = in.Description
	appt.Location = in.Location
	appt.Notes = in.Notes

	e.mu.Lock()
	if e.strategy.CheckConflicts(appt, e.appointments) {
		e.mu.Unlock()
		return domain.Appointment{}, ErrConflict
	}
	e.appointments = append(e.appointments, appt)
	out := appt.Clone()
	e.mu.Unlock()

	e.log.Info(
		"appointment created",
		slog.String("appointment_id", out.ID.String()),
		slog.Time("start_time", out.StartTime),
		slog.Time("end_time", out.EndTime),
	)
	e.dispatcher.Dispatch(ctx, out, ChangeCreated)
	return out, nil
}

// UpdateStatus replaces an appointment's status and refreshes its UpdatedAt.
// Cancelled and completed are terminal: the only accepted transition out of
// them is to the same status, which succeeds as a no-op so that Cancel stays
// idempotent. Status changes dispatch the updated change, except a
// transition to cancelled which dispatches cancelled.
func (e *Engine) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	if !status.Valid() {
		return domain.Appointment{}, validationError("unknown appointment status")
	}

	e.mu.Lock()
	idx := e.indexOfLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return domain.Appointment{}, ErrNotFound
	}
	current := e.appointments[idx].Status
	if current.Terminal() {
		out := e.appointments[idx].Clone()
		e.mu.Unlock()
		if status == current {
			return out, nil
		}
		return domain.Appointment{}, validationError("appointment is " + string(current))
	}
	e.appointments[idx].Status = status
	e.appointments[idx].UpdatedAt = time.Now().UTC()
	out := e.appointments[idx].Clone()
	e.mu.Unlock()

	change := ChangeUpdated
	if status == domain.StatusCancelled {
		change = ChangeCancelled
	}
	e.log.Info(
		"appointment status updated",
		slog.String("appointment_id", out.ID.String()),
		slog.String("status", string(status)),
	)
	e.dispatcher.Dispatch(ctx, out, change)
	return out, nil
}

// Cancel transitions the appointment to cancelled. Appointments are never
// removed from the collection, only cancelled.
func (e *Engine) Cancel(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	return e.UpdateStatus(ctx, id, domain.StatusCancelled)
}

// Reschedule moves an appointment to a new interval after re-running the
// conflict check, with the appointment itself excluded, against the rest of
// the collection. On conflict the stored appointment is left entirely
// untouched.
func (e *Engine) Reschedule(ctx context.Context, id uuid.UUID, newStart, newEnd time.Time) (domain.Appointment, error) {
	start := newStart.UTC()
	end := newEnd.UTC()
	if !end.After(start) {
		return domain.Appointment{}, validationError("end_time must be after start_time")
	}

	e.mu.Lock()
	idx := e.indexOfLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return domain.Appointment{}, ErrNotFound
	}
	if status := e.appointments[idx].Status; status.Terminal() {
		e.mu.Unlock()
		return domain.Appointment{}, validationError("cannot reschedule a " + string(status) + " appointment")
	}

	provisional := e.appointments[idx].Clone()
	provisional.StartTime = start
	provisional.EndTime = end
	if e.strategy.CheckConflicts(provisional, e.appointments) {
		e.mu.Unlock()
		return domain.Appointment{}, ErrConflict
	}

	e.appointments[idx].StartTime = start
	e.appointments[idx].EndTime = end
	e.appointments[idx].UpdatedAt = time.Now().UTC()
	out := e.appointments[idx].Clone()
	e.mu.Unlock()

	e.log.Info(
		"appointment rescheduled",
		slog.String("appointment_id", out.ID.String()),
		slog.Time("start_time", out.StartTime),
		slog.Time("end_time", out.EndTime),
	)
	e.dispatcher.Dispatch(ctx, out, ChangeRescheduled)
	return out, nil
}

func (e *Engine) indexOfLocked(id uuid.UUID) int {
	for i, appt := range e.appointments {
		if appt.ID == id {
			return i
		}
	}
	return -1
}
