package scheduling

import (
	"context"
	"log/slog"
	"sync"

	"apptmed/backend/internal/domain"
)

// ChangeKind labels the state change that triggered a dispatch.
type ChangeKind string

const (
	ChangeCreated     ChangeKind = "created"
	ChangeUpdated     ChangeKind = "updated"
	ChangeRescheduled ChangeKind = "rescheduled"
	ChangeCancelled   ChangeKind = "cancelled"
)

// Observer consumes appointment change events. Observers are side-effect-only:
// they receive a private copy of the appointment and nothing they return or
// mutate reaches the engine.
type Observer interface {
	Notify(ctx context.Context, appt domain.Appointment, change ChangeKind)
}

// Dispatcher fans appointment changes out to subscribed observers,
// synchronously and in subscription order. A failing observer never blocks
// delivery to the rest.
type Dispatcher struct {
	mu        sync.Mutex
	observers []Observer
	log       *slog.Logger
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		log: log.With(slog.String("component", "scheduling.dispatcher")),
	}
}

func (d *Dispatcher) Subscribe(obs Observer) {
	if obs == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, obs)
}

func (d *Dispatcher) Unsubscribe(obs Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.observers[:0]
	for _, o := range d.observers {
		if o != obs {
			kept = append(kept, o)
		}
	}
	d.observers = kept
}

// Dispatch delivers the change to every observer subscribed at the moment of
// the call. The subscriber list is snapshotted first, so an observer that
// unsubscribes itself mid-dispatch still sees this delivery complete.
func (d *Dispatcher) Dispatch(ctx context.Context, appt domain.Appointment, change ChangeKind) {
	d.mu.Lock()
	snapshot := make([]Observer, len(d.observers))
	copy(snapshot, d.observers)
	d.mu.Unlock()

	for _, obs := range snapshot {
		d.notifyOne(ctx, obs, appt, change)
	}
}

func (d *Dispatcher) notifyOne(ctx context.Context, obs Observer, appt domain.Appointment, change ChangeKind) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error(
				"observer panicked",
				slog.Any("panic", r),
				slog.String("appointment_id", appt.ID.String()),
				slog.String("change", string(change)),
			)
		}
	}()
	obs.Notify(ctx, appt.Clone(), change)
}
