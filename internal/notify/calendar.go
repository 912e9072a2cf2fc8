package notify

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"apptmed/backend/internal/domain"
	"apptmed/backend/internal/scheduling"
)

// CalendarClient mirrors appointments into an external calendar.
type CalendarClient interface {
	PutEvent(ctx context.Context, appt domain.Appointment) error
	RemoveEvent(ctx context.Context, id uuid.UUID) error
}

// CalendarSyncObserver keeps an external calendar in step with the engine:
// cancellations remove the event, every other change upserts it. Sync
// failures are logged and never surface to the engine.
type CalendarSyncObserver struct {
	client CalendarClient
	log    *slog.Logger
}

func NewCalendarSyncObserver(client CalendarClient, log *slog.Logger) *CalendarSyncObserver {
	if log == nil {
		log = slog.Default()
	}
	return &CalendarSyncObserver{
		client: client,
		log:    log.With(slog.String("component", "notify.calendar")),
	}
}

func (o *CalendarSyncObserver) Notify(ctx context.Context, appt domain.Appointment, change scheduling.ChangeKind) {
	var err error
	if change == scheduling.ChangeCancelled {
		err = o.client.RemoveEvent(ctx, appt.ID)
	} else {
		err = o.client.PutEvent(ctx, appt)
	}
	if err != nil {
		o.log.Error(
			"calendar sync failed",
			slog.Any("err", err),
			slog.String("appointment_id", appt.ID.String()),
			slog.String("change", string(change)),
		)
	}
}

// LogCalendarClient records sync calls instead of performing them. It is the
// default client when no calendar integration is configured.
type LogCalendarClient struct {
	log *slog.Logger
}

func NewLogCalendarClient(log *slog.Logger) *LogCalendarClient {
	if log == nil {
		log = slog.Default()
	}
	return &LogCalendarClient{log: log.With(slog.String("component", "notify.calendar.log"))}
}

func (c *LogCalendarClient) PutEvent(ctx context.Context, appt domain.Appointment) error {
	c.log.Info("calendar event upserted", slog.String("appointment_id", appt.ID.String()))
	return nil
}

func (c *LogCalendarClient) RemoveEvent(ctx context.Context, id uuid.UUID) error {
	c.log.Info("calendar event removed", slog.String("appointment_id", id.String()))
	return nil
}
