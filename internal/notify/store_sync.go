package notify

import (
	"context"
	"log/slog"

	"apptmed/backend/internal/domain"
	"apptmed/backend/internal/scheduling"
	"apptmed/backend/internal/store"
)

// StoreSyncObserver writes every committed change through to the durable
// store. An upsert failure is logged and dropped: the in-memory commit
// stands, and the periodic snapshot converges the store later.
type StoreSyncObserver struct {
	store store.AppointmentStore
	log   *slog.Logger
}

func NewStoreSyncObserver(st store.AppointmentStore, log *slog.Logger) *StoreSyncObserver {
	if log == nil {
		log = slog.Default()
	}
	return &StoreSyncObserver{
		store: st,
		log:   log.With(slog.String("component", "notify.store")),
	}
}

func (o *StoreSyncObserver) Notify(ctx context.Context, appt domain.Appointment, change scheduling.ChangeKind) {
	if _, err := o.store.Upsert(ctx, appt); err != nil {
		o.log.Warn(
			"store sync failed; state diverges until next snapshot",
			slog.Any("err", err),
			slog.String("appointment_id", appt.ID.String()),
			slog.String("change", string(change)),
		)
	}
}
