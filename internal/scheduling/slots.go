package scheduling

import (
	"time"

	"apptmed/backend/internal/domain"
)

// Business window for slot searches, local to the requested day.
const (
	businessDayStartHour = 9
	businessDayEndHour   = 17
	slotGridStep         = 30 * time.Minute
)

// FindSlots enumerates candidate slots of the given duration on day,
// starting on a 30-minute grid between 09:00 and 17:00 local time. Every
// grid slot is returned; unavailable ones carry Available=false so callers
// can render them disabled. Availability is checked against existing,
// restricted to the given staff when staff is non-nil.
//
// Slots near the end of the window are not clipped: a 60-minute search still
// yields a 16:30 slot ending at 17:30. This mirrors long-standing behavior
// that callers depend on for rendering.
func FindSlots(day time.Time, duration time.Duration, staff *domain.Participant, existing []domain.Appointment) []domain.TimeSlot {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), businessDayStartHour, 0, 0, 0, day.Location())
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), businessDayEndHour, 0, 0, 0, day.Location())

	var slots []domain.TimeSlot
	for start := dayStart; start.Before(dayEnd); start = start.Add(slotGridStep) {
		end := start.Add(duration)
		probe := domain.Appointment{
			StartTime: start,
			EndTime:   end,
			Staff:     staff,
		}
		slots = append(slots, domain.TimeSlot{
			ID:        domain.SlotID(start),
			StartTime: start,
			EndTime:   end,
			Available: !HasConflict(probe, existing),
		})
	}
	return slots
}
