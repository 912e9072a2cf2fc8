package domain

import (
	"fmt"
	"time"
)

// TimeSlot is a candidate booking window computed during a slot search. Slots
// are ephemeral: they are regenerated on every search and never persisted.
type TimeSlot struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	Available bool
}

// SlotID derives the stable slot identifier for a start instant.
func SlotID(start time.Time) string {
	return fmt.Sprintf("slot-%d", start.UnixMilli())
}
