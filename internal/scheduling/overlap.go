package scheduling

import (
	"time"

	"apptmed/backend/internal/domain"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals (aEnd == bStart) do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasConflict reports whether candidate overlaps any member of existing.
// An existing appointment is ignored when it is the candidate itself (no
// self-conflict on update), when it is cancelled, or when both sides carry a
// staff participant and the staff differ.
func HasConflict(candidate domain.Appointment, existing []domain.Appointment) bool {
	for _, appt := range existing {
		if appt.ID == candidate.ID {
			continue
		}
		if appt.Status == domain.StatusCancelled {
			continue
		}
		if candidate.Staff != nil && appt.Staff != nil && appt.Staff.ID != candidate.Staff.ID {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, appt.StartTime, appt.EndTime) {
			return true
		}
	}
	return false
}
