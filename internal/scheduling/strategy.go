package scheduling

import (
	"sort"
	"time"

	"apptmed/backend/internal/domain"
)

// Strategy is a swappable slot-search and conflict-check policy. Strategies
// are stateless: the engine passes its current collection on every call, so
// swapping strategies never requires rebuilding engine state.
type Strategy interface {
	FindAvailableSlots(day time.Time, duration time.Duration, staff *domain.Participant, existing []domain.Appointment) []domain.TimeSlot
	CheckConflicts(candidate domain.Appointment, existing []domain.Appointment) bool
}

// StandardStrategy delegates to the overlap and slot-enumeration primitives
// with no reordering.
type StandardStrategy struct{}

func (StandardStrategy) FindAvailableSlots(day time.Time, duration time.Duration, staff *domain.Participant, existing []domain.Appointment) []domain.TimeSlot {
	return FindSlots(day, duration, staff, existing)
}

func (StandardStrategy) CheckConflicts(candidate domain.Appointment, existing []domain.Appointment) bool {
	return HasConflict(candidate, existing)
}

// PrioritizedStrategy wraps StandardStrategy and reorders results so slots
// starting before noon come first, ascending by start time within each half.
// Conflict checking is identical to Standard; ordering never changes which
// slots are available.
type PrioritizedStrategy struct {
	standard StandardStrategy
}

func (s PrioritizedStrategy) FindAvailableSlots(day time.Time, duration time.Duration, staff *domain.Participant, existing []domain.Appointment) []domain.TimeSlot {
	slots := s.standard.FindAvailableSlots(day, duration, staff, existing)
	sort.SliceStable(slots, func(i, j int) bool {
		iMorning := slots[i].StartTime.Hour() < 12
		jMorning := slots[j].StartTime.Hour() < 12
		if iMorning != jMorning {
			return iMorning
		}
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
	return slots
}

func (s PrioritizedStrategy) CheckConflicts(candidate domain.Appointment, existing []domain.Appointment) bool {
	return s.standard.CheckConflicts(candidate, existing)
}

// StrategyByName resolves a configured strategy name. Unknown names fall
// back to the standard strategy.
func StrategyByName(name string) Strategy {
	switch name {
	case "prioritized":
		return PrioritizedStrategy{}
	default:
		return StandardStrategy{}
	}
}
