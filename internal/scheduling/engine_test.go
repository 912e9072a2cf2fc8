package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"apptmed/backend/internal/domain"
)

func newTestEngine() *Engine {
	return NewEngine(nil)
}

func mustCreate(t *testing.T, e *Engine, in CreateInput) domain.Appointment {
	t.Helper()
	appt, err := e.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return appt
}

func TestEngineCreate_Validation(t *testing.T) {
	start := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	valid := CreateInput{
		Title:     "Kickoff",
		StartTime: start,
		EndTime:   end,
		Client:    clientC,
		Staff:     &staffS,
	}

	tests := []struct {
		name   string
		mutate func(in *CreateInput)
	}{
		{"missing title", func(in *CreateInput) { in.Title = "  " }},
		{"missing client", func(in *CreateInput) { in.Client = domain.Participant{} }},
		{"missing staff", func(in *CreateInput) { in.Staff = nil }},
		{"end equals start", func(in *CreateInput) { in.EndTime = in.StartTime }},
		{"end before start", func(in *CreateInput) { in.EndTime = in.StartTime.Add(-time.Hour) }},
		{"unknown type", func(in *CreateInput) { in.Type = "open-ended" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			in := valid
			tt.mutate(&in)

			_, err := e.Create(context.Background(), in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if got := len(e.ListAll()); got != 0 {
				t.Fatalf("collection size = %d, want 0", got)
			}
		})
	}
}

func TestEngineCreate_RejectsConflictForSameStaff(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	mustCreate(t, e, CreateInput{
		Title:     "Kickoff",
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Client:    clientC,
		Staff:     &staffS,
	})

	_, err := e.Create(context.Background(), CreateInput{
		Title:     "Overlap",
		StartTime: day.Add(10*time.Hour + 30*time.Minute),
		EndTime:   day.Add(11*time.Hour + 30*time.Minute),
		Client:    clientD,
		Staff:     &staffS,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want %v", err, ErrConflict)
	}

	// Same interval with different staff is fine.
	mustCreate(t, e, CreateInput{
		Title:     "Different staff",
		StartTime: day.Add(10*time.Hour + 30*time.Minute),
		EndTime:   day.Add(11*time.Hour + 30*time.Minute),
		Client:    clientD,
		Staff:     &staffT,
	})

	if got := len(e.ListAll()); got != 2 {
		t.Fatalf("collection size = %d, want 2", got)
	}
}

func TestEngineCreate_FactoryShapes(t *testing.T) {
	e := newTestEngine()
	start := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	group := mustCreate(t, e, CreateInput{
		Title:     "Workshop",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Client:    clientC,
		Staff:     &staffS,
		Type:      domain.TypeGroup,
		Clients:   []domain.Participant{clientC, clientD},
	})
	if group.Type != domain.TypeGroup {
		t.Fatalf("type = %q, want %q", group.Type, domain.TypeGroup)
	}
	if len(group.Clients) != 2 || group.Client.ID != clientC.ID {
		t.Fatalf("group clients = %v, primary = %v", group.Clients, group.Client)
	}

	recurring := mustCreate(t, e, CreateInput{
		Title:     "Standup",
		StartTime: start.Add(2 * time.Hour),
		EndTime:   start.Add(3 * time.Hour),
		Client:    clientC,
		Staff:     &staffS,
		Type:      domain.TypeRecurring,
	})
	if recurring.RecurrencePattern != domain.DefaultRecurrencePattern {
		t.Fatalf("pattern = %q, want %q", recurring.RecurrencePattern, domain.DefaultRecurrencePattern)
	}
	if recurring.Status != domain.StatusPending {
		t.Fatalf("status = %q, want %q", recurring.Status, domain.StatusPending)
	}
}

func TestEngineReschedule_ConflictLeavesOriginalUntouched(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	mustCreate(t, e, CreateInput{
		Title:     "First",
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Client:    clientC,
		Staff:     &staffS,
	})
	second := mustCreate(t, e, CreateInput{
		Title:     "Second",
		StartTime: day.Add(13 * time.Hour),
		EndTime:   day.Add(14 * time.Hour),
		Client:    clientD,
		Staff:     &staffS,
	})

	_, err := e.Reschedule(context.Background(), second.ID, day.Add(10*time.Hour+30*time.Minute), day.Add(11*time.Hour+30*time.Minute))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want %v", err, ErrConflict)
	}

	var stored domain.Appointment
	for _, appt := range e.ListAll() {
		if appt.ID == second.ID {
			stored = appt
		}
	}
	if !stored.StartTime.Equal(second.StartTime) || !stored.EndTime.Equal(second.EndTime) {
		t.Fatalf("interval changed after rejected reschedule: [%v, %v)", stored.StartTime, stored.EndTime)
	}
	if !stored.UpdatedAt.Equal(second.UpdatedAt) {
		t.Fatalf("updated_at changed after rejected reschedule")
	}
}

func TestEngineReschedule_EndToEndWithSlots(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	kickoff := mustCreate(t, e, CreateInput{
		Title:     "Kickoff",
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Client:    clientC,
		Staff:     &staffS,
	})

	moved, err := e.Reschedule(context.Background(), kickoff.ID, day.Add(11*time.Hour), day.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	if !moved.StartTime.Equal(day.Add(11 * time.Hour)) {
		t.Fatalf("start = %v, want %v", moved.StartTime, day.Add(11*time.Hour))
	}

	slots := e.FindSlots(day, 30*time.Minute, &staffS)
	byStart := make(map[int]bool)
	for _, slot := range slots {
		byStart[slot.StartTime.Hour()*60+slot.StartTime.Minute()] = slot.Available
	}
	if avail := byStart[11*60]; avail {
		t.Fatalf("11:00 slot available = true, want false")
	}
	if avail := byStart[9*60]; !avail {
		t.Fatalf("09:00 slot available = false, want true")
	}
}

func TestEngineReschedule_NotFoundAndTerminal(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	_, err := e.Reschedule(context.Background(), uuid.New(), day.Add(10*time.Hour), day.Add(11*time.Hour))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, ErrNotFound)
	}

	appt := mustCreate(t, e, CreateInput{
		Title:     "Doomed",
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Client:    clientC,
		Staff:     &staffS,
	})
	if _, err := e.Cancel(context.Background(), appt.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	_, err = e.Reschedule(context.Background(), appt.ID, day.Add(12*time.Hour), day.Add(13*time.Hour))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
}

func TestEngineCancel_Idempotent(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	var changes []ChangeKind
	e.Subscribe(&fakeObserver{notifyFn: func(ctx context.Context, appt domain.Appointment, change ChangeKind) {
		changes = append(changes, change)
	}})

	appt := mustCreate(t, e, CreateInput{
		Title:     "Once",
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Client:    clientC,
		Staff:     &staffS,
	})

	first, err := e.Cancel(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if first.Status != domain.StatusCancelled {
		t.Fatalf("status = %q, want %q", first.Status, domain.StatusCancelled)
	}

	again, err := e.Cancel(context.Background(), appt.ID)
	if err != nil {
		t.Fatalf("second Cancel error: %v", err)
	}
	if again.Status != domain.StatusCancelled {
		t.Fatalf("status = %q, want %q", again.Status, domain.StatusCancelled)
	}

	want := []ChangeKind{ChangeCreated, ChangeCancelled}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("changes[%d] = %q, want %q", i, changes[i], want[i])
		}
	}
}

func TestEngineCancel_FreesTheSlot(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	appt := mustCreate(t, e, CreateInput{
		Title:     "Blocker",
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Client:    clientC,
		Staff:     &staffS,
	})
	if _, err := e.Cancel(context.Background(), appt.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}

	mustCreate(t, e, CreateInput{
		Title:     "Replacement",
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
		Client:    clientD,
		Staff:     &staffS,
	})
}

func TestEngineUpdateStatus(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	t.Run("not found", func(t *testing.T) {
		_, err := e.UpdateStatus(context.Background(), uuid.New(), domain.StatusConfirmed)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("error = %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := e.UpdateStatus(context.Background(), uuid.New(), "paused")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("error type = %T, want *ValidationError", err)
		}
	})

	t.Run("refreshes updated_at", func(t *testing.T) {
		appt := mustCreate(t, e, CreateInput{
			Title:     "Confirmable",
			StartTime: day.Add(9 * time.Hour),
			EndTime:   day.Add(10 * time.Hour),
			Client:    clientC,
			Staff:     &staffS,
		})

		confirmed, err := e.UpdateStatus(context.Background(), appt.ID, domain.StatusConfirmed)
		if err != nil {
			t.Fatalf("UpdateStatus error: %v", err)
		}
		if confirmed.Status != domain.StatusConfirmed {
			t.Fatalf("status = %q, want %q", confirmed.Status, domain.StatusConfirmed)
		}
		if confirmed.UpdatedAt.Before(appt.UpdatedAt) {
			t.Fatalf("updated_at not refreshed: %v < %v", confirmed.UpdatedAt, appt.UpdatedAt)
		}
	})

	t.Run("terminal state rejects new status", func(t *testing.T) {
		appt := mustCreate(t, e, CreateInput{
			Title:     "Done",
			StartTime: day.Add(12 * time.Hour),
			EndTime:   day.Add(13 * time.Hour),
			Client:    clientC,
			Staff:     &staffS,
		})
		if _, err := e.UpdateStatus(context.Background(), appt.ID, domain.StatusConfirmed); err != nil {
			t.Fatalf("UpdateStatus error: %v", err)
		}
		if _, err := e.UpdateStatus(context.Background(), appt.ID, domain.StatusCompleted); err != nil {
			t.Fatalf("UpdateStatus error: %v", err)
		}

		_, err := e.UpdateStatus(context.Background(), appt.ID, domain.StatusConfirmed)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("error type = %T, want *ValidationError", err)
		}
	})
}

func TestEngineLoadAndListAll(t *testing.T) {
	e := newTestEngine()
	start := time.Date(2024, 1, 8, 10, 0, 0, 0, time.UTC)

	loaded := []domain.Appointment{
		testAppointment("00000000-0000-0000-0000-0000000000a1", start, start.Add(time.Hour), &staffS),
	}
	e.Load(loaded)

	out := e.ListAll()
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}

	// The returned snapshot is a copy; mutating it must not reach the engine.
	out[0].Title = "mutated"
	out[0].Staff.Name = "mutated"
	fresh := e.ListAll()
	if fresh[0].Title != "t" {
		t.Fatalf("title = %q, want %q", fresh[0].Title, "t")
	}
	if fresh[0].Staff.Name != "Sam" {
		t.Fatalf("staff name = %q, want %q", fresh[0].Staff.Name, "Sam")
	}

	// Load replaces the collection wholesale.
	e.Load(nil)
	if got := len(e.ListAll()); got != 0 {
		t.Fatalf("collection size = %d, want 0", got)
	}
}

func TestEngineCreate_ConcurrentOverlapAdmitsOne(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Create(context.Background(), CreateInput{
				Title:     "Race",
				StartTime: day.Add(10 * time.Hour),
				EndTime:   day.Add(11 * time.Hour),
				Client:    clientC,
				Staff:     &staffS,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("created = %d, want exactly 1", created)
	}
}

func TestEngineSetStrategy_TakesEffectOnNextCall(t *testing.T) {
	e := newTestEngine()
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	standard := e.FindSlots(day, 30*time.Minute, &staffS)
	if !standard[0].StartTime.Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("standard first slot = %v, want 09:00", standard[0].StartTime)
	}

	e.SetStrategy(PrioritizedStrategy{})
	prioritized := e.FindSlots(day, 30*time.Minute, &staffS)
	if len(prioritized) != len(standard) {
		t.Fatalf("len(prioritized) = %d, want %d", len(prioritized), len(standard))
	}
	// Still morning-first with an empty collection; first slot unchanged.
	if !prioritized[0].StartTime.Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("prioritized first slot = %v, want 09:00", prioritized[0].StartTime)
	}
}
