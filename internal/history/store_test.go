package history

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecentEvents(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{ID: "a", Kind: "command", ChatID: 5, ActorID: 7, Command: "tasks", Outcome: OutcomeOK, CreatedAt: base},
		{ID: "b", Kind: "command", ChatID: 5, ActorID: 7, Command: "done", Outcome: OutcomeUserErr, Error: "invalid code", CreatedAt: base.Add(time.Minute)},
		{ID: "c", Kind: "callback", ChatID: -100, ActorID: 7, Command: "status", Outcome: OutcomeFault, Error: "via: server error", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, ev := range events {
		if err := store.RecordEvent(ev); err != nil {
			t.Fatalf("RecordEvent(%s): %v", ev.ID, err)
		}
	}

	recent, err := store.RecentEvents(2)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len = %d, want 2", len(recent))
	}
	if recent[0].ID != "c" || recent[1].ID != "b" {
		t.Errorf("order = %s, %s, want c, b", recent[0].ID, recent[1].ID)
	}
	if recent[0].Outcome != OutcomeFault || recent[0].Error != "via: server error" {
		t.Errorf("event c = %+v", recent[0])
	}
}

func TestRecordEventDefaultsTimestamp(t *testing.T) {
	store := newTestStore(t)

	if err := store.RecordEvent(Event{ID: "x", Kind: "command", Command: "help", Outcome: OutcomeOK}); err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}

	recent, err := store.RecentEvents(1)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(recent) != 1 || recent[0].CreatedAt.IsZero() {
		t.Errorf("timestamp not defaulted: %+v", recent)
	}
}

func TestDuplicateEventIDRejected(t *testing.T) {
	store := newTestStore(t)

	ev := Event{ID: "dup", Kind: "command", Command: "tasks", Outcome: OutcomeOK}
	if err := store.RecordEvent(ev); err != nil {
		t.Fatalf("first RecordEvent: %v", err)
	}
	if err := store.RecordEvent(ev); err == nil {
		t.Error("duplicate correlation id should be rejected")
	}
}
