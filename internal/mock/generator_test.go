package mock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agent-console/agentstream/internal/event"
	"github.com/agent-console/agentstream/internal/session"
)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Publish(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func bySession(events []event.Event) map[string][]event.Event {
	out := make(map[string][]event.Event)
	for _, ev := range events {
		out[ev.SessionID] = append(out[ev.SessionID], ev)
	}
	return out
}

func TestRunOncePlaysAllScripts(t *testing.T) {
	rec := &recorder{}
	gen := New(rec, time.Millisecond)
	gen.RunOnce(context.Background())

	sessions := bySession(rec.snapshot())
	wantIDs := []string{"mock-quick-fix", "mock-risky-migration", "mock-doomed-build"}
	if len(sessions) != len(wantIDs) {
		t.Fatalf("got %d sessions, want %d", len(sessions), len(wantIDs))
	}

	for _, id := range wantIDs {
		events, ok := sessions[id]
		if !ok {
			t.Errorf("script %s never ran", id)
			continue
		}
		if events[0].Type != event.TypeRunStarted {
			t.Errorf("%s first event = %s, want RUN_STARTED", id, events[0].Type)
		}
		if last := events[len(events)-1]; last.Type != event.TypeRunFinished {
			t.Errorf("%s last event = %s, want RUN_FINISHED", id, last.Type)
		}

		var starts, finishes int
		for _, ev := range events {
			switch ev.Type {
			case event.TypeRunStarted:
				starts++
			case event.TypeRunFinished:
				finishes++
			}
		}
		if starts != 1 || finishes != 1 {
			t.Errorf("%s has %d starts and %d finishes, want 1 each", id, starts, finishes)
		}
	}
}

func TestScriptStatuses(t *testing.T) {
	rec := &recorder{}
	gen := New(rec, time.Millisecond)
	gen.RunOnce(context.Background())

	want := map[string]event.Status{
		"mock-quick-fix":       event.StatusSuccess,
		"mock-risky-migration": event.StatusSuccess,
		"mock-doomed-build":    event.StatusFailed,
	}
	for id, events := range bySession(rec.snapshot()) {
		last := events[len(events)-1]
		data, ok := last.Data.(event.RunFinished)
		if !ok {
			t.Fatalf("%s last event data = %T", id, last.Data)
		}
		if data.Status != want[id] {
			t.Errorf("%s status = %q, want %q", id, data.Status, want[id])
		}
	}
}

func TestApprovalPayloadWellFormed(t *testing.T) {
	rec := &recorder{}
	gen := New(rec, time.Millisecond)
	gen.RunOnce(context.Background())

	var waiting *event.WaitingForHuman
	for _, ev := range rec.snapshot() {
		if ev.SessionID != "mock-risky-migration" {
			continue
		}
		if data, ok := ev.Data.(event.WaitingForHuman); ok {
			if waiting != nil {
				t.Fatal("script emitted more than one WAITING_FOR_HUMAN")
			}
			w := data
			waiting = &w
		}
	}
	if waiting == nil {
		t.Fatal("risky migration script never waited for a human")
	}
	if waiting.Approval == nil {
		t.Fatal("waiting event carries no approval payload")
	}
	if waiting.Approval.Component != event.ComponentApprovalButtons {
		t.Errorf("component = %q", waiting.Approval.Component)
	}
	if waiting.Approval.Props.Command == "" {
		t.Error("approval command is empty")
	}
	actions := waiting.Approval.Props.Actions
	if len(actions) != 2 || actions[0].ActionType != event.ActionApprove || actions[1].ActionType != event.ActionReject {
		t.Errorf("actions = %+v, want approve/reject pair", actions)
	}
}

func TestScriptsInterleave(t *testing.T) {
	rec := &recorder{}
	gen := New(rec, time.Millisecond)
	gen.RunOnce(context.Background())

	// Each tick advances every live script, so the first three events
	// are the three RUN_STARTED announcements.
	events := rec.snapshot()
	if len(events) < 3 {
		t.Fatalf("only %d events emitted", len(events))
	}
	seen := make(map[string]bool)
	for _, ev := range events[:3] {
		if ev.Type != event.TypeRunStarted {
			t.Errorf("early event %s is not RUN_STARTED", ev.Type)
		}
		seen[ev.SessionID] = true
	}
	if len(seen) != 3 {
		t.Errorf("first tick covered %d sessions, want 3", len(seen))
	}
}

func TestStartHonorsContext(t *testing.T) {
	rec := &recorder{}
	gen := New(rec, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	gen.Start(ctx)
	time.Sleep(12 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	before := len(rec.snapshot())
	if before == 0 {
		t.Fatal("no events before cancel")
	}
	time.Sleep(30 * time.Millisecond)
	if after := len(rec.snapshot()); after != before {
		t.Errorf("events kept flowing after cancel: %d -> %d", before, after)
	}
}

func TestScriptsDriveTracker(t *testing.T) {
	tracker := session.NewTracker()
	gen := New(event.SinkFunc(tracker.Apply), time.Millisecond)
	gen.RunOnce(context.Background())

	all := tracker.List()
	if len(all) != 3 {
		t.Fatalf("tracker saw %d sessions, want 3", len(all))
	}
	for _, snap := range all {
		if snap.Phase != session.Finished {
			t.Errorf("session %s phase = %v, want finished", snap.ID, snap.Phase)
		}
	}
	if tracker.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d after replay, want 0", tracker.ActiveCount())
	}
}
