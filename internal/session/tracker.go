package session

import (
	"sort"
	"sync"

	"github.com/agent-console/agentstream/internal/event"
)

// TransitionFunc observes a session's phase changes. For a session
// seen for the first time old equals new.
type TransitionFunc func(old, new Phase, snap Snapshot)

// Tracker folds lifecycle events into per-session snapshots. It is
// typically subscribed to a dispatcher, but any event source works.
// All methods are safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*Snapshot

	// onTransition, when set, runs synchronously whenever a session is
	// created or changes phase. It runs with the tracker lock held and
	// must not call back into the Tracker.
	onTransition TransitionFunc
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[string]*Snapshot)}
}

// OnTransition installs a callback observing phase changes. Set it
// before events flow; installing it later misses earlier transitions.
func (t *Tracker) OnTransition(fn TransitionFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTransition = fn
}

// Apply folds one event into the tracked state. Events for a session
// that has not announced RUN_STARTED are dropped, except RUN_STARTED
// itself, which creates (or restarts) the session.
func (t *Tracker) Apply(ev event.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.sessions[ev.SessionID]

	if data, ok := ev.Data.(event.RunStarted); ok {
		old := Running
		if snap != nil {
			old = snap.Phase
		}
		snap = &Snapshot{
			ID:          ev.SessionID,
			AgentName:   data.AgentName,
			Phase:       Running,
			StartedAt:   ev.Timestamp,
			LastEventAt: ev.Timestamp,
		}
		t.sessions[ev.SessionID] = snap
		t.notifyLocked(old, snap)
		return
	}
	if snap == nil {
		return
	}
	snap.LastEventAt = ev.Timestamp

	switch data := ev.Data.(type) {
	case event.TextMessageContent:
		// Plain output does not resolve a pending prompt, so the
		// waiting phase survives text deltas.
		snap.LastMessage = data.Delta
		snap.Lines++
	case event.StepStarted:
		snap.LastTool = data.ToolName
		snap.Tools++
		if snap.Phase == WaitingForHuman {
			// The agent moved on; the prompt is stale.
			snap.Phase = Running
			snap.WaitingReason = ""
			snap.PendingApproval = nil
			t.notifyLocked(WaitingForHuman, snap)
		}
	case event.WaitingForHuman:
		old := snap.Phase
		snap.WaitingReason = data.Reason
		snap.PendingApproval = data.Approval
		if old != WaitingForHuman {
			snap.Phase = WaitingForHuman
			t.notifyLocked(old, snap)
		}
	case event.RunFinished:
		old := snap.Phase
		snap.Status = data.Status
		finished := ev.Timestamp
		snap.FinishedAt = &finished
		snap.WaitingReason = ""
		snap.PendingApproval = nil
		if old != Finished {
			snap.Phase = Finished
			t.notifyLocked(old, snap)
		}
	}
}

func (t *Tracker) notifyLocked(old Phase, snap *Snapshot) {
	if t.onTransition != nil {
		t.onTransition(old, snap.Phase, snap.clone())
	}
}

// Get returns a copy of one session's snapshot.
func (t *Tracker) Get(id string) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap, ok := t.sessions[id]
	if !ok {
		return Snapshot{}, false
	}
	return snap.clone(), true
}

// List returns copies of all snapshots, ordered by start time and then
// by session id for a stable presentation.
func (t *Tracker) List() []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Snapshot, 0, len(t.sessions))
	for _, snap := range t.sessions {
		out = append(out, snap.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Waiting returns the sessions blocked on a human, in List order.
func (t *Tracker) Waiting() []Snapshot {
	all := t.List()
	out := all[:0]
	for _, snap := range all {
		if snap.Phase == WaitingForHuman {
			out = append(out, snap)
		}
	}
	return out
}

// Remove forgets a session.
func (t *Tracker) Remove(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// ActiveCount returns the number of sessions that have not finished.
func (t *Tracker) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, snap := range t.sessions {
		if !snap.IsTerminal() {
			n++
		}
	}
	return n
}
