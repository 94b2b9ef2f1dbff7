// Package mock replays canned agent lifecycles for development and
// demos. The generated events have the same shape and ordering
// guarantees as classified output, so downstream consumers cannot
// tell the difference.
package mock

import (
	"context"
	"time"

	"github.com/agent-console/agentstream/internal/event"
)

type scriptedSession struct {
	id    string
	steps []func(id string) event.Event
	next  int
	done  bool
}

// Generator emits scripted lifecycle events at a fixed pace. It is a
// single-driver type: call Start or RunOnce, not both.
type Generator struct {
	sink     event.Sink
	interval time.Duration
	sessions []*scriptedSession
}

// New builds a generator publishing to sink, advancing every script by
// one event per stepInterval.
func New(sink event.Sink, stepInterval time.Duration) *Generator {
	if stepInterval <= 0 {
		stepInterval = 500 * time.Millisecond
	}
	return &Generator{
		sink:     sink,
		interval: stepInterval,
		sessions: buildScripts(),
	}
}

// Start replays the scripts in the background until they finish or ctx
// is canceled.
func (g *Generator) Start(ctx context.Context) {
	go g.RunOnce(ctx)
}

// RunOnce replays every script to completion, pacing each step by the
// configured interval. It returns early when ctx is canceled.
func (g *Generator) RunOnce(ctx context.Context) {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !g.step() {
				return
			}
		}
	}
}

// step advances every unfinished session by one event and reports
// whether any steps remain.
func (g *Generator) step() bool {
	live := false
	for _, ms := range g.sessions {
		if ms.done {
			continue
		}
		g.sink.Publish(ms.steps[ms.next](ms.id))
		ms.next++
		if ms.next >= len(ms.steps) {
			ms.done = true
		} else {
			live = true
		}
	}
	return live
}

func buildScripts() []*scriptedSession {
	return []*scriptedSession{
		{
			id: "mock-quick-fix",
			steps: []func(string) event.Event{
				func(id string) event.Event { return event.NewRunStarted(id, "claude") },
				func(id string) event.Event {
					return event.NewTextMessage(id, "Reading the failing test output")
				},
				func(id string) event.Event {
					return event.NewStepStarted(id, "Read file: internal/auth/token.go")
				},
				func(id string) event.Event {
					return event.NewTextMessage(id, "The expiry check compares local time against a UTC timestamp.")
				},
				func(id string) event.Event {
					return event.NewStepStarted(id, "Edit file: internal/auth/token.go")
				},
				func(id string) event.Event {
					return event.NewStepStarted(id, "go test ./internal/auth/...")
				},
				func(id string) event.Event {
					return event.NewTextMessage(id, "All tests passing.")
				},
				func(id string) event.Event {
					return event.NewRunFinished(id, event.StatusSuccess)
				},
			},
		},
		{
			id: "mock-risky-migration",
			steps: []func(string) event.Event{
				func(id string) event.Event { return event.NewRunStarted(id, "claude") },
				func(id string) event.Event {
					return event.NewTextMessage(id, "Planning the schema migration")
				},
				func(id string) event.Event {
					return event.NewStepStarted(id, "Read file: migrations/0042_drop_legacy.sql")
				},
				func(id string) event.Event {
					return event.NewWaitingForHuman(id, "Dangerous operation detected", &event.ApprovalPayload{
						Component: event.ComponentApprovalButtons,
						Props: event.ApprovalProps{
							Title:   "Dangerous operation detected",
							Command: "DROP TABLE legacy_accounts",
							Actions: event.ApproveRejectActions(),
						},
					})
				},
				func(id string) event.Event {
					return event.NewTextMessage(id, "Waiting for approval before touching the database.")
				},
				func(id string) event.Event {
					return event.NewStepStarted(id, "psql -f migrations/0042_drop_legacy.sql")
				},
				func(id string) event.Event {
					return event.NewTextMessage(id, "Migration applied, 0 rows affected.")
				},
				func(id string) event.Event {
					return event.NewRunFinished(id, event.StatusSuccess)
				},
			},
		},
		{
			id: "mock-doomed-build",
			steps: []func(string) event.Event{
				func(id string) event.Event { return event.NewRunStarted(id, "codex") },
				func(id string) event.Event {
					return event.NewStepStarted(id, "npm run build")
				},
				func(id string) event.Event {
					return event.NewTextMessage(id, "Error: Cannot find module 'left-pad'")
				},
				func(id string) event.Event {
					return event.NewStepStarted(id, "npm install left-pad")
				},
				func(id string) event.Event {
					return event.NewTextMessage(id, "Error: ENOSPC: no space left on device")
				},
				func(id string) event.Event {
					return event.NewRunFinished(id, event.StatusFailed)
				},
			},
		},
	}
}
