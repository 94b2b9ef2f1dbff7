package classify

import (
	"strings"
	"sync"

	"github.com/agent-console/agentstream/internal/event"
	"github.com/agent-console/agentstream/internal/metrics"
)

// DefaultAgentName is reported in RUN_STARTED when no name is configured.
const DefaultAgentName = "claude"

// Classifier maps complete lines and forced partials to typed lifecycle
// events, enforcing one-shot RUN_STARTED per session lifecycle. The sink is
// invoked with the classifier lock held, so event delivery keeps the exact
// order of the triggering inputs; sinks must not call back into the
// Classifier.
type Classifier struct {
	mu        sync.Mutex
	started   map[string]bool
	agentName string
	sink      event.Sink
}

// New builds a Classifier emitting into sink. Empty agentName falls back to
// DefaultAgentName.
func New(agentName string, sink event.Sink) *Classifier {
	if agentName == "" {
		agentName = DefaultAgentName
	}
	return &Classifier{
		started:   make(map[string]bool),
		agentName: agentName,
		sink:      sink,
	}
}

// ProcessLine classifies one complete line. The session's RUN_STARTED is
// synthesized first if this lifecycle has not emitted it yet; then the first
// matching rule produces exactly one event. Unmatched non-empty lines become
// TEXT_MESSAGE_CONTENT with the raw line as delta. Empty lines produce no
// classified event.
func (c *Classifier) ProcessLine(sessionID, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureStartedLocked(sessionID)

	if strings.TrimSpace(line) == "" {
		return
	}

	ev, ok := classifyLine(sessionID, line)
	if !ok {
		ev = event.NewTextMessage(sessionID, line)
	}
	c.publishLocked(ev)
}

// ProcessExit emits RUN_FINISHED for the exit code and resets the session's
// lifecycle so the id can start clean later. Repeated exits each emit their
// own RUN_FINISHED.
func (c *Classifier) ProcessExit(sessionID string, exitCode int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := event.StatusForExit(exitCode)
	metrics.IncExit(string(status))
	c.publishLocked(event.NewRunFinished(sessionID, status))
	delete(c.started, sessionID)
}

// ProcessFlush emits a forced partial as plain content. Partials never go
// through the rule table: an incomplete line is not reliably classifiable.
func (c *Classifier) ProcessFlush(sessionID, partial string) {
	if strings.TrimSpace(partial) == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureStartedLocked(sessionID)
	c.publishLocked(event.NewTextMessage(sessionID, partial))
}

// ensureStartedLocked marks the session started and emits RUN_STARTED, at
// most once per lifecycle. Mark-then-emit under the lock keeps the pair
// atomic.
func (c *Classifier) ensureStartedLocked(sessionID string) {
	if c.started[sessionID] {
		return
	}
	c.started[sessionID] = true
	c.publishLocked(event.NewRunStarted(sessionID, c.agentName))
}

func (c *Classifier) publishLocked(ev event.Event) {
	c.sink.Publish(ev)
}
