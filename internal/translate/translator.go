// Package translate wires the line segmenter and the pattern
// classifier into a single chunk-in, events-out pipeline.
package translate

import (
	"github.com/agent-console/agentstream/internal/classify"
	"github.com/agent-console/agentstream/internal/config"
	"github.com/agent-console/agentstream/internal/event"
	"github.com/agent-console/agentstream/internal/segment"
)

// Translator converts raw agent output into lifecycle events.
// Complete lines run through the classification rules; partials forced
// out by the idle timer (or an explicit flush) are forwarded as plain
// text. Events for one session are published in the order the input
// arrived. Safe for concurrent use.
type Translator struct {
	seg *segment.Segmenter
	cls *classify.Classifier
}

// New builds a translator publishing to sink. The agent name and the
// idle flush timeout come from cfg.
func New(cfg *config.Config, sink event.Sink) *Translator {
	cls := classify.New(cfg.Agent.Name, sink)
	return &Translator{
		seg: segment.New(cfg.FlushTimeout(), segment.HandlerFuncs{
			OnLine:    cls.ProcessLine,
			OnPartial: cls.ProcessFlush,
		}),
		cls: cls,
	}
}

// Feed ingests one raw chunk for a session.
func (t *Translator) Feed(sessionID, chunk string) {
	t.seg.Feed(sessionID, chunk)
}

// Flush forces any buffered partial line out as a text event.
func (t *Translator) Flush(sessionID string) {
	t.seg.Flush(sessionID)
}

// Remove flushes and forgets a session's buffer. The session's
// lifecycle state is untouched; call ProcessExit to end the run.
func (t *Translator) Remove(sessionID string) {
	t.seg.Remove(sessionID)
}

// ProcessExit publishes RUN_FINISHED for the session and resets its
// lifecycle. Text still sitting in the session's buffer is not
// flushed; callers wanting it classified call Flush first.
func (t *Translator) ProcessExit(sessionID string, exitCode int) {
	t.cls.ProcessExit(sessionID, exitCode)
}

// Close drops all buffered partials without emitting them.
func (t *Translator) Close() {
	t.seg.Dispose()
}
