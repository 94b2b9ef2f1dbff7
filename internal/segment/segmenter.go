package segment

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/agent-console/agentstream/internal/metrics"
)

// DefaultFlushTimeout bounds how long an unterminated tail stays unobserved.
const DefaultFlushTimeout = 100 * time.Millisecond

// Handler receives segmenter output. Line carries a complete sanitized line;
// Partial carries an unterminated tail forced out by the idle timeout or an
// explicit flush. Handlers run with the segmenter lock held and must not
// call back into the Segmenter.
type Handler interface {
	Line(sessionID, line string)
	Partial(sessionID, text string)
}

// HandlerFuncs adapts plain functions to the Handler interface. Nil
// fields are no-ops.
type HandlerFuncs struct {
	OnLine    func(sessionID, line string)
	OnPartial func(sessionID, text string)
}

func (h HandlerFuncs) Line(sessionID, line string) {
	if h.OnLine != nil {
		h.OnLine(sessionID, line)
	}
}

func (h HandlerFuncs) Partial(sessionID, text string) {
	if h.OnPartial != nil {
		h.OnPartial(sessionID, text)
	}
}

// buffer is the per-session accumulation state. gen invalidates in-flight
// timer callbacks whenever the remainder changes or the entry is dropped.
type buffer struct {
	remainder string
	timer     *time.Timer
	gen       uint64
}

// Segmenter turns arbitrarily chunked per-session text into complete,
// newline-free, ANSI-clean lines. State is created lazily on first Feed and
// dropped whenever a session's stream is fully drained.
type Segmenter struct {
	mu         sync.Mutex
	buffers    map[string]*buffer
	flushAfter time.Duration
	handler    Handler
}

// New builds a Segmenter. flushAfter <= 0 selects DefaultFlushTimeout.
func New(flushAfter time.Duration, h Handler) *Segmenter {
	if flushAfter <= 0 {
		flushAfter = DefaultFlushTimeout
	}
	return &Segmenter{
		buffers:    make(map[string]*buffer),
		flushAfter: flushAfter,
		handler:    h,
	}
}

// Sanitize strips ANSI escape sequences and carriage returns.
func Sanitize(text string) string {
	text = ansi.Strip(text)
	return strings.ReplaceAll(text, "\r", "")
}

// Feed appends chunk to the session's buffered remainder, emits every
// complete line, and keeps the unterminated tail. The idle flush timer is
// rearmed while a tail remains and cancelled once the stream drains.
func (s *Segmenter) Feed(sessionID, chunk string) {
	if chunk == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.buffers[sessionID]
	combined := chunk
	if b != nil {
		combined = b.remainder + chunk
	}

	segments := strings.Split(combined, "\n")
	for _, seg := range segments[:len(segments)-1] {
		line := Sanitize(seg)
		if line == "" {
			continue
		}
		metrics.IncLine(metrics.KindLine)
		s.handler.Line(sessionID, line)
	}

	remainder := segments[len(segments)-1]
	if remainder == "" {
		// Stream fully drained, nothing to watch.
		if b != nil {
			s.dropLocked(sessionID, b)
		}
		return
	}

	if b == nil {
		b = &buffer{}
		s.buffers[sessionID] = b
		metrics.IncActiveBuffers()
	}
	b.remainder = remainder
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
	}
	gen := b.gen
	b.timer = time.AfterFunc(s.flushAfter, func() {
		s.idleFlush(sessionID, b, gen)
	})
}

// Flush force-emits the session's buffered tail, if any survives
// sanitization, as a forced partial, then clears the session's state.
// No-op for unknown sessions.
func (s *Segmenter) Flush(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked(sessionID)
}

// Remove flushes then discards all state for the session. Idempotent, safe
// on unknown ids.
func (s *Segmenter) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked(sessionID)
}

// Dispose cancels every tracked session's timer and drops all buffers
// without emitting. After Dispose no timer can fire.
func (s *Segmenter) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, b := range s.buffers {
		s.dropLocked(id, b)
	}
}

func (s *Segmenter) flushLocked(sessionID string) {
	b := s.buffers[sessionID]
	if b == nil {
		return
	}
	text := Sanitize(b.remainder)
	s.dropLocked(sessionID, b)
	if text == "" {
		return
	}
	metrics.IncLine(metrics.KindPartial)
	s.handler.Partial(sessionID, text)
}

// idleFlush runs on the timer goroutine. A feed or removal that happened
// after arming bumps gen or drops the entry, so a stale fire emits nothing.
func (s *Segmenter) idleFlush(sessionID string, b *buffer, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur := s.buffers[sessionID]; cur != b || b.gen != gen {
		return
	}
	s.flushLocked(sessionID)
}

func (s *Segmenter) dropLocked(sessionID string, b *buffer) {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
	b.remainder = ""
	delete(s.buffers, sessionID)
	metrics.DecActiveBuffers()
}
