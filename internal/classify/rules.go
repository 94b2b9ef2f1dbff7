package classify

import (
	"regexp"
	"strings"

	"github.com/agent-console/agentstream/internal/event"
)

// reasonDangerous is the prompt shown when a dangerous command is spotted.
const reasonDangerous = "Dangerous operation detected"

// rule pairs a matcher with an event builder. m is the submatch slice for
// the rule's regexp against the full line.
type rule struct {
	name  string
	re    *regexp.Regexp
	build func(sessionID, line string, m []string) event.Event
}

// rules is scanned top to bottom; the first match wins and scanning stops.
// Order is load-bearing: it resolves overlapping vocabulary
// deterministically (a line carrying both error and completion wording
// always classifies the same way), so entries must not be reordered
// casually. Adding a rule means choosing its precedence slot here.
var rules = []rule{
	{
		name: "tool_announcement",
		re:   regexp.MustCompile(`(?i)^(?:Running|Executing|Using)\s+(?:tool:\s*)?(.+)$`),
		build: func(sessionID, line string, m []string) event.Event {
			return event.NewStepStarted(sessionID, strings.TrimSpace(m[1]))
		},
	},
	{
		name: "shell_echo",
		re:   regexp.MustCompile(`^>\s+(.+)$`),
		build: func(sessionID, line string, m []string) event.Event {
			return event.NewStepStarted(sessionID, strings.TrimSpace(m[1]))
		},
	},
	{
		name: "approval_prompt",
		re:   regexp.MustCompile(`(?i)\b(?:allow|approve|permit|accept|deny|reject)\b|\[y/n\]|\(y/n\)|\byes/no\b|\by/n\b`),
		build: func(sessionID, line string, m []string) event.Event {
			return event.NewWaitingForHuman(sessionID, line, &event.ApprovalPayload{
				Component: event.ComponentApprovalButtons,
				Props: event.ApprovalProps{
					Title:   line,
					Actions: event.ApproveRejectActions(),
				},
			})
		},
	},
	{
		name: "dangerous_operation",
		re: regexp.MustCompile(`(?i)\brm\s+-[a-z]*[rf][a-z]*\s+\S.*` +
			`|\b(?:DROP\s+(?:TABLE|DATABASE)|TRUNCATE\s+TABLE|DELETE\s+FROM)\b.*` +
			`|\bgit\s+push\s+.*?(?:--force|-f)\b.*`),
		build: func(sessionID, line string, m []string) event.Event {
			return event.NewWaitingForHuman(sessionID, reasonDangerous, &event.ApprovalPayload{
				Component: event.ComponentApprovalButtons,
				Props: event.ApprovalProps{
					Title:   reasonDangerous,
					Command: m[0],
					Actions: event.ApproveRejectActions(),
				},
			})
		},
	},
	{
		name: "completion",
		re:   regexp.MustCompile(`(?i)\btask\s+(?:completed|finished|done)\b|\b(?:completed|finished)\s+successfully\b`),
		build: func(sessionID, line string, m []string) event.Event {
			return event.NewRunFinished(sessionID, event.StatusSuccess)
		},
	},
	{
		name: "error_message",
		re:   regexp.MustCompile(`(?i)\b(?:error|failed|fatal|panic|exception):\s*.+`),
		build: func(sessionID, line string, m []string) event.Event {
			return event.NewTextMessage(sessionID, m[0])
		},
	},
}

// classifyLine returns the event for the first matching rule, or ok=false
// when the line falls through the whole table.
func classifyLine(sessionID, line string) (event.Event, bool) {
	for _, r := range rules {
		if m := r.re.FindStringSubmatch(line); m != nil {
			return r.build(sessionID, line, m), true
		}
	}
	return event.Event{}, false
}
