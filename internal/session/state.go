package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/agent-console/agentstream/internal/event"
)

// Phase is a session's position in its lifecycle, derived entirely from
// the events observed for it.
type Phase int

const (
	Running Phase = iota
	WaitingForHuman
	Finished
)

var phaseNames = map[Phase]string{
	Running:         "running",
	WaitingForHuman: "waiting_for_human",
	Finished:        "finished",
}

var phaseFromName = map[string]Phase{
	"running":           Running,
	"waiting_for_human": WaitingForHuman,
	"finished":          Finished,
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the phase as its string name.
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a phase from its string name.
func (p *Phase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	phase, ok := phaseFromName[name]
	if !ok {
		return fmt.Errorf("unknown phase %q", name)
	}
	*p = phase
	return nil
}

// Snapshot is the tracked state of one session. Accessors hand out
// copies, so callers may mutate a Snapshot freely.
type Snapshot struct {
	ID              string                 `json:"id"`
	AgentName       string                 `json:"agentName"`
	Phase           Phase                  `json:"phase"`
	Status          event.Status           `json:"status,omitempty"`
	LastMessage     string                 `json:"lastMessage,omitempty"`
	LastTool        string                 `json:"lastTool,omitempty"`
	WaitingReason   string                 `json:"waitingReason,omitempty"`
	PendingApproval *event.ApprovalPayload `json:"pendingApproval,omitempty"`
	Lines           int                    `json:"lines"`
	Tools           int                    `json:"tools"`
	StartedAt       time.Time              `json:"startedAt"`
	LastEventAt     time.Time              `json:"lastEventAt"`
	FinishedAt      *time.Time             `json:"finishedAt,omitempty"`
}

// IsTerminal reports whether the session has finished.
func (s *Snapshot) IsTerminal() bool {
	return s.Phase == Finished
}

// clone returns a deep copy of the snapshot.
func (s *Snapshot) clone() Snapshot {
	out := *s
	if s.PendingApproval != nil {
		approval := *s.PendingApproval
		approval.Props.Actions = append([]event.ApprovalAction(nil), s.PendingApproval.Props.Actions...)
		out.PendingApproval = &approval
	}
	if s.FinishedAt != nil {
		finished := *s.FinishedAt
		out.FinishedAt = &finished
	}
	return out
}
