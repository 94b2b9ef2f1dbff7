package event

import "time"

// Type identifies a lifecycle event kind on the wire.
type Type string

const (
	TypeRunStarted         Type = "RUN_STARTED"
	TypeTextMessageContent Type = "TEXT_MESSAGE_CONTENT"
	TypeStepStarted        Type = "STEP_STARTED"
	TypeWaitingForHuman    Type = "WAITING_FOR_HUMAN"
	TypeRunFinished        Type = "RUN_FINISHED"
)

// Status is the terminal outcome reported by RUN_FINISHED.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// StepTypeToolCall is the only step type the classifier produces.
const StepTypeToolCall = "tool_call"

// ComponentApprovalButtons names the UI component a console renders for a
// standard approve/reject prompt.
const ComponentApprovalButtons = "approval_buttons"

// Event is the envelope delivered to sinks and serialized to consumers.
// Data holds the variant payload for Type.
type Event struct {
	Type      Type      `json:"type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Sink consumes events synchronously, in emission order.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

// RunStarted opens a session lifecycle.
type RunStarted struct {
	AgentName string `json:"agent_name"`
}

// TextMessageContent carries one increment of plain agent output.
type TextMessageContent struct {
	Delta string `json:"delta"`
}

// StepStarted reports the agent invoking a tool or command.
type StepStarted struct {
	StepType string `json:"step_type"`
	ToolName string `json:"tool_name"`
}

// WaitingForHuman pauses the lifecycle until an operator responds.
type WaitingForHuman struct {
	Reason   string           `json:"reason"`
	Approval *ApprovalPayload `json:"approval_payload,omitempty"`
}

// RunFinished closes a session lifecycle.
type RunFinished struct {
	Status Status `json:"status"`
}

// ApprovalPayload tells the console what to render for a pending approval.
type ApprovalPayload struct {
	Component string        `json:"component"`
	Props     ApprovalProps `json:"props"`
}

type ApprovalProps struct {
	Title   string           `json:"title"`
	Command string           `json:"command,omitempty"` // offending command, dangerous-operation prompts only
	Actions []ApprovalAction `json:"actions"`
}

type ApprovalAction struct {
	Label      string     `json:"label"`
	ActionType ActionType `json:"action_type"`
}

// ApproveRejectActions returns the standard action pair, in render order.
func ApproveRejectActions() []ApprovalAction {
	return []ApprovalAction{
		{Label: "Approve", ActionType: ActionApprove},
		{Label: "Reject", ActionType: ActionReject},
	}
}

// New builds an envelope stamped with the current UTC time.
func New(t Type, sessionID string, data any) Event {
	return Event{
		Type:      t,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func NewRunStarted(sessionID, agentName string) Event {
	return New(TypeRunStarted, sessionID, RunStarted{AgentName: agentName})
}

func NewTextMessage(sessionID, delta string) Event {
	return New(TypeTextMessageContent, sessionID, TextMessageContent{Delta: delta})
}

func NewStepStarted(sessionID, toolName string) Event {
	return New(TypeStepStarted, sessionID, StepStarted{
		StepType: StepTypeToolCall,
		ToolName: toolName,
	})
}

func NewWaitingForHuman(sessionID, reason string, approval *ApprovalPayload) Event {
	return New(TypeWaitingForHuman, sessionID, WaitingForHuman{
		Reason:   reason,
		Approval: approval,
	})
}

func NewRunFinished(sessionID string, status Status) Event {
	return New(TypeRunFinished, sessionID, RunFinished{Status: status})
}

// StatusForExit maps a process exit code to a terminal status.
func StatusForExit(code int) Status {
	if code == 0 {
		return StatusSuccess
	}
	return StatusFailed
}
