package event

import "encoding/json"

// ActionType classifies a human response to a WAITING_FOR_HUMAN event.
type ActionType string

const (
	ActionApprove      ActionType = "APPROVE"
	ActionReject       ActionType = "REJECT"
	ActionProvideInput ActionType = "PROVIDE_INPUT"
)

// HumanResponse is the operator's answer routed back by the approval layer.
// Payload is opaque to this core; PROVIDE_INPUT responses typically carry
// free-form text in it.
type HumanResponse struct {
	SessionID  string          `json:"session_id"`
	ActionType ActionType      `json:"action_type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Approval builds an APPROVE response for a session.
func Approval(sessionID string) HumanResponse {
	return HumanResponse{SessionID: sessionID, ActionType: ActionApprove}
}

// Rejection builds a REJECT response for a session.
func Rejection(sessionID string) HumanResponse {
	return HumanResponse{SessionID: sessionID, ActionType: ActionReject}
}
