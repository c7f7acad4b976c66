package entities

type ActionKind string

const (
	ActionGather  ActionKind = "gather"
	ActionHangup  ActionKind = "hangup"
	ActionForward ActionKind = "forward"
	ActionHandoff ActionKind = "handoff"
	ActionNone    ActionKind = "none"
)

// NextAction is what the telephony provider should do after a callback.
type NextAction struct {
	Kind       ActionKind `json:"kind"`
	Prompt     string     `json:"prompt,omitempty"`
	ForwardTo  string     `json:"forward_to,omitempty"`
	HandoffURL string     `json:"handoff_url,omitempty"`
	State      CallState  `json:"state"`
}
