package entities

import (
	"strings"
	"time"
)

type Disposition string

const (
	DispositionUndetermined Disposition = "undetermined"
	DispositionRejected     Disposition = "rejected"
	DispositionEscalated    Disposition = "escalated"
	DispositionForwarded    Disposition = "forwarded"
	DispositionHandedOff    Disposition = "handed_off"
)

type CallState string

const (
	StateGreeting          CallState = "GREETING"
	StateAwaitingPurpose   CallState = "AWAITING_PURPOSE"
	StateGathering         CallState = "GATHERING"
	StateEscalatedReject   CallState = "ESCALATED_REJECT"
	StateHandedOff         CallState = "HANDED_OFF"
	StateLegitimateForward CallState = "LEGITIMATE_FORWARD"
)

// Terminal reports whether no further routing happens from this state.
func (s CallState) Terminal() bool {
	switch s {
	case StateEscalatedReject, StateHandedOff, StateLegitimateForward:
		return true
	}
	return false
}

// Disposition maps a state machine state onto the call's externally visible disposition.
func (s CallState) Disposition() Disposition {
	switch s {
	case StateEscalatedReject:
		return DispositionRejected
	case StateHandedOff:
		return DispositionHandedOff
	case StateLegitimateForward:
		return DispositionForwarded
	case StateGathering:
		return DispositionEscalated
	default:
		return DispositionUndetermined
	}
}

// CallContext is the per-session state of one telephony call. It is persisted
// between callbacks and never assumed to survive in process memory.
type CallContext struct {
	SessionID        string            `json:"session_id" bson:"session_id"`
	CallerNumber     string            `json:"caller_number" bson:"caller_number"`
	NormalizedCaller string            `json:"normalized_caller" bson:"normalized_caller"`
	CalleeNumber     string            `json:"callee_number" bson:"callee_number"`
	Direction        string            `json:"direction" bson:"direction"`
	Metadata         map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Turns            []Turn            `json:"turns" bson:"turns"`
	SpamConfidence   float64           `json:"spam_confidence" bson:"spam_confidence"`
	ReputationFloor  float64           `json:"reputation_floor" bson:"reputation_floor"`
	Disposition      Disposition       `json:"disposition" bson:"disposition"`
	State            CallState         `json:"state" bson:"state"`
	ConsecutiveEmpty int               `json:"consecutive_empty" bson:"consecutive_empty"`
	StartedAt        time.Time         `json:"started_at" bson:"started_at"`
	UpdatedAt        time.Time         `json:"updated_at" bson:"updated_at"`
}

// Turn is one caller utterance. Turns are appended, never edited.
type Turn struct {
	Text                  string                `json:"text" bson:"text"`
	RecognitionConfidence float64               `json:"recognition_confidence" bson:"recognition_confidence"`
	Timestamp             time.Time             `json:"timestamp" bson:"timestamp"`
	Result                *ClassificationResult `json:"result,omitempty" bson:"result,omitempty"`
	Combined              float64               `json:"combined" bson:"combined"`
}

// Utterance is a recognized caller statement delivered by the telephony provider.
type Utterance struct {
	Text                  string
	RecognitionConfidence float64
}

// Empty reports whether the caller said nothing usable.
func (u *Utterance) Empty() bool {
	return u == nil || strings.TrimSpace(u.Text) == ""
}

// AppendTurn records a scored turn.
func (c *CallContext) AppendTurn(turn Turn) {
	c.Turns = append(c.Turns, turn)
}

// RaiseConfidence sets SpamConfidence to the newest combined value while keeping
// it at or above the reputation floor.
func (c *CallContext) RaiseConfidence(combined float64) {
	c.SpamConfidence = combined
	if c.SpamConfidence < c.ReputationFloor {
		c.SpamConfidence = c.ReputationFloor
	}
}

// Transition moves the call to state and keeps the disposition in sync.
func (c *CallContext) Transition(state CallState, at time.Time) {
	c.State = state
	c.Disposition = state.Disposition()
	c.UpdatedAt = at
}

// LastTurns returns up to n most recent turns, oldest first.
func (c *CallContext) LastTurns(n int) []Turn {
	if n <= 0 || len(c.Turns) == 0 {
		return nil
	}
	if n > len(c.Turns) {
		n = len(c.Turns)
	}
	return c.Turns[len(c.Turns)-n:]
}
