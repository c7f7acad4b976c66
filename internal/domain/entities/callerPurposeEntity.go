package entities

import "time"

// CallerPurposeRecord explains why a caller was flagged, for whoever takes the call over.
type CallerPurposeRecord struct {
	PhoneNumber           string    `json:"phone_number"`
	SessionID             string    `json:"session_id"`
	Purpose               string    `json:"purpose"`
	RecognitionConfidence float64   `json:"recognition_confidence"`
	SpamConfidence        float64   `json:"spam_confidence"`
	ReputationFloor       float64   `json:"reputation_floor"`
	ConsecutiveEmpty      int       `json:"consecutive_empty"`
	Turns                 []Turn    `json:"turns"`
	UpdatedAt             time.Time `json:"updated_at"`
}
