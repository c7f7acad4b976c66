package dto

type HandoffRequest struct {
	CallID      string         `json:"phoneCallProviderId"`
	AssistantID string         `json:"assistantId"`
	Customer    HandoffCaller  `json:"customer"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type HandoffCaller struct {
	Number string `json:"number"`
}

type HandoffResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
