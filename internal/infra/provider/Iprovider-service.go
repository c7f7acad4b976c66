package provider

import (
	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/domain/entities"
	"context"
)

// IVoiceAgentProvider retargets a live call to the hosted voice agent.
type IVoiceAgentProvider interface {
	Handoff(ctx context.Context, request dto.HandoffRequest) (dto.HandoffResponse, error)
}

// IVoiceResponseRenderer turns a next action into the telephony provider's markup.
type IVoiceResponseRenderer interface {
	Render(action entities.NextAction) ([]byte, error)
	ContentType() string
}
