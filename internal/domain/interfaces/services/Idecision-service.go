package Iservices

import (
	"call-sentinel/internal/domain/dto"
	"call-sentinel/internal/domain/entities"
	"context"
)

// IDecisionEngine turns a call, and optionally one utterance, into a routing decision.
type IDecisionEngine interface {
	Triage(ctx context.Context, call *entities.CallContext) entities.Decision
	Classify(ctx context.Context, call *entities.CallContext, utterance *entities.Utterance) entities.Decision
}

type IInterrogationService interface {
	Start(ctx context.Context, event dto.CallEvent) entities.NextAction
	HandleUtterance(ctx context.Context, event dto.CallEvent) entities.NextAction
	Handoff(ctx context.Context, sessionID string) (entities.NextAction, error)
	Teardown(ctx context.Context, event dto.CallEvent) error
}
