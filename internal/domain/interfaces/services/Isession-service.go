package Iservices

import (
	"call-sentinel/internal/domain/entities"
	"context"
	"time"
)

type ISessionService interface {
	Load(ctx context.Context, sessionID string) (entities.CallContext, error)
	Save(ctx context.Context, call entities.CallContext) error
	Delete(ctx context.Context, sessionID string) error
}

type ICallerPurposeService interface {
	Find(ctx context.Context, number string) (entities.CallerPurposeRecord, error)
	Save(ctx context.Context, record entities.CallerPurposeRecord) error
	Expire(ctx context.Context, number string, ttl time.Duration) error
}
