package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"call-sentinel/internal/domain/entities"
	"call-sentinel/internal/domain/interfaces/repository"
	repoconstants "call-sentinel/internal/domain/interfaces/repository/constants"
)

// SessionService persists CallContext between callbacks, keyed by session id.
type SessionService struct {
	Store repository.KeyValue
	TTL   time.Duration
}

func NewSessionService(store repository.KeyValue, ttl time.Duration) *SessionService {
	return &SessionService{Store: store, TTL: ttl}
}

func (ss *SessionService) Load(ctx context.Context, sessionID string) (entities.CallContext, error) {
	if sessionID == "" {
		return entities.CallContext{}, ErrMissingSession
	}
	raw, err := ss.Store.Get(ctx, repoconstants.SESSION_KEY_PREFIX+sessionID)
	if err != nil {
		return entities.CallContext{}, err
	}
	var call entities.CallContext
	if err := json.Unmarshal(raw, &call); err != nil {
		return entities.CallContext{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return call, nil
}

func (ss *SessionService) Save(ctx context.Context, call entities.CallContext) error {
	if call.SessionID == "" {
		return ErrMissingSession
	}
	raw, err := json.Marshal(call)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", call.SessionID, err)
	}
	return ss.Store.Set(ctx, repoconstants.SESSION_KEY_PREFIX+call.SessionID, raw, ss.TTL)
}

func (ss *SessionService) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	return ss.Store.Delete(ctx, repoconstants.SESSION_KEY_PREFIX+sessionID)
}
