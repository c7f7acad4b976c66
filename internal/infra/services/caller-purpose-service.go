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

// CallerPurposeService keeps "why this caller was flagged", keyed by normalized number.
// Records live for TTL after their last update and are cut to a grace window at teardown.
type CallerPurposeService struct {
	Store repository.KeyValue
	TTL   time.Duration
}

func NewCallerPurposeService(store repository.KeyValue, ttl time.Duration) *CallerPurposeService {
	return &CallerPurposeService{Store: store, TTL: ttl}
}

func (cps *CallerPurposeService) Find(ctx context.Context, number string) (entities.CallerPurposeRecord, error) {
	normalized := entities.NormalizeNumber(number)
	if normalized == "" {
		return entities.CallerPurposeRecord{}, repository.ErrNotFound
	}
	raw, err := cps.Store.Get(ctx, repoconstants.PURPOSE_KEY_PREFIX+normalized)
	if err != nil {
		return entities.CallerPurposeRecord{}, err
	}
	var record entities.CallerPurposeRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return entities.CallerPurposeRecord{}, fmt.Errorf("decode caller purpose %s: %w", normalized, err)
	}
	return record, nil
}

func (cps *CallerPurposeService) Save(ctx context.Context, record entities.CallerPurposeRecord) error {
	normalized := entities.NormalizeNumber(record.PhoneNumber)
	if normalized == "" {
		return ErrInvalidNumber
	}
	record.PhoneNumber = normalized
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode caller purpose %s: %w", normalized, err)
	}
	return cps.Store.Set(ctx, repoconstants.PURPOSE_KEY_PREFIX+normalized, raw, cps.TTL)
}

func (cps *CallerPurposeService) Expire(ctx context.Context, number string, ttl time.Duration) error {
	normalized := entities.NormalizeNumber(number)
	if normalized == "" {
		return ErrInvalidNumber
	}
	return cps.Store.Expire(ctx, repoconstants.PURPOSE_KEY_PREFIX+normalized, ttl)
}
