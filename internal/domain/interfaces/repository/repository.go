package repository

import (
	"context"
	"errors"
	"time"

	"call-sentinel/internal/domain/entities"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

type Repository[T any] interface {
	Create(ctx context.Context, collectionName string, entity T) (T, error)
	FindBy(ctx context.Context, collectionName string, field string, value any) ([]T, error)
	FindAll(ctx context.Context, collectionName string) ([]T, error)
	DeleteBy(ctx context.Context, collectionName string, field string, value any) (int64, error)
}

// KeyValue is a byte store with per-key expiry. Get returns ErrNotFound for missing or expired keys.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type ReputationRepository interface {
	Find(ctx context.Context, normalized string) (entities.ReputationRecord, error)
	Upsert(ctx context.Context, record entities.ReputationRecord, override bool) (entities.ReputationRecord, error)
	Seed(ctx context.Context, records []entities.ReputationRecord) (int, error)
	Count(ctx context.Context) (int, error)
}
