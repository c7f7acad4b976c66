package repository

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryRepository keeps entities in process memory. Field matching goes through the
// same bson encoding the Mongo repository uses, so field names are the bson tags.
type MemoryRepository[T any] struct {
	mu          sync.RWMutex
	collections map[string][]T
}

func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{collections: map[string][]T{}}
}

func (r *MemoryRepository[T]) Create(ctx context.Context, collectionName string, entity T) (T, error) {
	if err := ctx.Err(); err != nil {
		return entity, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collectionName] = append(r.collections[collectionName], entity)
	return entity, nil
}

func (r *MemoryRepository[T]) FindBy(ctx context.Context, collectionName string, field string, value any) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := bsonValue(value)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []T
	for _, entity := range r.collections[collectionName] {
		ok, err := fieldEquals(entity, field, want)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, entity)
		}
	}
	return matched, nil
}

func (r *MemoryRepository[T]) FindAll(ctx context.Context, collectionName string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]T(nil), r.collections[collectionName]...), nil
}

func (r *MemoryRepository[T]) DeleteBy(ctx context.Context, collectionName string, field string, value any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	want, err := bsonValue(value)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.collections[collectionName][:0:0]
	var deleted int64
	for _, entity := range r.collections[collectionName] {
		ok, err := fieldEquals(entity, field, want)
		if err != nil {
			return 0, err
		}
		if ok {
			deleted++
			continue
		}
		kept = append(kept, entity)
	}
	r.collections[collectionName] = kept
	return deleted, nil
}

func fieldEquals[T any](entity T, field string, want any) (bool, error) {
	raw, err := bson.Marshal(entity)
	if err != nil {
		return false, fmt.Errorf("encode entity: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("decode entity: %w", err)
	}
	got, ok := doc[field]
	return ok && reflect.DeepEqual(got, want), nil
}

// bsonValue round-trips value so named types compare equal to their stored form.
func bsonValue(value any) (any, error) {
	raw, err := bson.Marshal(bson.M{"v": value})
	if err != nil {
		return nil, fmt.Errorf("encode filter value: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode filter value: %w", err)
	}
	return doc["v"], nil
}
